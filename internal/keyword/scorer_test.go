package keyword

import (
	"math"
	"reflect"
	"testing"
)

func TestKeywords(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "order follows the list, not the text",
			text: "Please verify your scholarship account",
			want: []string{"scholarship", "verify", "account"},
		},
		{
			name: "whole word only",
			text: "re-examine the feedback",
			want: nil,
		},
		{
			name: "case insensitive and deduplicated",
			text: "URGENT urgent Urgent password",
			want: []string{"urgent", "password"},
		},
		{
			name: "clean text",
			text: "see you at the game tonight",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Keywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIndicatorScore(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"none", "lunch at noon?", 0},
		{"one category", "please verify your account", 5.0 / 3},
		{
			"three categories",
			"urgent: verify your account or it will be suspended",
			5,
		},
		{
			"all six",
			"urgent: verify your account, click here to confirm your identity " +
				"before it expires, congratulations on your refund",
			10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.IndicatorScore(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IndicatorScore(%q) = %v, want %v (matched %v)",
					tt.text, got, tt.want, s.IndicatorMatches(tt.text))
			}
		})
	}
}

func TestIndicatorMatchesOrder(t *testing.T) {
	s := NewScorer()
	got := s.IndicatorMatches("congratulations, verify your account immediately")
	want := []string{"verify_account", "urgent_action", "too_good"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IndicatorMatches = %v, want %v", got, want)
	}
}

func TestUrgencyScore(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no urgency", "the report is attached", 0},
		{"single phrase", "this is urgent", 10},
		// "immediately" also counts one "immediate" hit: (9+9)/2.
		{"substring overlap", "reply immediately", 9},
		// urgent(10) + must(6): average 8.
		{"weighted average", "urgent: you must reply", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.UrgencyScore(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("UrgencyScore(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestUrgencyScoreCeiling(t *testing.T) {
	s := NewScorer()
	if got := s.UrgencyScore("urgent urgent urgent right now"); got > 10 {
		t.Errorf("UrgencyScore = %v, exceeds 10", got)
	}
}

func TestIsUrgencyToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"urgent", true},
		{"urgently", true},
		{"now", true},
		{"known", true}, // contains "now"
		{"hello", false},
	}
	for _, tt := range tests {
		if got := IsUrgencyToken(tt.token); got != tt.want {
			t.Errorf("IsUrgencyToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestIsAcademicKeyword(t *testing.T) {
	if !IsAcademicKeyword("password") {
		t.Error("IsAcademicKeyword(password) = false, want true")
	}
	if IsAcademicKeyword("banana") {
		t.Error("IsAcademicKeyword(banana) = true, want false")
	}
}
