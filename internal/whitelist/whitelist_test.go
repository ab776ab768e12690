package whitelist

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsTrusted(t *testing.T) {
	c := NewChecker([]string{"University.EDU ", "example.com"}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{"registrar@university.edu", true},
		{"admin@Example.COM", true},
		{"someone@evil.net", false},
		{"not-an-address", false},
		{"two@ats@example.com", false},
	}

	for _, tt := range tests {
		if got := c.IsTrusted(tt.from); got != tt.want {
			t.Errorf("IsTrusted(%q) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestIsTrustedEmptyList(t *testing.T) {
	c := NewChecker(nil, zap.NewNop())
	if c.IsTrusted("user@example.com") {
		t.Error("IsTrusted = true with empty list")
	}
}

func TestLookalike(t *testing.T) {
	c := NewChecker([]string{"example.com", "university.edu"}, zap.NewNop())

	tests := []struct {
		name     string
		from     string
		wantDom  string
		wantHit  bool
	}{
		{"exact match is not a lookalike", "a@example.com", "", false},
		{"one edit away", "a@examp1e.com", "example.com", true},
		{"two edits on longer domain", "a@univers1ty.eduu", "university.edu", true},
		{"unrelated", "a@totally-different.org", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dom, hit := c.Lookalike(tt.from)
			if hit != tt.wantHit || dom != tt.wantDom {
				t.Errorf("Lookalike(%q) = (%q, %v), want (%q, %v)",
					tt.from, dom, hit, tt.wantDom, tt.wantHit)
			}
		})
	}
}

func TestLookalikePunycode(t *testing.T) {
	c := NewChecker([]string{"paypal.com"}, zap.NewNop())
	// xn--pypal-4ve.com decodes to pаypal.com with a Cyrillic character.
	if _, hit := c.Lookalike("billing@xn--pypal-4ve.com"); !hit {
		t.Error("Lookalike = false for punycode twin of paypal.com")
	}
}
