package explain

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/edushield/phishing-filter/internal/keyword"
)

// WordToken is the per-token analysis record.
type WordToken struct {
	Token             string             `json:"token"`
	Lower             string             `json:"lower"`
	IsURL             bool               `json:"is_url"`
	IsEmail           bool               `json:"is_email"`
	IsAcademicKeyword bool               `json:"is_academic_kw"`
	IndicatorMatches  []string           `json:"indicator_matches"`
	Urgency           bool               `json:"urgency"`
	ContainsDigits    bool               `json:"contains_digits"`
	ModelProb         *float64           `json:"model_prob,omitempty"`
	ModelProbs        map[string]float64 `json:"model_probs,omitempty"`
}

// TokenScorer estimates a classifier probability for a single token.
// Returning an error leaves the token's probability fields empty.
type TokenScorer func(ctx context.Context, token string) (float64, map[string]float64, error)

var (
	reToken  = regexp.MustCompile(`\b[0-9A-Za-z@./:%+\-']+\b`)
	reTokURL = regexp.MustCompile(`(?i)^https?://`)
	reEmail  = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+\.[a-zA-Z]{2,}`)
)

// WordLevel tokenizes the text and flags each token with the cheap
// lexical heuristics. When scorer is non-nil it is consulted per token;
// scorer failures are silent and only skip the probability fields.
func WordLevel(ctx context.Context, text string, scorer TokenScorer) []WordToken {
	tokens := reToken.FindAllString(text, -1)
	out := make([]WordToken, 0, len(tokens))

	for _, tok := range tokens {
		low := strings.ToLower(tok)
		info := WordToken{
			Token:             tok,
			Lower:             low,
			IsURL:             reTokURL.MatchString(tok) || strings.HasPrefix(tok, "www."),
			IsEmail:           reEmail.MatchString(tok),
			IsAcademicKeyword: keyword.IsAcademicKeyword(low),
			IndicatorMatches:  keyword.TokenIndicators(low),
			Urgency:           keyword.IsUrgencyToken(low),
			ContainsDigits:    containsDigit(tok),
		}

		if scorer != nil {
			if prob, probs, err := scorer(ctx, tok); err == nil {
				p := prob
				info.ModelProb = &p
				info.ModelProbs = probs
			}
		}

		out = append(out, info)
	}
	return out
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
