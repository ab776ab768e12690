// Package explain renders analysis results into human-readable form:
// keyword-highlighted HTML, risk factor lists and token-level detail.
package explain

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
)

// Config controls the rendered markup and factor thresholds.
type Config struct {
	HighlightTag     string
	HighlightClass   string
	UrgencyThreshold float64
}

// DefaultConfig returns the stock rendering settings.
func DefaultConfig() Config {
	return Config{
		HighlightTag:     "span",
		HighlightClass:   "risk-high",
		UrgencyThreshold: 6,
	}
}

// Composer builds explanation artifacts from precomputed signals.
type Composer struct {
	cfg Config
}

// NewComposer creates a composer. Zero-valued config fields fall back
// to the defaults.
func NewComposer(cfg Config) *Composer {
	def := DefaultConfig()
	if cfg.HighlightTag == "" {
		cfg.HighlightTag = def.HighlightTag
	}
	if cfg.HighlightClass == "" {
		cfg.HighlightClass = def.HighlightClass
	}
	if cfg.UrgencyThreshold == 0 {
		cfg.UrgencyThreshold = def.UrgencyThreshold
	}
	return &Composer{cfg: cfg}
}

// Highlight HTML-escapes the text and wraps every whole-word keyword
// occurrence in the configured tag, preserving the original casing.
// Escaping happens before wrapping so user text can never inject markup.
func (c *Composer) Highlight(text string, keywords []string) string {
	escaped := html.EscapeString(text)
	if len(keywords) == 0 {
		return escaped
	}

	uniq := make(map[string]struct{}, len(keywords))
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		if lower == "" {
			continue
		}
		if _, ok := uniq[lower]; ok {
			continue
		}
		uniq[lower] = struct{}{}
		parts = append(parts, regexp.QuoteMeta(lower))
	}
	if len(parts) == 0 {
		return escaped
	}
	// Longest alternative first so "verification" is not split by
	// an inner "verify" match.
	sort.Slice(parts, func(i, j int) bool {
		if len(parts[i]) != len(parts[j]) {
			return len(parts[i]) > len(parts[j])
		}
		return parts[i] < parts[j]
	})

	re, err := regexp.Compile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
	if err != nil {
		return escaped
	}

	return re.ReplaceAllStringFunc(escaped, func(match string) string {
		return fmt.Sprintf(`<%s class="%s">%s</%s>`,
			c.cfg.HighlightTag, c.cfg.HighlightClass, match, c.cfg.HighlightTag)
	})
}

// PredictionFactors derives the top-level risk factor lines from the
// fused prediction signals. Model probabilities are listed in name
// order so the output is stable.
func (c *Composer) PredictionFactors(keywords []string, urgencyScore float64, modelProbs map[string]float64) []string {
	var factors []string
	if len(keywords) > 0 {
		factors = append(factors, "High-risk keywords: "+strings.Join(keywords, ", "))
	}
	if urgencyScore >= c.cfg.UrgencyThreshold {
		factors = append(factors, fmt.Sprintf("Urgency detected (score %d/10)", int(urgencyScore)))
	}
	if len(modelProbs) > 0 {
		names := make([]string, 0, len(modelProbs))
		for name := range modelProbs {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s=%.2f", name, modelProbs[name]))
		}
		factors = append(factors, "Model agreement: "+strings.Join(pairs, ", "))
	}
	return factors
}
