// Package keyword implements the lexical heuristics: academic keyword
// extraction, phishing indicator categories and the urgency score.
package keyword

import (
	"regexp"
	"strings"
)

// academicKeywords are the high-risk terms extracted for highlighting,
// in reporting order.
var academicKeywords = []string{
	"scholarship", "exam", "fee", "admission", "certificate", "deadline",
	"registration", "result", "verification", "urgent", "update", "verify",
	"account", "credentials", "password", "confirm", "approve",
	"claim", "grant", "disbursement", "internship", "alert", "suspend",
}

// indicator is one phishing indicator category.
type indicator struct {
	name string
	re   *regexp.Regexp
}

var indicators = []indicator{
	{"verify_account", regexp.MustCompile(`verify.*account|confirm.*account|validate.*account`)},
	{"urgent_action", regexp.MustCompile(`urgent|immediately|today|right now|asap|act now`)},
	{"suspicious_links", regexp.MustCompile(`click\s+here|click.*link|click.*below|confirm.*link`)},
	{"credential_request", regexp.MustCompile(`provide.*password|enter.*credentials|confirm.*identity|banking details`)},
	{"threat_language", regexp.MustCompile(`expire|suspend|deactivate|delete|locked|compromised`)},
	{"too_good", regexp.MustCompile(`congratulations|approved|eligible|won|refund|reward`)},
}

// urgencyWeights maps urgency phrases to their weight. Counting is by
// substring so "immediately" also counts an "immediate" hit.
var urgencyWeights = []struct {
	phrase string
	weight int
}{
	{"urgent", 10}, {"immediate", 9}, {"asap", 9},
	{"deadline", 8}, {"expires", 8}, {"act now", 9},
	{"limited time", 8}, {"hurry", 8}, {"immediately", 9},
	{"today", 7}, {"now", 7}, {"must", 6}, {"right now", 10},
	{"final notice", 10}, {"last chance", 9},
}

// urgencyTokens is the reduced phrase set used for per-token flags.
var urgencyTokens = map[string]struct{}{
	"urgent": {}, "immediate": {}, "asap": {}, "deadline": {},
	"expires": {}, "act": {}, "now": {}, "hurry": {},
	"immediately": {}, "today": {}, "must": {},
}

// wholeWordRes holds one compiled whole-word matcher per academic keyword.
var wholeWordRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(academicKeywords))
	for _, kw := range academicKeywords {
		res[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return res
}()

// Scorer computes the keyword and heuristic signals.
type Scorer struct{}

// NewScorer returns a ready scorer.
func NewScorer() *Scorer { return &Scorer{} }

// Keywords returns the academic keywords present in the text as whole
// words, each at most once, in list order.
func (s *Scorer) Keywords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range academicKeywords {
		if wholeWordRes[kw].MatchString(lower) {
			found = append(found, kw)
		}
	}
	return found
}

// IndicatorScore returns matched_categories/total * 10 on a 0-10 scale.
func (s *Scorer) IndicatorScore(text string) float64 {
	return float64(len(s.IndicatorMatches(text))) / float64(len(indicators)) * 10
}

// IndicatorMatches returns the names of the matched indicator
// categories in definition order.
func (s *Scorer) IndicatorMatches(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, ind := range indicators {
		if ind.re.MatchString(lower) {
			matched = append(matched, ind.name)
		}
	}
	return matched
}

// UrgencyScore is the weighted average of urgency phrase hits, capped
// at 10. Text without any urgency phrase scores 0.
func (s *Scorer) UrgencyScore(text string) float64 {
	lower := strings.ToLower(text)
	score := 0
	count := 0
	for _, uw := range urgencyWeights {
		n := strings.Count(lower, uw.phrase)
		if n > 0 {
			score += n * uw.weight
			count += n
		}
	}
	if count == 0 {
		return 0
	}
	avg := float64(score) / float64(count)
	if avg > 10 {
		avg = 10
	}
	return avg
}

// IsUrgencyToken reports whether a lowercased token is, or contains, an
// urgency phrase.
func IsUrgencyToken(low string) bool {
	for phrase := range urgencyTokens {
		if phrase == low || strings.Contains(low, phrase) {
			return true
		}
	}
	return false
}

// IsAcademicKeyword reports whether a lowercased token is one of the
// academic keywords.
func IsAcademicKeyword(low string) bool {
	_, ok := wholeWordRes[low]
	return ok
}

// TokenIndicators returns the indicator categories whose pattern
// matches a single lowercased token.
func TokenIndicators(low string) []string {
	var matched []string
	for _, ind := range indicators {
		if ind.re.MatchString(low) {
			matched = append(matched, ind.name)
		}
	}
	return matched
}
