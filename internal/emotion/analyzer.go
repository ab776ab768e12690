package emotion

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Marker is one detected emotional pattern occurrence.
type Marker struct {
	Text        string `json:"text"`
	Intensity   int    `json:"intensity"`
	PatternType string `json:"pattern_type"`
}

// CategoryScore is the per-category result.
type CategoryScore struct {
	Score    float64  `json:"score"`
	Count    int      `json:"count"`
	RawScore float64  `json:"raw_score"`
	Detected []Marker `json:"detected"`
}

// Sentiment summarizes positive/negative word balance.
type Sentiment struct {
	Polarity       float64 `json:"polarity"`
	Label          string  `json:"label"`
	PositiveCount  int     `json:"positive_count"`
	NegativeCount  int     `json:"negative_count"`
	MixedSentiment bool    `json:"mixed_sentiment"`
	SentimentWords int     `json:"sentiment_words"`
}

// Conflict reports contradictory emotional signals.
type Conflict struct {
	HasConflict   bool     `json:"has_conflict"`
	Conflicts     []string `json:"conflicts"`
	ConflictScore int      `json:"conflict_score"`
	Description   string   `json:"description"`
}

// ManipulationRisk is the overall manipulation assessment.
type ManipulationRisk struct {
	Level                 string `json:"level"`
	Score                 int    `json:"score"`
	HighIntensityEmotions int    `json:"high_intensity_emotions"`
	ManipulationDetected  bool   `json:"manipulation_detected"`
}

// Analysis is the full emotional tone result for one email.
type Analysis struct {
	Scores             map[string]CategoryScore `json:"emotional_scores"`
	HiddenMeaningScore float64                  `json:"hidden_meaning_score"`
	Sentiment          Sentiment                `json:"sentiment"`
	Conflict           Conflict                 `json:"emotional_conflict"`
	Risk               ManipulationRisk         `json:"manipulation_risk"`
	TotalMarkers       int                      `json:"total_emotional_markers"`
	CompositeIntensity float64                  `json:"composite_intensity"`
	RiskFactors        []string                 `json:"risk_factors"`
}

// ExtraPattern extends a category's marker table from configuration.
type ExtraPattern struct {
	Category  string
	Expr      string
	Intensity int
}

// Analyzer detects emotional manipulation tactics in email text.
type Analyzer struct {
	categories []category
	maxTextLen int
}

// NewAnalyzer builds an analyzer with the builtin tables plus any extra
// patterns. An extra pattern that fails to compile or names an unknown
// category is skipped.
func NewAnalyzer(extras []ExtraPattern) *Analyzer {
	cats := builtinCategories()
	for _, ex := range extras {
		re, err := regexp.Compile(`(?i)` + ex.Expr)
		if err != nil {
			continue
		}
		for i := range cats {
			if cats[i].name == ex.Category {
				cats[i].patterns = append(cats[i].patterns, pattern{re: re, intensity: ex.Intensity})
				break
			}
		}
	}
	return &Analyzer{categories: cats, maxTextLen: 100000}
}

// Neutral returns the all-zero analysis used for empty input and as the
// fail-soft fallback.
func Neutral() Analysis {
	scores := make(map[string]CategoryScore, len(Categories()))
	for _, name := range Categories() {
		scores[name] = CategoryScore{Detected: []Marker{}}
	}
	return Analysis{
		Scores:    scores,
		Sentiment: Sentiment{Label: "neutral"},
		Conflict:  Conflict{Description: "No emotional markers detected"},
		Risk:      ManipulationRisk{Level: "low", Score: 20},
	}
}

// Analyze scans the text for emotional markers and derives the composite
// scores. Empty text yields the neutral analysis.
func (a *Analyzer) Analyze(text string) Analysis {
	if text == "" {
		return Neutral()
	}
	if len(text) > a.maxTextLen {
		text = text[:a.maxTextLen]
	}
	lower := strings.ToLower(text)

	scores := make(map[string]CategoryScore, len(a.categories))
	totalIntensity := 0.0
	totalMatches := 0

	for _, cat := range a.categories {
		var (
			raw     float64
			count   int
			markers []Marker
		)
		for _, p := range cat.patterns {
			found := p.re.FindAllString(lower, -1)
			if len(found) == 0 {
				continue
			}
			weighted := float64(p.intensity) * float64(len(found)) * cat.weight
			raw += weighted
			count += len(found)
			totalMatches += len(found)
			totalIntensity += weighted
			for i, m := range found {
				if i >= 3 {
					break
				}
				markers = append(markers, Marker{Text: m, Intensity: p.intensity, PatternType: cat.name})
			}
		}
		if len(markers) > 5 {
			markers = markers[:5]
		}
		if markers == nil {
			markers = []Marker{}
		}
		scores[cat.name] = CategoryScore{
			Score:    round2(math.Min(raw/10, 10)),
			Count:    count,
			RawScore: round2(raw),
			Detected: markers,
		}
	}

	sentiment := calculateSentiment(lower)
	hidden := hiddenMeaningScore(scores, sentiment)
	conflict := detectConflict(scores, sentiment)
	risk := manipulationRisk(scores)

	composite := 0.0
	if totalMatches > 0 {
		composite = round2(totalIntensity / float64(totalMatches))
	}

	return Analysis{
		Scores:             scores,
		HiddenMeaningScore: hidden,
		Sentiment:          sentiment,
		Conflict:           conflict,
		Risk:               risk,
		TotalMarkers:       totalMatches,
		CompositeIntensity: composite,
		RiskFactors:        riskFactors(scores, sentiment),
	}
}

var reWord = regexp.MustCompile(`\b\w+\b`)

func calculateSentiment(lower string) Sentiment {
	var pos, neg int
	for _, w := range reWord.FindAllString(lower, -1) {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}
	total := pos + neg

	polarity := 0.0
	label := "neutral"
	if total > 0 {
		polarity = float64(pos-neg) / float64(total)
		switch {
		case polarity > 0.3:
			label = "positive"
		case polarity < -0.3:
			label = "negative"
		}
	}

	return Sentiment{
		Polarity:       round3(polarity),
		Label:          label,
		PositiveCount:  pos,
		NegativeCount:  neg,
		MixedSentiment: pos > 0 && neg > 0,
		SentimentWords: total,
	}
}

// hiddenMeaningScore combines the per-category scores into a 0-100
// composite. Urgency, fear and anxiety count extra; mixed sentiment and
// the urgency+fear+anxiety triad push the score further up.
func hiddenMeaningScore(scores map[string]CategoryScore, sentiment Sentiment) float64 {
	var sum float64
	for _, name := range Categories() {
		sum += scores[name].Score
	}
	avg := sum / float64(len(Categories()))

	critical := (scores[Urgency].Score + scores[Fear].Score + scores[Anxiety].Score) * 1.5 / 3

	penalty := 0.0
	if sentiment.MixedSentiment {
		penalty = 15
	}
	if sentiment.Label == "positive" && sentiment.NegativeCount > 2 {
		penalty += 10
	}

	bonus := 0.0
	if scores[Urgency].Score > 5 && scores[Fear].Score > 5 && scores[Anxiety].Score > 5 {
		bonus = 20
	}

	base := (avg*3 + critical*4) / 7
	return round2(math.Min(base*10+penalty+bonus, 100))
}

func detectConflict(scores map[string]CategoryScore, sentiment Sentiment) Conflict {
	var conflicts []string

	if sentiment.Label == "positive" {
		if scores[Fear].Score > 4 {
			conflicts = append(conflicts, "positive_with_fear")
		}
		if scores[Urgency].Score > 6 {
			conflicts = append(conflicts, "positive_with_urgency")
		}
	}
	if scores[Greed].Score > 5 && scores[Fear].Score > 5 {
		conflicts = append(conflicts, "greed_fear_conflict")
	}
	if scores[Deference].Score > 4 && scores[Urgency].Score > 6 {
		conflicts = append(conflicts, "deference_urgency_conflict")
	}

	score := len(conflicts) * 15
	if score > 50 {
		score = 50
	}

	return Conflict{
		HasConflict:   len(conflicts) > 0,
		Conflicts:     conflicts,
		ConflictScore: score,
		Description:   describeConflicts(conflicts),
	}
}

func manipulationRisk(scores map[string]CategoryScore) ManipulationRisk {
	high := 0
	for _, name := range Categories() {
		if scores[name].Score > 6 {
			high++
		}
	}
	manip := scores[Manipulation].Score

	level := "low"
	score := 20
	switch {
	case high >= 3 || manip > 7:
		level, score = "critical", 90
	case high >= 2 || manip > 5:
		level, score = "high", 70
	case high >= 1 || manip > 3:
		level, score = "medium", 50
	}

	return ManipulationRisk{
		Level:                 level,
		Score:                 score,
		HighIntensityEmotions: high,
		ManipulationDetected:  manip > 4,
	}
}

func riskFactors(scores map[string]CategoryScore, sentiment Sentiment) []string {
	var factors []string
	for _, name := range Categories() {
		data := scores[name]
		if data.Score > 6 {
			factors = append(factors, fmt.Sprintf(
				"High %s indicators detected (score: %.2f/10, %d instances)",
				name, data.Score, data.Count))
		} else if data.Score > 4 {
			factors = append(factors, fmt.Sprintf(
				"Moderate %s patterns found (score: %.2f/10)", name, data.Score))
		}
	}
	if sentiment.MixedSentiment {
		factors = append(factors, fmt.Sprintf(
			"Mixed emotional tone detected (%d positive, %d negative indicators)",
			sentiment.PositiveCount, sentiment.NegativeCount))
	}
	if sentiment.Label == "positive" && sentiment.NegativeCount > 2 {
		factors = append(factors, "Suspicious positive framing with underlying negative elements")
	}
	return factors
}

func describeConflicts(conflicts []string) string {
	if len(conflicts) == 0 {
		return "No emotional markers detected"
	}
	descriptions := map[string]string{
		"positive_with_fear":         "Positive messaging with fear tactics",
		"positive_with_urgency":      "Positive framing with urgent pressure",
		"greed_fear_conflict":        "Reward promises combined with threats",
		"deference_urgency_conflict": "Formal tone with inappropriate urgency",
	}
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		if d, ok := descriptions[c]; ok {
			parts = append(parts, d)
		} else {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", ")
}

// Summary renders a one-line description of the analysis.
func Summary(a Analysis) string {
	score := a.HiddenMeaningScore
	risk := a.Risk.Level
	switch {
	case score > 70:
		return fmt.Sprintf("CRITICAL: Strong emotional manipulation detected (score: %.2f/100, risk: %s)", score, risk)
	case score > 50:
		return fmt.Sprintf("HIGH: Significant emotional manipulation indicators (score: %.2f/100, risk: %s)", score, risk)
	case score > 30:
		return fmt.Sprintf("MODERATE: Some emotional manipulation patterns detected (score: %.2f/100, risk: %s)", score, risk)
	default:
		return fmt.Sprintf("LOW: Minimal emotional manipulation detected (score: %.2f/100, risk: %s)", score, risk)
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
