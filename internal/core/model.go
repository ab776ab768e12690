package core

import (
	"time"

	"github.com/edushield/phishing-filter/internal/emotion"
	"github.com/edushield/phishing-filter/internal/explain"
	"github.com/edushield/phishing-filter/internal/urlrisk"
)

// Classification labels for an analyzed email.
const (
	ClassPhishing   = "PHISHING"
	ClassLegitimate = "LEGITIMATE"
)

// EmailSample is one email submitted for analysis.
type EmailSample struct {
	From        string
	To          []string
	Subject     string
	Body        string
	HTMLBody    string
	Headers     map[string]string
	Attachments []string
}

// ClassifierScore is the output of a text classifier backend.
type ClassifierScore struct {
	Probability float64
	ModelProbs  map[string]float64
	ModelUsed   string
}

// PredictionResult is the fused prediction for one email.
type PredictionResult struct {
	Classification          string             `json:"classification"`
	Confidence              float64            `json:"confidence"`
	ModelProbs              map[string]float64 `json:"model_probs"`
	UrgencyScore            float64            `json:"urgency_score"`
	PhishingIndicatorsScore float64            `json:"phishing_indicators_score"`
	Keywords                []string           `json:"keywords"`
	EnsembleScore           float64            `json:"ensemble_score"`
	EmotionalAnalysis       emotion.Analysis   `json:"emotional_analysis"`
}

// Report is the full analysis delivered to callers: the fused
// prediction plus the explanation artifacts.
type Report struct {
	PredictionResult

	// BaseConfidence is the stage-one score before URL escalation.
	BaseConfidence  float64             `json:"base_confidence"`
	HighlightedText string              `json:"highlighted_text"`
	RiskFactors     []string            `json:"risk_factors"`
	URLAnalysis     urlrisk.Analysis    `json:"url_analysis"`
	WordAnalysis    []explain.WordToken `json:"word_analysis,omitempty"`
	Language        string              `json:"language,omitempty"`
	AnalyzedAt      time.Time           `json:"analyzed_at"`
}

// CacheEntry is one cached classifier score, keyed by text digest.
type CacheEntry struct {
	TextDigest  string
	Probability float64
	ModelProbs  map[string]float64
	ModelUsed   string
	LastSeen    time.Time
	ExpiresAt   time.Time
}
