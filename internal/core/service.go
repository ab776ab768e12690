package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/emotion"
	"github.com/edushield/phishing-filter/internal/explain"
	"github.com/edushield/phishing-filter/internal/keyword"
	"github.com/edushield/phishing-filter/internal/urlrisk"
	"github.com/edushield/phishing-filter/internal/utils"
	"github.com/edushield/phishing-filter/internal/whitelist"
)

// FusionWeights are the stage-one signal weights. They sum to 1.
type FusionWeights struct {
	Ensemble   float64
	Emotional  float64
	Indicators float64
	Urgency    float64
	Header     float64
	URL        float64
}

// Options carries the detector tunables.
type Options struct {
	Weights               FusionWeights
	Threshold             float64
	URLWeight             float64
	OverrideRiskThreshold float64
	OverrideConfidence    float64
	MaxTextSize           int
	CacheEnabled          bool
	CacheTTL              time.Duration
	WordLevel             bool
	TokenProbs            bool
}

// DefaultOptions returns the stock fusion parameters.
func DefaultOptions() Options {
	return Options{
		Weights: FusionWeights{
			Ensemble:   0.35,
			Emotional:  0.20,
			Indicators: 0.20,
			Urgency:    0.15,
			Header:     0.05,
			URL:        0.05,
		},
		Threshold:             0.45,
		URLWeight:             0.3,
		OverrideRiskThreshold: 50,
		OverrideConfidence:    0.7,
		MaxTextSize:           100000,
		CacheTTL:              24 * time.Hour,
	}
}

// dangerousExtensions are attachment types worth a warning on their own.
var dangerousExtensions = map[string]struct{}{
	".exe": {}, ".scr": {}, ".bat": {}, ".cmd": {}, ".vbs": {},
	".js": {}, ".jar": {}, ".docm": {}, ".xlsm": {}, ".pptm": {},
}

// DetectorService fuses the analyzer signals into one verdict.
type DetectorService struct {
	classifier TextClassifier
	cache      ScoreCache
	urls       *urlrisk.Analyzer
	emotions   *emotion.Analyzer
	keywords   *keyword.Scorer
	composer   *explain.Composer
	trusted    *whitelist.Checker
	textProc   *utils.TextProcessor
	logger     *zap.Logger
	opts       Options
}

// NewDetectorService creates a new detector service. The classifier and
// cache may be nil; analysis then runs on the heuristic signals alone.
func NewDetectorService(
	classifier TextClassifier,
	cache ScoreCache,
	urls *urlrisk.Analyzer,
	emotions *emotion.Analyzer,
	keywords *keyword.Scorer,
	composer *explain.Composer,
	trusted *whitelist.Checker,
	textProc *utils.TextProcessor,
	logger *zap.Logger,
	opts Options,
) *DetectorService {
	return &DetectorService{
		classifier: classifier,
		cache:      cache,
		urls:       urls,
		emotions:   emotions,
		keywords:   keywords,
		composer:   composer,
		trusted:    trusted,
		textProc:   textProc,
		logger:     logger,
		opts:       opts,
	}
}

// IsPhishing determines if a report crosses the verdict threshold.
func (s *DetectorService) IsPhishing(r *Report) bool {
	return r.Classification == ClassPhishing
}

// Analyze runs the full pipeline over one email. The leaf analyzers run
// concurrently and are joined before fusion; Analyze itself never fails
// on an analyzer error, only on context cancellation.
func (s *DetectorService) Analyze(ctx context.Context, sample *EmailSample) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.trusted != nil && s.trusted.IsTrusted(sample.From) {
		s.logger.Info("Skipping analysis for trusted sender domain",
			zap.String("sender", sample.From),
			zap.String("action", "trusted_bypass"))
		return s.trustedReport(), nil
	}

	text := sample.Body
	if sample.Subject != "" {
		text = sample.Subject + "\n\n" + sample.Body
	}
	text = s.textProc.ProcessText(text, s.opts.MaxTextSize)

	var (
		wg         sync.WaitGroup
		score      *ClassifierScore
		emotional  emotion.Analysis
		urlReport  urlrisk.Analysis
		coarseURL  float64
		kws        []string
		urgency    float64
		indicators float64
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		score = s.classifierScore(ctx, text)
	}()
	go func() {
		defer wg.Done()
		emotional = s.emotions.Analyze(text)
	}()
	go func() {
		defer wg.Done()
		urlReport = s.urls.FilterURLs(text)
		coarseURL = s.urls.CoarseRisk(text)
	}()
	go func() {
		defer wg.Done()
		kws = s.keywords.Keywords(text)
		urgency = s.keywords.UrgencyScore(text)
		indicators = s.keywords.IndicatorScore(text)
	}()
	wg.Wait()

	headerRisk := headerRisk(sample.Headers)

	w := s.opts.Weights
	base := w.Ensemble*score.Probability +
		w.Emotional*(emotional.HiddenMeaningScore/100) +
		w.Indicators*(indicators/10) +
		w.Urgency*(urgency/10) +
		w.Header*headerRisk +
		w.URL*coarseURL

	combined := (1-s.opts.URLWeight)*base + s.opts.URLWeight*(urlReport.OverallRisk/100)

	classification := ClassLegitimate
	if combined >= s.opts.Threshold {
		classification = ClassPhishing
	}
	// High aggregate URL risk escalates the verdict regardless of how
	// benign the text reads.
	if urlReport.HasSuspiciousURLs && urlReport.OverallRisk >= s.opts.OverrideRiskThreshold {
		if combined < s.opts.OverrideConfidence {
			combined = s.opts.OverrideConfidence
		}
		classification = ClassPhishing
	}

	report := &Report{
		PredictionResult: PredictionResult{
			Classification:          classification,
			Confidence:              combined,
			ModelProbs:              score.ModelProbs,
			UrgencyScore:            urgency,
			PhishingIndicatorsScore: indicators,
			Keywords:                kws,
			EnsembleScore:           score.Probability,
			EmotionalAnalysis:       emotional,
		},
		BaseConfidence:  base,
		HighlightedText: s.composer.Highlight(text, kws),
		URLAnalysis:     urlReport,
		AnalyzedAt:      time.Now(),
	}
	report.RiskFactors = s.riskFactors(sample, report)
	report.Language = detectLanguage(text)

	if s.opts.WordLevel {
		report.WordAnalysis = explain.WordLevel(ctx, text, s.tokenScorer())
	}

	s.logger.Debug("Email analyzed",
		zap.String("classification", classification),
		zap.Float64("confidence", combined),
		zap.Float64("base_confidence", base),
		zap.Float64("url_risk", urlReport.OverallRisk),
		zap.String("model", score.ModelUsed))

	return report, nil
}

// classifierScore consults the cache, then the classifier backend. Any
// failure degrades to the neutral score so the heuristic signals still
// produce a verdict.
func (s *DetectorService) classifierScore(ctx context.Context, text string) *ClassifierScore {
	neutral := &ClassifierScore{ModelProbs: map[string]float64{}, ModelUsed: "none"}
	if s.classifier == nil {
		return neutral
	}

	digest := textDigest(text)
	if s.opts.CacheEnabled && s.cache != nil {
		if entry, err := s.cache.Get(ctx, digest); err == nil {
			s.logger.Debug("Classifier cache hit", zap.String("digest", digest))
			return &ClassifierScore{
				Probability: entry.Probability,
				ModelProbs:  entry.ModelProbs,
				ModelUsed:   entry.ModelUsed,
			}
		}
	}

	score, err := s.classifier.Score(ctx, text)
	if err != nil || score == nil {
		s.logger.Warn("Classifier unavailable, using neutral score", zap.Error(err))
		return neutral
	}
	if score.ModelProbs == nil {
		score.ModelProbs = map[string]float64{}
	}

	if s.opts.CacheEnabled && s.cache != nil {
		entry := &CacheEntry{
			TextDigest:  digest,
			Probability: score.Probability,
			ModelProbs:  score.ModelProbs,
			ModelUsed:   score.ModelUsed,
			LastSeen:    time.Now(),
			ExpiresAt:   time.Now().Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update score cache", zap.Error(err))
		}
	}

	return score
}

// tokenScorer adapts the classifier to the per-token interface when
// token probabilities are enabled.
func (s *DetectorService) tokenScorer() explain.TokenScorer {
	if !s.opts.TokenProbs || s.classifier == nil {
		return nil
	}
	return func(ctx context.Context, token string) (float64, map[string]float64, error) {
		score, err := s.classifier.Score(ctx, token)
		if err != nil || score == nil {
			return 0, nil, err
		}
		return score.Probability, score.ModelProbs, nil
	}
}

// riskFactors assembles the explanation lines from every signal.
func (s *DetectorService) riskFactors(sample *EmailSample, r *Report) []string {
	factors := s.composer.PredictionFactors(r.Keywords, r.UrgencyScore, r.ModelProbs)
	factors = append(factors, r.EmotionalAnalysis.RiskFactors...)
	factors = append(factors, urlrisk.Summary(r.URLAnalysis)...)

	for _, name := range sample.Attachments {
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := dangerousExtensions[ext]; ok {
			factors = append(factors, "Dangerous attachment type: "+name)
		}
	}

	if s.trusted != nil {
		if imitated, ok := s.trusted.Lookalike(sample.From); ok {
			factors = append(factors, "Sender domain imitates trusted domain "+imitated)
		}
	}

	return factors
}

func (s *DetectorService) trustedReport() *Report {
	return &Report{
		PredictionResult: PredictionResult{
			Classification:    ClassLegitimate,
			ModelProbs:        map[string]float64{},
			EmotionalAnalysis: emotion.Neutral(),
		},
		HighlightedText: "",
		RiskFactors:     []string{"Sender domain is trusted"},
		URLAnalysis:     urlrisk.Analysis{URLs: []urlrisk.Record{}, HighRiskURLs: []urlrisk.Record{}, MediumRiskURLs: []urlrisk.Record{}},
		AnalyzedAt:      time.Now(),
	}
}

// headerRisk derives the authentication risk from the
// Authentication-Results header: the share of spf/dkim/dmarc checks
// that did not pass. Absent headers score the full risk.
func headerRisk(headers map[string]string) float64 {
	auth := ""
	if headers != nil {
		auth = headers["Authentication-Results"]
		if auth == "" {
			auth = headers["Authentication-Results:"]
		}
	}
	low := strings.ToLower(auth)

	passed := 0
	for _, check := range []string{"spf=pass", "dkim=pass", "dmarc=pass"} {
		if strings.Contains(low, check) {
			passed++
		}
	}
	return 1 - float64(passed)/3
}

// detectLanguage is diagnostic only; it never influences the verdict.
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.String()
}

func textDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
