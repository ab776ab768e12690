package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/emotion"
	"github.com/edushield/phishing-filter/internal/explain"
	"github.com/edushield/phishing-filter/internal/keyword"
	"github.com/edushield/phishing-filter/internal/urlrisk"
	"github.com/edushield/phishing-filter/internal/utils"
	"github.com/edushield/phishing-filter/internal/whitelist"
)

type stubClassifier struct {
	score *ClassifierScore
	err   error
	calls int
}

func (s *stubClassifier) Score(_ context.Context, _ string) (*ClassifierScore, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.score, nil
}

type stubCache struct {
	entries map[string]*CacheEntry
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*CacheEntry)}
}

func (c *stubCache) Get(_ context.Context, digest string) (*CacheEntry, error) {
	entry, ok := c.entries[digest]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return entry, nil
}

func (c *stubCache) Set(_ context.Context, entry *CacheEntry) error {
	c.sets++
	c.entries[entry.TextDigest] = entry
	return nil
}

func (c *stubCache) Delete(_ context.Context, digest string) error {
	delete(c.entries, digest)
	return nil
}

func (c *stubCache) Cleanup(_ context.Context) error { return nil }

func newTestService(classifier TextClassifier, cache ScoreCache, trustedDomains []string, opts Options) *DetectorService {
	logger := zap.NewNop()
	return NewDetectorService(
		classifier,
		cache,
		urlrisk.NewAnalyzer(urlrisk.DefaultConfig(), nil),
		emotion.NewAnalyzer(nil),
		keyword.NewScorer(),
		explain.NewComposer(explain.DefaultConfig()),
		whitelist.NewChecker(trustedDomains, logger),
		utils.NewTextProcessor(logger),
		logger,
		opts,
	)
}

// phishingSample is an engineered social engineering email that should
// cross the verdict threshold on heuristic signals alone.
func phishingSample() *EmailSample {
	return &EmailSample{
		From:    "security@secure-alerts.example.net",
		Subject: "URGENT: Account suspended - act now",
		Body: "Your account has been suspended after unusual activity and unauthorized access.\n" +
			"Security alert: you must verify your account immediately and confirm your identity right now.\n" +
			"Action required: immediate action needed. Act now or lose access today.\n" +
			"This is the final notice. Update your password before it expires.\n" +
			"Please confirm your identity and enter your password, then click the link below to verify your account:\n" +
			"http://bit.ly/claim\n" +
			"Hurry, asap, don't delay. Congratulations, you are eligible for a $500 refund.",
	}
}

func legitimateSample() *EmailSample {
	return &EmailSample{
		From:    "sam@colleague.example.org",
		Subject: "Tuesday meeting notes",
		Body:    "Hi team, attached are the meeting notes from Tuesday. Lunch is on me. Best, Sam",
		Headers: map[string]string{
			"Authentication-Results": "mx.example.org; spf=pass; dkim=pass; dmarc=pass",
		},
	}
}

func TestAnalyzePhishing(t *testing.T) {
	svc := newTestService(nil, nil, nil, DefaultOptions())

	report, err := svc.Analyze(context.Background(), phishingSample())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Classification != ClassPhishing {
		t.Errorf("Classification = %s (confidence %.3f), want PHISHING",
			report.Classification, report.Confidence)
	}
	if report.Confidence < 0.45 || report.Confidence > 1 {
		t.Errorf("Confidence = %.3f, want within [0.45, 1]", report.Confidence)
	}
	if report.EnsembleScore != 0 {
		t.Errorf("EnsembleScore = %v, want 0 without a classifier", report.EnsembleScore)
	}
	if report.UrgencyScore < 6 {
		t.Errorf("UrgencyScore = %.2f, want at least 6", report.UrgencyScore)
	}
	if report.PhishingIndicatorsScore != 10 {
		t.Errorf("PhishingIndicatorsScore = %v, want 10 with all categories hit",
			report.PhishingIndicatorsScore)
	}
	for _, kw := range []string{"urgent", "account", "password", "verify"} {
		found := false
		for _, got := range report.Keywords {
			if got == kw {
				found = true
			}
		}
		if !found {
			t.Errorf("Keywords = %v, want %q included", report.Keywords, kw)
		}
	}
	if len(report.RiskFactors) == 0 {
		t.Error("RiskFactors empty for phishing sample")
	}
	if report.HighlightedText == "" {
		t.Error("HighlightedText empty")
	}
	if !svc.IsPhishing(report) {
		t.Error("IsPhishing = false for phishing report")
	}
}

func TestAnalyzeLegitimate(t *testing.T) {
	svc := newTestService(nil, nil, nil, DefaultOptions())

	report, err := svc.Analyze(context.Background(), legitimateSample())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Classification != ClassLegitimate {
		t.Errorf("Classification = %s (confidence %.3f), want LEGITIMATE",
			report.Classification, report.Confidence)
	}
	if report.Confidence >= 0.45 {
		t.Errorf("Confidence = %.3f, want below threshold", report.Confidence)
	}
	if report.URLAnalysis.URLsFound != 0 {
		t.Errorf("URLsFound = %d, want 0", report.URLAnalysis.URLsFound)
	}
}

func TestAnalyzeURLOverride(t *testing.T) {
	svc := newTestService(nil, nil, nil, DefaultOptions())

	sample := &EmailSample{
		From:    "newsletter@example.org",
		Subject: "Team updates",
		Body: "Latest links: http://192.168.1.1/login and " +
			"http://xn--pypal-4ve.info.tk/secure/login/verify",
	}

	report, err := svc.Analyze(context.Background(), sample)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.URLAnalysis.OverallRisk < 50 {
		t.Fatalf("OverallRisk = %v, scenario needs at least 50", report.URLAnalysis.OverallRisk)
	}
	if report.Classification != ClassPhishing {
		t.Errorf("Classification = %s, want PHISHING via URL escalation", report.Classification)
	}
	if report.Confidence != 0.7 {
		t.Errorf("Confidence = %.3f, want escalated floor 0.7", report.Confidence)
	}
	if report.BaseConfidence >= 0.45 {
		t.Errorf("BaseConfidence = %.3f, expected benign text below threshold", report.BaseConfidence)
	}
}

func TestAnalyzeClassifierFailureDegrades(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("backend down")}
	svc := newTestService(classifier, nil, nil, DefaultOptions())

	report, err := svc.Analyze(context.Background(), legitimateSample())
	if err != nil {
		t.Fatalf("Analyze() error = %v, classifier failure must not fail analysis", err)
	}
	if report.EnsembleScore != 0 {
		t.Errorf("EnsembleScore = %v, want neutral 0 after classifier failure", report.EnsembleScore)
	}
	if len(report.ModelProbs) != 0 {
		t.Errorf("ModelProbs = %v, want empty", report.ModelProbs)
	}
	if report.Classification != ClassLegitimate {
		t.Errorf("Classification = %s, want LEGITIMATE", report.Classification)
	}
}

func TestAnalyzeClassifierContribution(t *testing.T) {
	classifier := &stubClassifier{score: &ClassifierScore{
		Probability: 0.9,
		ModelProbs:  map[string]float64{"bedrock": 0.9},
		ModelUsed:   "bedrock",
	}}
	svc := newTestService(classifier, nil, nil, DefaultOptions())

	report, err := svc.Analyze(context.Background(), legitimateSample())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.EnsembleScore != 0.9 {
		t.Errorf("EnsembleScore = %v, want 0.9", report.EnsembleScore)
	}
	if report.ModelProbs["bedrock"] != 0.9 {
		t.Errorf("ModelProbs = %v, want bedrock=0.9", report.ModelProbs)
	}
}

func TestAnalyzeScoreCache(t *testing.T) {
	classifier := &stubClassifier{score: &ClassifierScore{
		Probability: 0.8,
		ModelProbs:  map[string]float64{"openai": 0.8},
		ModelUsed:   "openai",
	}}
	cache := newStubCache()
	opts := DefaultOptions()
	opts.CacheEnabled = true
	opts.CacheTTL = time.Hour
	svc := newTestService(classifier, cache, nil, opts)

	sample := legitimateSample()
	if _, err := svc.Analyze(context.Background(), sample); err != nil {
		t.Fatalf("first Analyze() error = %v", err)
	}
	if classifier.calls != 1 || cache.sets != 1 {
		t.Fatalf("after first run: classifier calls = %d, cache sets = %d, want 1/1",
			classifier.calls, cache.sets)
	}

	report, err := svc.Analyze(context.Background(), sample)
	if err != nil {
		t.Fatalf("second Analyze() error = %v", err)
	}
	if classifier.calls != 1 {
		t.Errorf("classifier calls = %d after cached run, want still 1", classifier.calls)
	}
	if report.EnsembleScore != 0.8 {
		t.Errorf("cached EnsembleScore = %v, want 0.8", report.EnsembleScore)
	}
}

func TestAnalyzeTrustedBypass(t *testing.T) {
	classifier := &stubClassifier{score: &ClassifierScore{Probability: 0.99}}
	svc := newTestService(classifier, nil, []string{"university.edu"}, DefaultOptions())

	report, err := svc.Analyze(context.Background(), &EmailSample{
		From:    "registrar@university.edu",
		Subject: "URGENT: verify your account now",
		Body:    "Final notice: your account has been suspended.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Classification != ClassLegitimate {
		t.Errorf("Classification = %s, want LEGITIMATE for trusted sender", report.Classification)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier calls = %d, want 0 on trusted bypass", classifier.calls)
	}
	if len(report.RiskFactors) != 1 || report.RiskFactors[0] != "Sender domain is trusted" {
		t.Errorf("RiskFactors = %v, want single trusted line", report.RiskFactors)
	}
}

func TestAnalyzeLookalikeFactor(t *testing.T) {
	svc := newTestService(nil, nil, []string{"university.edu"}, DefaultOptions())

	report, err := svc.Analyze(context.Background(), &EmailSample{
		From:    "registrar@univers1ty.edu",
		Subject: "Tuesday meeting notes",
		Body:    "Hi team, attached are the meeting notes from Tuesday.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	want := "Sender domain imitates trusted domain university.edu"
	found := false
	for _, f := range report.RiskFactors {
		if f == want {
			found = true
		}
	}
	if !found {
		t.Errorf("RiskFactors = %v, want %q included", report.RiskFactors, want)
	}
}

func TestAnalyzeAttachmentFactor(t *testing.T) {
	svc := newTestService(nil, nil, nil, DefaultOptions())

	sample := legitimateSample()
	sample.Attachments = []string{"notes.pdf", "Invoice.EXE", "macro.docm"}
	report, err := svc.Analyze(context.Background(), sample)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	var dangerous []string
	for _, f := range report.RiskFactors {
		if len(f) > 27 && f[:27] == "Dangerous attachment type: " {
			dangerous = append(dangerous, f[27:])
		}
	}
	want := []string{"Invoice.EXE", "macro.docm"}
	if !reflect.DeepEqual(dangerous, want) {
		t.Errorf("dangerous attachments = %v, want %v", dangerous, want)
	}
}

func TestAnalyzeWordLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.WordLevel = true
	svc := newTestService(nil, nil, nil, opts)

	report, err := svc.Analyze(context.Background(), phishingSample())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(report.WordAnalysis) == 0 {
		t.Fatal("WordAnalysis empty with word level enabled")
	}
	urgent := false
	for _, tok := range report.WordAnalysis {
		if tok.Lower == "urgent" && tok.Urgency {
			urgent = true
		}
	}
	if !urgent {
		t.Error("no urgency-flagged token found in word analysis")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	svc := newTestService(nil, nil, nil, DefaultOptions())

	first, err := svc.Analyze(context.Background(), phishingSample())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		got, err := svc.Analyze(context.Background(), phishingSample())
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if got.Confidence != first.Confidence || got.BaseConfidence != first.BaseConfidence {
			t.Fatalf("run %d confidence %.6f/%.6f differs from %.6f/%.6f",
				i+1, got.Confidence, got.BaseConfidence, first.Confidence, first.BaseConfidence)
		}
		if !reflect.DeepEqual(got.RiskFactors, first.RiskFactors) {
			t.Fatalf("run %d risk factors differ:\n%v\nvs\n%v", i+1, got.RiskFactors, first.RiskFactors)
		}
		if !reflect.DeepEqual(got.Keywords, first.Keywords) {
			t.Fatalf("run %d keywords differ: %v vs %v", i+1, got.Keywords, first.Keywords)
		}
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	svc := newTestService(nil, nil, nil, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Analyze(ctx, legitimateSample()); err == nil {
		t.Error("Analyze() error = nil with cancelled context")
	}
}

func TestHeaderRisk(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    float64
	}{
		{"no headers", nil, 1},
		{"all pass", map[string]string{
			"Authentication-Results": "mx; spf=pass; dkim=pass; dmarc=pass",
		}, 0},
		{"one pass", map[string]string{
			"Authentication-Results": "mx; spf=pass; dkim=fail; dmarc=none",
		}, 2.0 / 3},
		{"header present but empty", map[string]string{
			"Authentication-Results": "",
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headerRisk(tt.headers); got != tt.want {
				t.Errorf("headerRisk() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfidenceBounds(t *testing.T) {
	svc := newTestService(&stubClassifier{score: &ClassifierScore{Probability: 1}}, nil, nil, DefaultOptions())

	samples := []*EmailSample{
		phishingSample(),
		legitimateSample(),
		{From: "x@y.z", Body: "http://10.0.0.1/login http://bit.ly.a.b.xn--pypal-4ve.tk/verify"},
		{From: "", Body: ""},
	}
	for i, sample := range samples {
		report, err := svc.Analyze(context.Background(), sample)
		if err != nil {
			t.Fatalf("sample %d: Analyze() error = %v", i, err)
		}
		if report.Confidence < 0 || report.Confidence > 1 {
			t.Errorf("sample %d: Confidence = %v, out of [0,1]", i, report.Confidence)
		}
		if report.BaseConfidence < 0 || report.BaseConfidence > 1 {
			t.Errorf("sample %d: BaseConfidence = %v, out of [0,1]", i, report.BaseConfidence)
		}
	}
}
