package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/config"
	"github.com/edushield/phishing-filter/internal/core"
	"github.com/edushield/phishing-filter/internal/emotion"
	"github.com/edushield/phishing-filter/internal/explain"
	"github.com/edushield/phishing-filter/internal/factory"
	"github.com/edushield/phishing-filter/internal/keyword"
	"github.com/edushield/phishing-filter/internal/logging"
	"github.com/edushield/phishing-filter/internal/ports"
	"github.com/edushield/phishing-filter/internal/urlrisk"
	"github.com/edushield/phishing-filter/internal/utils"
	"github.com/edushield/phishing-filter/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register cache
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.ScoreCache, error) {
		return f.CreateScoreCache()
	}); err != nil {
		return nil, err
	}

	if err := registerDetector(container); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// registerDetector registers the classifier backend, the analyzers and
// the detector service. It is shared between the daemon and CLI
// containers; the CLI container provides its own config, logger and
// cache bindings before calling it.
func registerDetector(container *dig.Container) error {
	// Register classifier backend
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.TextClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register URL analyzer
	if err := container.Provide(func(cfg *config.Config) *urlrisk.Analyzer {
		urlCfg := cfg.GetURLRisk()
		return urlrisk.NewAnalyzer(urlrisk.Config{
			Shorteners:         urlCfg.Shorteners,
			SuspiciousTLDs:     urlCfg.SuspiciousTLDs,
			PathKeywords:       urlCfg.PathKeywords,
			SubdomainThreshold: urlCfg.SubdomainThreshold,
		}, nil)
	}); err != nil {
		return err
	}

	// Register emotional analyzer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *emotion.Analyzer {
		var extras []emotion.ExtraPattern
		if err := cfg.GetViper().UnmarshalKey("emotion.extra_patterns", &extras); err != nil {
			logger.Warn("Ignoring malformed extra emotion patterns", zap.Error(err))
			extras = nil
		}
		return emotion.NewAnalyzer(extras)
	}); err != nil {
		return err
	}

	// Register keyword scorer
	if err := container.Provide(keyword.NewScorer); err != nil {
		return err
	}

	// Register explanation composer
	if err := container.Provide(func(cfg *config.Config) *explain.Composer {
		explainCfg := cfg.GetExplain()
		return explain.NewComposer(explain.Config{
			HighlightTag:     explainCfg.HighlightTag,
			HighlightClass:   explainCfg.HighlightClass,
			UrgencyThreshold: explainCfg.UrgencyThreshold,
		})
	}); err != nil {
		return err
	}

	// Register trusted domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		trustedDomains := cfg.GetStringSlice("phishing.trusted_domains")
		if len(trustedDomains) > 0 {
			logger.Info("Loaded trusted domains", zap.Strings("domains", trustedDomains))
		}
		return whitelist.NewChecker(trustedDomains, logger)
	}); err != nil {
		return err
	}

	// Register detector options
	if err := container.Provide(detectorOptions); err != nil {
		return err
	}

	// Register detector service
	if err := container.Provide(core.NewDetectorService); err != nil {
		return err
	}

	return nil
}

// detectorOptions maps the configuration onto the detector tunables
func detectorOptions(cfg *config.Config) (core.Options, error) {
	fusion := cfg.GetFusion()
	explainCfg := cfg.GetExplain()

	ttl, err := cfg.GetDuration("cache.ttl")
	if err != nil {
		return core.Options{}, err
	}

	return core.Options{
		Weights: core.FusionWeights{
			Ensemble:   fusion.EnsembleWeight,
			Emotional:  fusion.EmotionalWeight,
			Indicators: fusion.IndicatorsWeight,
			Urgency:    fusion.UrgencyWeight,
			Header:     fusion.HeaderWeight,
			URL:        fusion.URLWeight,
		},
		Threshold:             cfg.GetFloat64("phishing.threshold"),
		URLWeight:             fusion.URLStageWeight,
		OverrideRiskThreshold: fusion.OverrideRiskThreshold,
		OverrideConfidence:    fusion.OverrideConfidence,
		MaxTextSize:           cfg.GetInt("analysis.max_text_size"),
		CacheEnabled:          cfg.GetBool("cache.enabled"),
		CacheTTL:              ttl,
		WordLevel:             explainCfg.WordLevel,
		TokenProbs:            explainCfg.TokenProbs,
	}, nil
}
