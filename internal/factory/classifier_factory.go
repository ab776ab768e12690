package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/adapters/bedrock"
	"github.com/edushield/phishing-filter/internal/adapters/gemini"
	"github.com/edushield/phishing-filter/internal/adapters/openai"
	"github.com/edushield/phishing-filter/internal/config"
	"github.com/edushield/phishing-filter/internal/core"
)

// ClassifierFactory creates text classifier backends
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier creates a text classifier based on the configuration.
// Provider "none" returns a nil classifier; the detector then runs on
// the heuristic signals alone.
func (f *ClassifierFactory) CreateClassifier() (core.TextClassifier, error) {
	classifierCfg := f.cfg.GetClassifier()

	switch classifierCfg.Provider {
	case "", "none":
		f.logger.Info("No classifier backend configured, running heuristics only")
		return nil, nil
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateClassifier()
	case "gemini":
		if f.cfg.GetGemini().APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		return gemini.NewFactory(f.cfg, f.logger).CreateClassifier()
	case "openai":
		if f.cfg.GetOpenAI().APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		return openai.NewFactory(f.cfg, f.logger).CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", classifierCfg.Provider)
	}
}
