package config

// ClassifierConfig represents the configuration for the classifier backend
type ClassifierConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// FusionConfig represents the signal fusion parameters
type FusionConfig struct {
	EnsembleWeight        float64
	EmotionalWeight       float64
	IndicatorsWeight      float64
	UrgencyWeight         float64
	HeaderWeight          float64
	URLWeight             float64
	URLStageWeight        float64
	OverrideRiskThreshold float64
	OverrideConfidence    float64
}

// URLRiskConfig represents the URL analyzer lookup tables
type URLRiskConfig struct {
	Shorteners         []string
	SuspiciousTLDs     []string
	PathKeywords       []string
	SubdomainThreshold int
}

// ExplainConfig represents the explanation rendering settings
type ExplainConfig struct {
	HighlightTag     string
	HighlightClass   string
	UrgencyThreshold float64
	WordLevel        bool
	TokenProbs       bool
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider: c.GetString("classifier.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetFusion returns the fusion configuration
func (c *Config) GetFusion() FusionConfig {
	return FusionConfig{
		EnsembleWeight:        c.GetFloat64("fusion.ensemble_weight"),
		EmotionalWeight:       c.GetFloat64("fusion.emotional_weight"),
		IndicatorsWeight:      c.GetFloat64("fusion.indicators_weight"),
		UrgencyWeight:         c.GetFloat64("fusion.urgency_weight"),
		HeaderWeight:          c.GetFloat64("fusion.header_weight"),
		URLWeight:             c.GetFloat64("fusion.url_weight"),
		URLStageWeight:        c.GetFloat64("fusion.url_stage_weight"),
		OverrideRiskThreshold: c.GetFloat64("fusion.override_risk_threshold"),
		OverrideConfidence:    c.GetFloat64("fusion.override_confidence"),
	}
}

// GetURLRisk returns the URL analyzer configuration
func (c *Config) GetURLRisk() URLRiskConfig {
	return URLRiskConfig{
		Shorteners:         c.GetStringSlice("urlrisk.shorteners"),
		SuspiciousTLDs:     c.GetStringSlice("urlrisk.suspicious_tlds"),
		PathKeywords:       c.GetStringSlice("urlrisk.path_keywords"),
		SubdomainThreshold: c.GetInt("urlrisk.subdomain_threshold"),
	}
}

// GetExplain returns the explanation configuration
func (c *Config) GetExplain() ExplainConfig {
	return ExplainConfig{
		HighlightTag:     c.GetString("explain.highlight_tag"),
		HighlightClass:   c.GetString("explain.highlight_class"),
		UrgencyThreshold: c.GetFloat64("explain.urgency_threshold"),
		WordLevel:        c.GetBool("explain.word_level"),
		TokenProbs:       c.GetBool("explain.token_probs"),
	}
}
