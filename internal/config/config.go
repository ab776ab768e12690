package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishing-filter/")
	v.AddConfigPath("$HOME/.phishing-filter")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISH_FILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Classifier provider defaults
	v.SetDefault("classifier.provider", "none")

	// Server defaults
	v.SetDefault("server.filter_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_phishing", false)
	v.SetDefault("server.relay_address", "")
	v.SetDefault("server.headers.status", "X-Phishing-Status")
	v.SetDefault("server.headers.score", "X-Phishing-Score")
	v.SetDefault("server.headers.reason", "X-Phishing-Reason")
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.subject_prefix", "[**PHISHING**] ")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)

	// Phishing verdict defaults
	v.SetDefault("phishing.threshold", 0.45)
	v.SetDefault("phishing.trusted_domains", []string{})

	// Fusion defaults. The stage-one weights sum to 1.
	v.SetDefault("fusion.ensemble_weight", 0.35)
	v.SetDefault("fusion.emotional_weight", 0.20)
	v.SetDefault("fusion.indicators_weight", 0.20)
	v.SetDefault("fusion.urgency_weight", 0.15)
	v.SetDefault("fusion.header_weight", 0.05)
	v.SetDefault("fusion.url_weight", 0.05)
	v.SetDefault("fusion.url_stage_weight", 0.3)
	v.SetDefault("fusion.override_risk_threshold", 50)
	v.SetDefault("fusion.override_confidence", 0.7)

	// URL risk defaults
	v.SetDefault("urlrisk.shorteners", []string{
		"bit.ly", "t.co", "tinyurl.com", "goo.gl", "ow.ly", "is.gd", "buff.ly",
	})
	v.SetDefault("urlrisk.suspicious_tlds", []string{
		".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".work",
	})
	v.SetDefault("urlrisk.path_keywords", []string{
		"login", "signin", "verify", "account", "update",
		"confirm", "secure", "banking", "paypal", "ebay",
		"amazon", "suspended", "locked", "unusual",
	})
	v.SetDefault("urlrisk.subdomain_threshold", 3)

	// Explanation defaults
	v.SetDefault("explain.highlight_tag", "span")
	v.SetDefault("explain.highlight_class", "risk-high")
	v.SetDefault("explain.urgency_threshold", 6)
	v.SetDefault("explain.word_level", false)
	v.SetDefault("explain.token_probs", false)

	// Analysis defaults
	v.SetDefault("analysis.max_text_size", 100000)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/phishing_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/phishing_filter")

	// CLI defaults
	v.SetDefault("cli.verbose", false)
	v.SetDefault("cli.json", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
