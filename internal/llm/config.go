package llm

import "time"

// Config selects and tunes a generation backend.
type Config struct {
	// Provider names a registered backend: none, structural, gemini, openai, anthropic, bedrock.
	Provider string `mapstructure:"provider" yaml:"provider"`

	// Model overrides the backend's default model id.
	Model string `mapstructure:"model" yaml:"model"`

	// APIKey overrides the provider's usual environment variable.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// BaseURL points the client at a compatible endpoint or a proxy.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`

	// Seed is forwarded to backends that support deterministic sampling. 0 leaves it unset.
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	// Region is used by bedrock. Falls back to AWS_REGION.
	Region string `mapstructure:"region" yaml:"region"`

	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

func DefaultConfig() Config {
	return Config{
		Provider:    "gemini",
		Temperature: 0,
		MaxTokens:   4096,
		Timeout:     2 * time.Minute,
		MaxRetries:  2,
	}
}

// ModelOr returns the configured model, or def when none is set.
func (c Config) ModelOr(def string) string {
	if c.Model != "" {
		return c.Model
	}
	return def
}
