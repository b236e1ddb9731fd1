package synth

// FailurePolicy decides what happens when generation fails for one exchange.
type FailurePolicy string

const (
	// Continue records the error on the fragment and moves on.
	Continue FailurePolicy = "continue"
	// FailFast aborts the run on the first error.
	FailFast FailurePolicy = "fail-fast"
)

type Config struct {
	// Language is the target language of the generated models: go, python, typescript, ...
	Language string `mapstructure:"language" yaml:"language"`

	// Concurrency is the number of generation calls in flight. 1 means sequential.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	FailurePolicy FailurePolicy `mapstructure:"failure_policy" yaml:"failure_policy"`

	// MaxBodyBytes truncates bodies embedded in prompts. 0 disables truncation.
	MaxBodyBytes int `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`

	// RedactHeaders lists header names whose values never reach the model.
	RedactHeaders []string `mapstructure:"redact_headers" yaml:"redact_headers"`
	Replacement   string   `mapstructure:"replacement" yaml:"replacement"`

	// InferShapes embeds the inferred body shapes in the prompt.
	InferShapes bool `mapstructure:"infer_shapes" yaml:"infer_shapes"`
}

func DefaultConfig() Config {
	return Config{
		Language:      "go",
		Concurrency:   1,
		FailurePolicy: Continue,
		MaxBodyBytes:  8 << 10,
		RedactHeaders: []string{"authorization", "proxy-authorization", "cookie", "set-cookie", "x-api-key"},
		Replacement:   "[REDACTED]",
		InferShapes:   true,
	}
}
