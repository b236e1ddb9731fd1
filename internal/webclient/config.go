package webclient

import "time"

// Config controls the net/http backed client.
type Config struct {
	// Timeout bounds a whole request including reading the body. Zero means 30s.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// UserAgent is sent when the request doesn't set one.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

const DefaultUserAgent = "web2api/0.1 (+https://github.com/raysh454/web2api)"

func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}
