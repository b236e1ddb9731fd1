package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/raysh454/web2api/internal/cache"
	"github.com/raysh454/web2api/internal/capture"
	"github.com/raysh454/web2api/internal/export"
	"github.com/raysh454/web2api/internal/fetcher"
	"github.com/raysh454/web2api/internal/llm"
	"github.com/raysh454/web2api/internal/synth"
	"github.com/raysh454/web2api/internal/utils"
	"github.com/raysh454/web2api/internal/webclient"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides: WEB2API_LLM_PROVIDER sets llm.provider.
const EnvPrefix = "WEB2API"

// Config aggregates the configuration of every stage of a run.
type Config struct {
	// KeepTemp leaves the fetched page on disk after the run.
	KeepTemp bool `mapstructure:"keep_temp" yaml:"keep_temp"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// DefaultScheme is used for targets given without one.
	DefaultScheme string `mapstructure:"default_scheme" yaml:"default_scheme"`

	WebClient webclient.Config `mapstructure:"webclient" yaml:"webclient"`
	Fetcher   fetcher.Config   `mapstructure:"fetcher" yaml:"fetcher"`
	Capture   capture.Config   `mapstructure:"capture" yaml:"capture"`
	Synth     synth.Config     `mapstructure:"synth" yaml:"synth"`
	LLM       llm.Config       `mapstructure:"llm" yaml:"llm"`
	Cache     cache.Config     `mapstructure:"cache" yaml:"cache"`
	Export    export.Config    `mapstructure:"export" yaml:"export"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		DefaultScheme: "https",
		WebClient:     webclient.DefaultConfig(),
		Fetcher:       fetcher.DefaultConfig(),
		Capture:       capture.DefaultConfig(),
		Synth:         synth.DefaultConfig(),
		LLM:           llm.DefaultConfig(),
		Cache:         cache.DefaultConfig(),
		Export:        export.DefaultConfig(),
	}
}

// LoadOptions says where LoadConfig looks for overrides.
type LoadOptions struct {
	// ConfigFile is an optional YAML file. A missing explicit file is an error.
	ConfigFile string

	// EnvFile is loaded into the environment when it exists. Variables
	// already set win.
	EnvFile string

	// Flags, with FlagKeys mapping flag names to config keys, override
	// everything else when set on the command line.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

// LoadConfig layers defaults, the config file, the environment and flags.
func LoadConfig(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// Seeding from the defaults makes every key known, which AutomaticEnv needs.
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	if err := v.ReadConfig(strings.NewReader(string(defaults))); err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}

	if opts.ConfigFile != "" {
		f, err := os.Open(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := v.MergeConfig(f); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", opts.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				return nil, fmt.Errorf("unknown flag %q bound to %s", name, key)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandPaths resolves a leading "~" in every configured path.
func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Fetcher.TempDir,
		&c.Capture.ExecPath,
		&c.Cache.Path,
		&c.Export.Output,
		&c.Export.HARPath,
	} {
		expanded, err := utils.ExpandHome(*p)
		if err != nil {
			return fmt.Errorf("expand %s: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.LLM.APIKey != "" {
		cp.LLM.APIKey = "[REDACTED]"
	}
	return &cp
}

// YAML renders the configuration, with secrets redacted.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
