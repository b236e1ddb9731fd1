package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
)

// Constructor builds a generator from configuration.
type Constructor func(ctx context.Context, cfg Config, logger logging.Logger) (synth.Generator, error)

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register makes a backend available under name. Names are case-insensitive;
// registering an existing name replaces it.
func Register(name string, ctor Constructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config, logger logging.Logger) (synth.Generator, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = DefaultConfig().Provider
	}

	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("llm backend %q not registered: available backends=%v", name, Backends())
	}

	gen, err := ctor(ctx, cfg, logging.OrNop(logger).With(logging.Field{Key: "backend", Value: name}))
	if err != nil {
		return nil, fmt.Errorf("construct llm backend %q: %w", name, err)
	}
	if gen == nil {
		return nil, errors.New("llm constructor returned nil")
	}
	return gen, nil
}

// Backends returns the registered names, sorted.
func Backends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// apiKey returns the configured key or the first non-empty environment variable.
func apiKey(cfg Config, envs ...string) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	for _, e := range envs {
		if v := strings.TrimSpace(os.Getenv(e)); v != "" {
			return v
		}
	}
	return ""
}

func init() {
	Register("none", newNone)
	Register("structural", newStructural)
	Register("gemini", newGemini)
	Register("openai", newOpenAI)
	Register("anthropic", newAnthropic)
	Register("bedrock", newBedrock)
}
