package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raysh454/web2api/internal/cache"
	"github.com/raysh454/web2api/internal/capture"
	"github.com/raysh454/web2api/internal/fetcher"
	"github.com/raysh454/web2api/internal/llm"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
	"github.com/raysh454/web2api/internal/webclient"
)

// Components holds what Build constructed so it can be released together.
type Components struct {
	WebClient webclient.WebClient
	Fetcher   *fetcher.Fetcher
	Capturer  *capture.Capturer
	Generator synth.Generator
	Synth     *synth.Synthesizer
	Cache     *cache.Store

	// Provider is the backend actually in use after any fallback.
	Provider string
}

// Close releases the web client and the cache.
func (c *Components) Close() error {
	var errs []error
	if c.WebClient != nil {
		errs = append(errs, c.WebClient.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	return errors.Join(errs...)
}

// Build constructs the production components for cfg. A generation backend
// without credentials is replaced by the none backend with a warning.
func Build(ctx context.Context, cfg *Config, logger logging.Logger) (*Components, error) {
	logger = logging.OrNop(logger)
	c := &Components{}

	wc, err := webclient.NewNetHTTPClient(cfg.WebClient, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("create web client: %w", err)
	}
	c.WebClient = wc

	c.Fetcher, err = fetcher.New(cfg.Fetcher, wc, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	c.Capturer = capture.New(cfg.Capture, logger)

	provider := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	gen, err := llm.New(ctx, cfg.LLM, logger)
	switch {
	case errors.Is(err, llm.ErrMissingCredentials):
		logger.Warn("generation backend has no credentials, models will not be generated",
			logging.Field{Key: "provider", Value: provider},
			logging.Field{Key: "error", Value: err})
		gen, provider = llm.None{}, "none"
	case err != nil:
		c.Close()
		return nil, err
	}
	c.Provider = provider

	if cfg.Cache.Enabled && provider != "none" && provider != "structural" {
		store, err := cache.Open(cfg.Cache.Path, logger)
		if err != nil {
			logger.Warn("generation cache unavailable", logging.Field{Key: "error", Value: err})
		} else {
			namespace := provider + "/" + cfg.LLM.Model
			entries, _ := store.Len(ctx, namespace)
			logger.Info("generation cache opened",
				logging.Field{Key: "path", Value: store.Path()},
				logging.Field{Key: "entries", Value: entries})
			c.Cache = store
			gen = cache.Wrap(gen, store, namespace)
		}
	}
	c.Generator = gen

	c.Synth, err = synth.New(cfg.Synth, gen, synth.StructuralInferrer{}, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create synthesizer: %w", err)
	}
	return c, nil
}

// Pipeline wires the components into a runnable pipeline.
func (c *Components) Pipeline(cfg *Config, logger logging.Logger, stdout io.Writer) *Pipeline {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Pipeline{
		Fetcher:     c.Fetcher,
		Capturer:    c.Capturer,
		Synthesizer: c.Synth,
		Logger:      logger,
		Config:      cfg,
		Stdout:      stdout,
	}
}
