package app

import (
	"context"
	"errors"
	"io"

	"github.com/raysh454/web2api/internal/logging"
)

// Application owns the components of a process and runs targets through them.
type Application struct {
	Config *Config
	Logger logging.Logger

	components *Components
	pipeline   *Pipeline
}

// NewApplication builds the components for cfg. Shutdown must be called.
func NewApplication(ctx context.Context, cfg *Config, logger logging.Logger, stdout io.Writer) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("application config is nil")
	}
	logger = logging.OrNop(logger)
	comps, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("application ready",
		logging.Field{Key: "provider", Value: comps.Provider},
		logging.Field{Key: "cache", Value: comps.Cache != nil})
	return &Application{
		Config:     cfg,
		Logger:     logger,
		components: comps,
		pipeline:   comps.Pipeline(cfg, logger, stdout),
	}, nil
}

// Run processes one target.
func (a *Application) Run(ctx context.Context, target string) (*Result, error) {
	if a == nil {
		return nil, errors.New("application is nil")
	}
	return a.pipeline.Run(ctx, target)
}

// Shutdown releases everything NewApplication acquired.
func (a *Application) Shutdown() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Debug("application shutdown")
	return a.components.Close()
}
