package capture

import (
	"context"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/model"
)

// session is what Capturer needs from a launched browser.
type session interface {
	Capture(ctx context.Context, path string, filter Filter) ([]model.Exchange, error)
	Close() error
}

func launchBrowser(ctx context.Context, cfg Config, logger logging.Logger) (session, error) {
	b, err := Launch(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Capturer runs one browser per Capture call.
type Capturer struct {
	cfg    Config
	filter Filter
	logger logging.Logger
	launch func(context.Context, Config, logging.Logger) (session, error)
}

func New(cfg Config, logger logging.Logger) *Capturer {
	types := cfg.ResourceTypes
	if len(types) == 0 {
		types = DefaultConfig().ResourceTypes
	}
	return &Capturer{
		cfg:    cfg,
		filter: And(ResourceTypes(types...), Completed),
		logger: logging.OrNop(logger),
		launch: launchBrowser,
	}
}

// WithFilter returns a copy of c that selects entries with f instead of the
// configured resource types.
func (c *Capturer) WithFilter(f Filter) *Capturer {
	cp := *c
	cp.filter = f
	return &cp
}

// Capture launches a browser, captures the traffic of the document at path,
// and always tears the browser down before returning.
func (c *Capturer) Capture(ctx context.Context, path string) ([]model.Exchange, error) {
	browser, err := c.launch(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			c.logger.Warn("browser shutdown reported an error", logging.Field{Key: "error", Value: cerr})
		}
	}()

	return browser.Capture(ctx, path, c.filter)
}
