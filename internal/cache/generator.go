package cache

import (
	"context"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
)

type cachedGenerator struct {
	next      synth.Generator
	store     *Store
	namespace string
}

// Wrap returns a generator that answers from store when the same namespace,
// language and prompt were seen before, and records successful answers of
// next otherwise. namespace should identify the backend and model.
func Wrap(next synth.Generator, store *Store, namespace string) synth.Generator {
	if store == nil {
		return next
	}
	return &cachedGenerator{next: next, store: store, namespace: namespace}
}

func (c *cachedGenerator) Generate(ctx context.Context, req synth.Request) (string, error) {
	key := Key(c.namespace, req.Language, req.Prompt.System, req.Prompt.User)

	if text, ok, err := c.store.Get(ctx, key); err != nil {
		c.store.logger.Warn("cache lookup failed", logging.Field{Key: "error", Value: err})
	} else if ok {
		c.store.logger.Debug("cache hit",
			logging.Field{Key: "index", Value: req.Index},
			logging.Field{Key: "url", Value: req.Exchange.URL})
		return text, nil
	}

	text, err := c.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if err := c.store.Put(ctx, c.namespace, key, text); err != nil {
		c.store.logger.Warn("cache store failed", logging.Field{Key: "error", Value: err})
	}
	return text, nil
}
