package llm

import (
	"context"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/synth"
)

// None generates nothing. Runs with it still capture and write an (empty) artifact.
type None struct{}

func newNone(context.Context, Config, logging.Logger) (synth.Generator, error) {
	return None{}, nil
}

func (None) Generate(ctx context.Context, _ synth.Request) (string, error) {
	return "", ctx.Err()
}
