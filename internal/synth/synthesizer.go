package synth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/model"
	"golang.org/x/sync/errgroup"
)

// Synthesizer turns captured exchanges into generated source text.
type Synthesizer struct {
	cfg     Config
	prompts *PromptBuilder
	gen     Generator
	logger  logging.Logger
}

// New builds a Synthesizer. inferrer may be nil.
func New(cfg Config, gen Generator, inferrer SchemaInferrer, logger logging.Logger) (*Synthesizer, error) {
	if gen == nil {
		return nil, errors.New("synth: nil generator")
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	switch cfg.FailurePolicy {
	case "":
		cfg.FailurePolicy = Continue
	case Continue, FailFast:
	default:
		return nil, fmt.Errorf("synth: unknown failure policy %q", cfg.FailurePolicy)
	}
	return &Synthesizer{
		cfg:     cfg,
		prompts: NewPromptBuilder(cfg, inferrer),
		gen:     gen,
		logger:  logging.OrNop(logger).With(logging.Field{Key: "component", Value: "synth"}),
	}, nil
}

// Synthesize generates one fragment per exchange. Fragments keep the order of
// exchanges whatever the concurrency. Under the Continue policy a failed
// exchange yields a fragment with Err set and the run goes on; under FailFast
// the first *GenerationError is returned along with the partial artifact.
func (s *Synthesizer) Synthesize(ctx context.Context, exchanges []model.Exchange) (*model.Artifact, error) {
	fragments := make([]model.Fragment, len(exchanges))
	names := endpointNames(exchanges)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, ex := range exchanges {
		g.Go(func() error {
			frag, err := s.generateOne(gctx, i, names[i], ex)
			fragments[i] = frag
			if err != nil && s.cfg.FailurePolicy == FailFast {
				return err
			}
			return nil
		})
	}

	artifact := &model.Artifact{Fragments: fragments}
	if err := g.Wait(); err != nil {
		return artifact, err
	}
	if err := ctx.Err(); err != nil {
		return artifact, err
	}

	failed := len(artifact.Failed())
	s.logger.Info("synthesis finished",
		logging.Field{Key: "exchanges", Value: len(exchanges)},
		logging.Field{Key: "failed", Value: failed},
		logging.Field{Key: "took", Value: time.Since(start).String()})

	return artifact, nil
}

func (s *Synthesizer) generateOne(ctx context.Context, i int, name string, ex model.Exchange) (model.Fragment, error) {
	frag := model.Fragment{Index: i, URL: ex.URL, Method: ex.Method}
	fail := func(err error) (model.Fragment, error) {
		gerr := &GenerationError{Index: i, Method: ex.Method, URL: ex.URL, Err: err}
		frag.Err = gerr
		s.logger.Warn("generation failed, skipping exchange",
			logging.Field{Key: "index", Value: i},
			logging.Field{Key: "method", Value: ex.Method},
			logging.Field{Key: "url", Value: ex.URL},
			logging.Field{Key: "error", Value: err})
		return frag, gerr
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	prompt, err := s.prompts.Build(ex)
	if err != nil {
		return fail(err)
	}

	text, err := s.gen.Generate(ctx, Request{
		Index:    i,
		Name:     name,
		Exchange: ex.Clone(),
		Prompt:   prompt,
		Language: s.cfg.Language,
	})
	if err != nil {
		return fail(err)
	}

	frag.Text = StripCodeFence(text)
	if frag.Text == "" {
		s.logger.Debug("generator returned no text",
			logging.Field{Key: "index", Value: i},
			logging.Field{Key: "url", Value: ex.URL})
	}
	return frag, nil
}
