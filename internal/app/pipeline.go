package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/web2api/internal/export"
	"github.com/raysh454/web2api/internal/fetcher"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/model"
	"github.com/raysh454/web2api/internal/utils"
)

// PageFetcher downloads the target page to a temporary file.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.TemporaryDocument, error)
}

// TrafficCapturer loads a saved page in a browser and returns its traffic.
type TrafficCapturer interface {
	Capture(ctx context.Context, path string) ([]model.Exchange, error)
}

// ModelSynthesizer turns exchanges into generated code.
type ModelSynthesizer interface {
	Synthesize(ctx context.Context, exchanges []model.Exchange) (*model.Artifact, error)
}

// Pipeline runs fetch, capture, synthesis and output for one target.
type Pipeline struct {
	Fetcher     PageFetcher
	Capturer    TrafficCapturer
	Synthesizer ModelSynthesizer
	Logger      logging.Logger
	Config      *Config

	// Stdout receives the highlighted artifact when Export.Print is set.
	Stdout io.Writer
}

// Result summarizes a finished run.
type Result struct {
	RunID     string
	Target    string
	Exchanges []model.Exchange
	Artifact  *model.Artifact
	Output    *export.WriteResult

	// DocumentPath is set when the fetched page was kept.
	DocumentPath string
	HARPath      string
	Took         time.Duration
}

// Run executes the pipeline against target. The temporary page is removed on
// every path unless KeepTemp is set.
func (p *Pipeline) Run(ctx context.Context, target string) (*Result, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	logger := logging.OrNop(p.Logger).With(logging.Field{Key: "run_id", Value: res.RunID})

	normalized, err := utils.NormalizeTarget(target, utils.TargetOptions{DefaultScheme: cfg.DefaultScheme})
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", target, err)
	}
	res.Target = normalized
	logger.Info("run started", logging.Field{Key: "target", Value: normalized})

	doc, err := p.Fetcher.Fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if cfg.KeepTemp {
				res.DocumentPath = doc.Path
				logger.Info("keeping fetched page", logging.Field{Key: "path", Value: doc.Path})
				return
			}
			if err := doc.Remove(); err != nil {
				logger.Warn("could not remove fetched page",
					logging.Field{Key: "path", Value: doc.Path},
					logging.Field{Key: "error", Value: err})
			}
		})
	}
	defer cleanup()

	if summary, err := fetcher.Inspect(doc); err != nil {
		logger.Warn("could not inspect fetched page", logging.Field{Key: "error", Value: err})
	} else if len(summary.RelativeScripts) > 0 {
		logger.Warn("page references relative scripts that will not load from a local file",
			logging.Field{Key: "relative_scripts", Value: summary.RelativeScripts},
			logging.Field{Key: "title", Value: summary.Title})
	}

	exchanges, err := p.Capturer.Capture(ctx, doc.Path)
	if err != nil {
		return nil, err
	}
	cleanup()
	res.Exchanges = exchanges
	logger.Info("traffic captured", logging.Field{Key: "exchanges", Value: len(exchanges)})

	artifact, err := p.Synthesizer.Synthesize(ctx, exchanges)
	if err != nil {
		return nil, err
	}
	res.Artifact = artifact

	text := artifact.Text()
	out, err := export.WriteArtifact(cfg.Export.Output, text, logger)
	if err != nil {
		return nil, err
	}
	res.Output = out

	if cfg.Export.HARPath != "" {
		if err := export.WriteHAR(cfg.Export.HARPath, exchanges); err != nil {
			return nil, err
		}
		res.HARPath = cfg.Export.HARPath
		logger.Info("har written", logging.Field{Key: "path", Value: cfg.Export.HARPath})
	}

	if cfg.Export.Print && p.Stdout != nil {
		if err := export.Highlight(p.Stdout, text, filepath.Base(cfg.Export.Output), cfg.Synth.Language, cfg.Export.Style); err != nil {
			logger.Warn("could not print artifact", logging.Field{Key: "error", Value: err})
		}
	}

	res.Took = time.Since(start)
	logger.Info("run finished",
		logging.Field{Key: "exchanges", Value: len(exchanges)},
		logging.Field{Key: "fragments", Value: len(artifact.Fragments)},
		logging.Field{Key: "failed", Value: len(artifact.Failed())},
		logging.Field{Key: "output", Value: cfg.Export.Output},
		logging.Field{Key: "took", Value: res.Took.String()})
	return res, nil
}
