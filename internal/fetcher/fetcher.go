package fetcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/webclient"
)

// Module: fetcher
// Downloads the target page and hands it to the capturer as a local file.
type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// TemporaryDocument is the on-disk copy of a fetched page.
type TemporaryDocument struct {
	Path        string
	SourceURL   string
	Size        int64
	ContentType string
	FetchedAt   time.Time
}

// Remove deletes the file. Removing an already deleted document is not an error.
func (d *TemporaryDocument) Remove() error {
	if d == nil || d.Path == "" {
		return nil
	}
	if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", d.Path, err)
	}
	return nil
}

// New creates a new Fetcher with the given webclient and logger
func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: nil webclient")
	}
	if cfg.TempPattern == "" {
		cfg.TempPattern = DefaultConfig().TempPattern
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logging.OrNop(logger).With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch issues a single GET for url and writes the body verbatim to a new
// temporary file. Transport failures and non-2xx responses yield *FetchError
// and leave no file behind.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*TemporaryDocument, error) {
	resp, err := f.wc.Get(ctx, url)
	if err != nil {
		f.logger.Error("fetch failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err})
		return nil, &FetchError{URL: url, Err: err}
	}
	if !resp.OK() {
		f.logger.Error("fetch returned non-success status",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := f.persist(resp.Body)
	if err != nil {
		return nil, err
	}
	doc.SourceURL = url
	doc.FetchedAt = resp.FetchedAt
	doc.ContentType = resp.Headers.Get("Content-Type")

	f.logger.Info("fetched page",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "size", Value: humanize.IBytes(uint64(doc.Size))},
		logging.Field{Key: "path", Value: doc.Path})

	return doc, nil
}

func (f *Fetcher) persist(body []byte) (*TemporaryDocument, error) {
	file, err := os.CreateTemp(f.cfg.TempDir, f.cfg.TempPattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := file.Name()

	if _, err := file.Write(body); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &TemporaryDocument{Path: path, Size: int64(len(body))}, nil
}
