package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/model"
)

// Browser is a running Chrome instance. Close must be called on every path;
// it terminates the process and removes its profile directory.
type Browser struct {
	cfg    Config
	logger logging.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	for k, v := range cfg.Flags {
		opts = append(opts, chromedp.Flag(k, v))
	}
	return append(opts, cfg.AllocatorOptions...)
}

// Launch starts Chrome and waits until it accepts commands.
func Launch(ctx context.Context, cfg Config, logger logging.Logger) (*Browser, error) {
	logger = logging.OrNop(logger).With(logging.Field{Key: "component", Value: "capture"})

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	bctx, cancel := chromedp.NewContext(allocCtx)

	start := time.Now()
	// Run with no actions only starts the browser.
	if err := chromedp.Run(bctx); err != nil {
		cancel()
		allocCancel()
		logger.Error("browser launch failed",
			logging.Field{Key: "exec_path", Value: cfg.ExecPath},
			logging.Field{Key: "error", Value: err})
		return nil, &BrowserLaunchError{ExecPath: cfg.ExecPath, Err: err}
	}

	logger.Debug("browser started",
		logging.Field{Key: "headless", Value: cfg.Headless},
		logging.Field{Key: "took", Value: time.Since(start).String()})

	return &Browser{
		cfg:         cfg,
		logger:      logger,
		ctx:         bctx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// Close shuts the browser down. Safe to call more than once.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		err := chromedp.Cancel(b.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			b.closeErr = fmt.Errorf("close browser: %w", err)
		}
		b.cancel()
		b.allocCancel()
		b.logger.Debug("browser closed")
	})
	return b.closeErr
}

// Capture opens path in a new tab through a file:// URL, waits for the load
// event and for the network to go quiet, and returns the entries accepted
// by filter as exchanges in request order.
func (b *Browser) Capture(ctx context.Context, path string, filter Filter) ([]model.Exchange, error) {
	if filter == nil {
		filter = And(XHROnly, Completed)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	rec := newRecorder(b.cfg.IdleAfter)
	defer rec.idle.stop()
	chromedp.ListenTarget(tabCtx, rec.handle)

	// Create the tab with the unbounded context; a timeout on the first Run
	// would tear the tab down with it.
	if err := chromedp.Run(tabCtx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("open tab: %w", err)
	}

	navTimeout := b.cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = DefaultConfig().NavigationTimeout
	}
	navCtx, cancelNav := context.WithTimeout(tabCtx, navTimeout)
	defer cancelNav()

	b.logger.Info("loading page", logging.Field{Key: "url", Value: target})
	if err := chromedp.Run(navCtx, network.Enable(), chromedp.Navigate(target)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return nil, &NavigationTimeoutError{URL: target, Timeout: navTimeout, Err: err}
		}
		return nil, fmt.Errorf("navigate %s: %w", target, err)
	}

	if err := b.waitSettled(ctx, rec); err != nil {
		return nil, err
	}

	entries := rec.snapshot()
	exchanges := make([]model.Exchange, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if !filter(*e) {
			continue
		}
		if err := b.collectBodies(tabCtx, e); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		exchanges = append(exchanges, toExchange(*e))
	}

	b.logger.Info("captured network traffic",
		logging.Field{Key: "requests", Value: len(entries)},
		logging.Field{Key: "exchanges", Value: len(exchanges)},
		logging.Field{Key: "origin", Value: "file"})

	return exchanges, nil
}

func (b *Browser) waitSettled(ctx context.Context, rec *recorder) error {
	rec.idle.arm()

	settle := b.cfg.SettleTimeout
	if settle <= 0 {
		settle = DefaultConfig().SettleTimeout
	}
	timer := time.NewTimer(settle)
	defer timer.Stop()

	select {
	case <-rec.idle.idle():
		return nil
	case <-timer.C:
		b.logger.Warn("network did not go idle, continuing with completed requests",
			logging.Field{Key: "settle_timeout", Value: settle.String()},
			logging.Field{Key: "in_flight", Value: rec.idle.inFlight()})
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// collectBodies asks the browser for the bodies the events did not carry.
// A missing body is logged, not fatal.
func (b *Browser) collectBodies(tabCtx context.Context, e *Entry) error {
	id := network.RequestID(e.RequestID)
	return chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		if e.Finished {
			body, err := network.GetResponseBody(id).Do(ctx)
			if err != nil {
				b.logger.Warn("response body unavailable",
					logging.Field{Key: "url", Value: e.URL},
					logging.Field{Key: "error", Value: err})
			} else {
				e.ResponseBody = body
			}
		}
		if e.HasPostData && e.PostData == nil {
			data, err := network.GetRequestPostData(id).Do(ctx)
			if err != nil {
				b.logger.Warn("request body unavailable",
					logging.Field{Key: "url", Value: e.URL},
					logging.Field{Key: "error", Value: err})
			} else {
				e.PostData = []byte(data)
			}
		}
		return nil
	}))
}

func toExchange(e Entry) model.Exchange {
	ex := model.Exchange{
		URL:             e.URL,
		Method:          e.Method,
		RequestHeaders:  e.RequestHeaders,
		ResponseHeaders: e.ResponseHeaders,
		ResponseBody:    e.ResponseBody,
		StatusCode:      e.StatusCode,
		MimeType:        e.MimeType,
		ResourceType:    e.ResourceType,
		CapturedAt:      e.StartedAt,
	}
	if e.HasPostData || e.PostData != nil {
		ex.RequestBody = e.PostData
		if ex.RequestBody == nil {
			ex.RequestBody = []byte{}
		}
	}
	if ex.RequestHeaders == nil {
		ex.RequestHeaders = map[string]string{}
	}
	if ex.ResponseHeaders == nil {
		ex.ResponseHeaders = map[string]string{}
	}
	return ex
}
