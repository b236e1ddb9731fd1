// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200.
// Set FailURLs[url] = true to force an error, or Status[url] to answer with
// a different status code.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Status        map[string]int
	Bodies        map[string][]byte
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, errors.New("dummy fetch fail for " + req.URL)
	}

	status := http.StatusOK
	if s, ok := d.Status[req.URL]; ok {
		status = s
	}
	body := []byte("ok:" + req.URL)
	if b, ok := d.Bodies[req.URL]; ok {
		body = b
	}

	return &webclient.Response{
		Request:    req,
		Body:       body,
		Headers:    http.Header{},
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }
