package webclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raysh454/web2api/internal/webclient"
)

// pageServer serves a small HTML document and records the User-Agent of the
// last request.
func pageServer(t *testing.T, status int, gotUA *atomic.Value) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotUA != nil {
			gotUA.Store(r.UserAgent())
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<html><script>fetch('/api/items')</script></html>"))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestGet_ReturnsPageAndHeaders(t *testing.T) {
	t.Parallel()
	ts := pageServer(t, http.StatusOK, nil)
	client, _ := webclient.NewNetHTTPClient(webclient.DefaultConfig(), &noopLogger{}, ts.Client())
	defer client.Close()

	resp, err := client.Get(context.Background(), ts.URL+"/page")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.OK() {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := string(resp.Body); got != "<html><script>fetch('/api/items')</script></html>" {
		t.Errorf("body = %q", got)
	}
	if ct := resp.Headers.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}
	if resp.Request == nil || resp.Request.URL != ts.URL+"/page" {
		t.Errorf("response does not carry its request: %+v", resp.Request)
	}
	if resp.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestGet_NonSuccessStatusIsNotAnError(t *testing.T) {
	t.Parallel()
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		ts := pageServer(t, status, nil)
		client, _ := webclient.NewNetHTTPClient(webclient.Config{}, nil, ts.Client())

		resp, err := client.Get(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("Get with status %d: %v", status, err)
		}
		if resp.StatusCode != status || resp.OK() {
			t.Errorf("status = %d (OK=%v), want %d", resp.StatusCode, resp.OK(), status)
		}
	}
}

func TestGet_SendsConfiguredUserAgent(t *testing.T) {
	t.Parallel()
	var ua atomic.Value
	ts := pageServer(t, http.StatusOK, &ua)
	client, _ := webclient.NewNetHTTPClient(webclient.DefaultConfig(), nil, ts.Client())

	if _, err := client.Get(context.Background(), ts.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, _ := ua.Load().(string); got != webclient.DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", got, webclient.DefaultUserAgent)
	}
}

func TestGet_TimeoutFromConfig(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	client, _ := webclient.NewNetHTTPClient(webclient.Config{Timeout: 50 * time.Millisecond}, nil, nil)
	start := time.Now()
	if _, err := client.Get(context.Background(), ts.URL); err == nil {
		t.Fatal("expected timeout error")
	}
	if took := time.Since(start); took > 5*time.Second {
		t.Errorf("timeout not applied, took %v", took)
	}
}

func TestGet_CanceledContext(t *testing.T) {
	t.Parallel()
	ts := pageServer(t, http.StatusOK, nil)
	client, _ := webclient.NewNetHTTPClient(webclient.Config{}, nil, ts.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Get(ctx, ts.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGet_UnreachableHost(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, _ := webclient.NewNetHTTPClient(webclient.Config{Timeout: 2 * time.Second}, nil, nil)
	if _, err := client.Get(context.Background(), url); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestDo_NilRequest(t *testing.T) {
	t.Parallel()
	client, _ := webclient.NewNetHTTPClient(webclient.Config{}, nil, nil)
	if _, err := client.Do(context.Background(), nil); !errors.Is(err, webclient.ErrNilRequest) {
		t.Errorf("expected ErrNilRequest, got %v", err)
	}
}
