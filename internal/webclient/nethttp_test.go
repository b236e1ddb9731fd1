package webclient_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/webclient"
)

// noopLogger is a test-local logger implementation that discards all log messages
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, fields ...logging.Field) {}
func (n *noopLogger) Info(msg string, fields ...logging.Field)  {}
func (n *noopLogger) Warn(msg string, fields ...logging.Field)  {}
func (n *noopLogger) Error(msg string, fields ...logging.Field) {}
func (n *noopLogger) With(fields ...logging.Field) logging.Logger {
	return n
}

func TestNewNetHTTPClient_DefaultTimeoutFromConfig(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewNetHTTPClient(webclient.Config{Timeout: 5 * time.Second}, &noopLogger{}, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	if got := client.HTTPClient().Timeout; got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
}

func TestNewNetHTTPClient_ZeroTimeoutFallsBack(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	if got := client.HTTPClient().Timeout; got != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", got)
	}
}

func TestNewNetHTTPClient_WithCustomClient(t *testing.T) {
	t.Parallel()
	customClient := &http.Client{}

	client, err := webclient.NewNetHTTPClient(webclient.Config{}, &noopLogger{}, customClient)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	if client.HTTPClient() != customClient {
		t.Error("expected injected *http.Client to be used")
	}
}

func TestResponseOK(t *testing.T) {
	t.Parallel()
	cases := map[int]bool{199: false, 200: true, 204: true, 299: true, 301: false, 404: false, 500: false}
	for code, want := range cases {
		if got := (&webclient.Response{StatusCode: code}).OK(); got != want {
			t.Errorf("OK() for %d = %v, want %v", code, got, want)
		}
	}
	var nilResp *webclient.Response
	if nilResp.OK() {
		t.Error("nil response should not be OK")
	}
}
