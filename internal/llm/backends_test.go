package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/web2api/internal/llm"
	"github.com/raysh454/web2api/internal/synth"
)

type recordedCall struct {
	Path   string
	Header http.Header
	Body   map[string]any
}

// fakeProvider answers every POST with body and records what it received.
func fakeProvider(t *testing.T, status int, body string) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)
		mu.Lock()
		calls = append(calls, recordedCall{Path: r.URL.Path, Header: r.Header.Clone(), Body: decoded})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func testRequest() synth.Request {
	return synth.Request{
		Index:    0,
		Prompt:   synth.Prompt{System: "system text", User: "user text"},
		Language: "go",
	}
}

func testConfig(provider, baseURL string) llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = provider
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	cfg.Model = "test-model"
	cfg.MaxRetries = 0
	cfg.Timeout = 10 * time.Second
	return cfg
}

func TestOpenAI_Generate(t *testing.T) {
	t.Parallel()
	srv, calls := fakeProvider(t, http.StatusOK, `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": "type Item struct{}"}}]
	}`)

	gen, err := llm.New(context.Background(), testConfig("openai", srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := gen.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "type Item struct{}" {
		t.Errorf("unexpected output %q", out)
	}

	got := calls()
	if len(got) != 1 || !strings.HasSuffix(got[0].Path, "/chat/completions") {
		t.Fatalf("unexpected calls: %+v", got)
	}
	if auth := got[0].Header.Get("Authorization"); auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if got[0].Body["model"] != "test-model" {
		t.Errorf("model = %v", got[0].Body["model"])
	}
	msgs, _ := got[0].Body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", got[0].Body["messages"])
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	t.Parallel()
	srv, _ := fakeProvider(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`)
	gen, err := llm.New(context.Background(), testConfig("openai", srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := gen.Generate(context.Background(), testRequest()); err == nil {
		t.Error("expected error on 500")
	}
}

func TestAnthropic_Generate(t *testing.T) {
	t.Parallel()
	srv, calls := fakeProvider(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "test-model",
		"content": [{"type": "text", "text": "class Item: pass"}],
		"stop_reason": "end_turn", "usage": {"input_tokens": 3, "output_tokens": 4}
	}`)

	gen, err := llm.New(context.Background(), testConfig("anthropic", srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := gen.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "class Item: pass" {
		t.Errorf("unexpected output %q", out)
	}

	got := calls()
	if len(got) != 1 || !strings.HasSuffix(got[0].Path, "/v1/messages") {
		t.Fatalf("unexpected calls: %+v", got)
	}
	if key := got[0].Header.Get("X-Api-Key"); key != "test-key" {
		t.Errorf("x-api-key = %q", key)
	}
	if got[0].Body["max_tokens"] != float64(4096) {
		t.Errorf("max_tokens = %v", got[0].Body["max_tokens"])
	}
}

func TestAnthropic_EmptyContent(t *testing.T) {
	t.Parallel()
	srv, _ := fakeProvider(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "test-model",
		"content": [], "stop_reason": "end_turn", "usage": {"input_tokens": 1, "output_tokens": 0}
	}`)
	gen, err := llm.New(context.Background(), testConfig("anthropic", srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := gen.Generate(context.Background(), testRequest()); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGemini_Generate(t *testing.T) {
	t.Parallel()
	srv, calls := fakeProvider(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "interface Item {}"}]},
			"finishReason": "STOP"}]
	}`)

	gen, err := llm.New(context.Background(), testConfig("gemini", srv.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := gen.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "interface Item {}" {
		t.Errorf("unexpected output %q", out)
	}

	got := calls()
	if len(got) != 1 || !strings.HasSuffix(got[0].Path, "/models/test-model:generateContent") {
		t.Fatalf("unexpected calls: %+v", got)
	}
	if _, ok := got[0].Body["systemInstruction"]; !ok {
		t.Errorf("system instruction not sent: %v", got[0].Body)
	}
}
