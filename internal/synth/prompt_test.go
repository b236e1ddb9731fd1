package synth_test

import (
	"strings"
	"testing"

	"github.com/raysh454/web2api/internal/model"
	"github.com/raysh454/web2api/internal/synth"
)

func sampleExchange() model.Exchange {
	return model.Exchange{
		URL:    "http://example.test/api/items",
		Method: "POST",
		RequestHeaders: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer secret-token",
		},
		RequestBody:     []byte(`{"q":"x"}`),
		ResponseHeaders: map[string]string{"Content-Type": "application/json"},
		ResponseBody:    []byte(`{"id":1}`),
		StatusCode:      200,
	}
}

func TestPromptBuilder_EmbedsExchange(t *testing.T) {
	t.Parallel()
	b := synth.NewPromptBuilder(synth.DefaultConfig(), synth.StructuralInferrer{})

	p, err := b.Build(sampleExchange())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{
		"Generate Go models",
		"URL: http://example.test/api/items",
		"Method: POST",
		"Response Status: 200",
		"Content-Type: application/json",
		`"q": "x"`,
		`"id": 1`,
		"Observed request body shape: {q: string}",
		"Observed response body shape: {id: integer}",
		"typed request model, a typed response model, and sample invocation code",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q:\n%s", want, p.User)
		}
	}
	if !strings.Contains(p.System, "Go source") {
		t.Errorf("system prompt does not name the language:\n%s", p.System)
	}
}

func TestPromptBuilder_RedactsHeaders(t *testing.T) {
	t.Parallel()
	p, err := synth.NewPromptBuilder(synth.DefaultConfig(), nil).Build(sampleExchange())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(p.User, "secret-token") {
		t.Errorf("authorization value leaked into prompt:\n%s", p.User)
	}
	if !strings.Contains(p.User, "Authorization: [REDACTED]") {
		t.Errorf("expected redacted header:\n%s", p.User)
	}
	if strings.Contains(p.User, "Observed") {
		t.Errorf("no shapes expected without an inferrer:\n%s", p.User)
	}
}

func TestPromptBuilder_AbsentAndTruncatedBodies(t *testing.T) {
	t.Parallel()
	cfg := synth.DefaultConfig()
	cfg.MaxBodyBytes = 10
	ex := model.Exchange{
		URL:          "http://example.test/x",
		Method:       "GET",
		ResponseBody: []byte(strings.Repeat("a", 50)),
	}

	p, err := synth.NewPromptBuilder(cfg, nil).Build(ex)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.User, "Request Body:\n(none)") {
		t.Errorf("absent request body not marked:\n%s", p.User)
	}
	if !strings.Contains(p.User, "aaaaaaaaaa\n... (truncated 40 bytes)") {
		t.Errorf("body not truncated:\n%s", p.User)
	}
	if !strings.Contains(p.User, "Request Headers:\n  (none)") {
		t.Errorf("empty headers not marked:\n%s", p.User)
	}
}

func TestPromptBuilder_IsDeterministic(t *testing.T) {
	t.Parallel()
	ex := sampleExchange()
	ex.RequestHeaders["A"] = "1"
	ex.RequestHeaders["Z"] = "2"
	b := synth.NewPromptBuilder(synth.DefaultConfig(), synth.StructuralInferrer{})

	first, _ := b.Build(ex)
	for i := 0; i < 20; i++ {
		again, _ := b.Build(ex)
		if again != first {
			t.Fatal("prompt differs between builds")
		}
	}
}

func TestLanguageName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{"go": "Go", "Python": "Python (Pydantic v2)", "ts": "TypeScript", "": "Go", "kotlin": "kotlin"}
	for in, want := range cases {
		if got := synth.LanguageName(in); got != want {
			t.Errorf("LanguageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"```go\ntype A struct{}\n```": "type A struct{}",
		"  ```\nx := 1\n```  \n":      "x := 1",
		"type B struct{}":             "type B struct{}",
		"```python\nclass A: pass\n":  "class A: pass",
	}
	for in, want := range cases {
		if got := synth.StripCodeFence(in); got != want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactHeaders(t *testing.T) {
	t.Parallel()
	in := map[string]string{"Cookie": "a=b", "Accept": "*/*"}
	out := synth.RedactHeaders(in, []string{"COOKIE"}, "***")
	if out["Cookie"] != "***" || out["Accept"] != "*/*" {
		t.Errorf("RedactHeaders = %v", out)
	}
	if in["Cookie"] != "a=b" {
		t.Error("input map was modified")
	}
}
