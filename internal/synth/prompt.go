package synth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/raysh454/web2api/internal/model"
	"github.com/tidwall/pretty"
)

const systemPrompt = `You write API client code from observed HTTP traffic.
For each endpoint you are given, produce {{.Language}} source containing:
1. a typed model for the request (query, headers that matter, body),
2. a typed model for the response body,
3. example code that invokes the endpoint and decodes the response.
Name types after the endpoint path. Keep field names exactly as they appear on the wire.
Output only source code. Do not wrap it in markdown code blocks. Put any explanation in code comments.`

const userPrompt = `Generate {{.Language}} models for the following API endpoint:
URL: {{.URL}}
Method: {{.Method}}
{{- if .Status}}
Response Status: {{.Status}}
{{- end}}

Request Headers:
{{- range .RequestHeaders}}
  {{.Name}}: {{.Value}}
{{- else}}
  (none)
{{- end}}

Request Body:
{{.RequestBody}}

Response Headers:
{{- range .ResponseHeaders}}
  {{.Name}}: {{.Value}}
{{- else}}
  (none)
{{- end}}

Response Body:
{{.ResponseBody}}
{{- if .RequestShape}}

Observed request body shape: {{.RequestShape}}
{{- end}}
{{- if .ResponseShape}}

Observed response body shape: {{.ResponseShape}}
{{- end}}

Include a typed request model, a typed response model, and sample invocation code for the API.
`

var (
	systemTmpl = template.Must(template.New("system").Parse(systemPrompt))
	userTmpl   = template.Must(template.New("user").Parse(userPrompt))
)

var languageNames = map[string]string{
	"go":         "Go",
	"golang":     "Go",
	"python":     "Python (Pydantic v2)",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"java":       "Java",
	"rust":       "Rust (serde)",
}

// LanguageName returns the display name used in prompts.
func LanguageName(lang string) string {
	if n, ok := languageNames[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return n
	}
	if lang == "" {
		return "Go"
	}
	return lang
}

type header struct{ Name, Value string }

type promptData struct {
	Language        string
	URL             string
	Method          string
	Status          int
	RequestHeaders  []header
	RequestBody     string
	ResponseHeaders []header
	ResponseBody    string
	RequestShape    string
	ResponseShape   string
}

// PromptBuilder renders one prompt per exchange.
type PromptBuilder struct {
	cfg      Config
	inferrer SchemaInferrer
}

// NewPromptBuilder returns a builder. inferrer may be nil, in which case no
// shape hints are embedded.
func NewPromptBuilder(cfg Config, inferrer SchemaInferrer) *PromptBuilder {
	return &PromptBuilder{cfg: cfg, inferrer: inferrer}
}

func (b *PromptBuilder) Build(ex model.Exchange) (Prompt, error) {
	data := promptData{
		Language:        LanguageName(b.cfg.Language),
		URL:             ex.URL,
		Method:          ex.Method,
		Status:          ex.StatusCode,
		RequestHeaders:  b.headers(ex.RequestHeaders),
		RequestBody:     b.body(ex.RequestBody),
		ResponseHeaders: b.headers(ex.ResponseHeaders),
		ResponseBody:    b.body(ex.ResponseBody),
	}
	if b.cfg.InferShapes && b.inferrer != nil {
		data.RequestShape = b.shape(ex.RequestBody)
		data.ResponseShape = b.shape(ex.ResponseBody)
	}

	var sys, user bytes.Buffer
	if err := systemTmpl.Execute(&sys, data); err != nil {
		return Prompt{}, fmt.Errorf("render system prompt: %w", err)
	}
	if err := userTmpl.Execute(&user, data); err != nil {
		return Prompt{}, fmt.Errorf("render user prompt: %w", err)
	}
	return Prompt{System: sys.String(), User: user.String()}, nil
}

func (b *PromptBuilder) headers(h map[string]string) []header {
	h = RedactHeaders(h, b.cfg.RedactHeaders, b.cfg.Replacement)
	out := make([]header, 0, len(h))
	for _, name := range model.HeaderNames(h) {
		out = append(out, header{Name: name, Value: h[name]})
	}
	return out
}

// body renders a body for the prompt: JSON is pretty-printed, binary is
// summarized, and anything over MaxBodyBytes is cut.
func (b *PromptBuilder) body(raw []byte) string {
	if raw == nil {
		return "(none)"
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "(empty)"
	}
	if !utf8.Valid(raw) {
		return fmt.Sprintf("(binary, %d bytes)", len(raw))
	}

	text := raw
	if json.Valid(raw) {
		text = bytes.TrimSpace(pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "}))
	}

	if limit := b.cfg.MaxBodyBytes; limit > 0 && len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		return fmt.Sprintf("%s\n... (truncated %d bytes)", text[:cut], len(text)-cut)
	}
	return string(text)
}

func (b *PromptBuilder) shape(raw []byte) string {
	if raw == nil {
		return ""
	}
	t, err := b.inferrer.Infer(raw)
	if err != nil {
		return ""
	}
	return t.String()
}
