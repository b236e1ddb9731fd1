package synth

import (
	"context"
	"strings"

	"github.com/raysh454/web2api/internal/model"
)

// Prompt is the text sent to a generation backend.
type Prompt struct {
	System string
	User   string
}

// Request is one generation call. Backends that talk to a model use Prompt;
// local backends may work from Exchange directly. Name is unique within the
// run and safe to use as a Go identifier prefix.
type Request struct {
	Index    int
	Name     string
	Exchange model.Exchange
	Prompt   Prompt
	Language string
}

// Generator turns a request into source text. An empty string with a nil
// error is a valid answer.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StripCodeFence removes a surrounding markdown code block, which models add
// even when told not to.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.Index(trimmed, "\n"); idx != -1 {
			trimmed = trimmed[idx+1:]
		} else {
			trimmed = ""
		}
		if end := strings.LastIndex(trimmed, "```"); end != -1 {
			trimmed = trimmed[:end]
		}
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
