package export

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

// Highlight writes text to w with terminal colors. The lexer is picked from
// filename, then from language, then falls back to plain text.
func Highlight(w io.Writer, text, filename, language, style string) error {
	lexer := lexers.Match(filename)
	if lexer == nil && language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	s := chromastyles.Get(style)
	if s == nil {
		s = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	if err := formatter.Format(w, s, iterator); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}
