package synth

import (
	"errors"
	"fmt"
)

var (
	ErrNotJSON   = errors.New("sample is not valid JSON")
	ErrNoSamples = errors.New("no samples to infer from")
)

// GenerationError reports a failed generation call for one exchange.
type GenerationError struct {
	Index  int
	Method string
	URL    string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate models for exchange %d (%s %s): %v", e.Index, e.Method, e.URL, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
