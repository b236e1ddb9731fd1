package llm

import "errors"

var (
	// ErrMissingCredentials is returned by constructors when no API key or
	// credential chain is available for the provider.
	ErrMissingCredentials = errors.New("llm: missing credentials")

	// ErrEmptyResponse is returned when the model answered without any text.
	ErrEmptyResponse = errors.New("llm: empty response")
)
