package fetcher

import "fmt"

// FetchError reports that the page could not be retrieved: the request failed
// outright, or the server answered with a non-2xx status.
type FetchError struct {
	URL string
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
