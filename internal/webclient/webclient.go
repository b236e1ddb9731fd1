package webclient

import "context"

// WebClient performs plain HTTP requests for the page fetcher.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
