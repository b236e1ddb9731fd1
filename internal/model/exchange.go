package model

import (
	"maps"
	"slices"
	"time"
)

// Exchange is one observed network transaction captured from the browser.
// Capturer returns Exchanges by value; callers should treat them as read-only.
type Exchange struct {
	URL    string `json:"url"`
	Method string `json:"method"`

	RequestHeaders map[string]string `json:"request_headers,omitempty"`
	// RequestBody is nil when the request carried no body.
	RequestBody []byte `json:"request_body,omitempty"`

	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	// ResponseBody is nil when the browser could not provide one.
	ResponseBody []byte `json:"response_body,omitempty"`

	StatusCode   int       `json:"status_code,omitempty"`
	MimeType     string    `json:"mime_type,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	CapturedAt   time.Time `json:"captured_at"`
}

// HasRequestBody reports whether a request body was observed.
func (e Exchange) HasRequestBody() bool { return e.RequestBody != nil }

// HasResponseBody reports whether a response body was observed.
func (e Exchange) HasResponseBody() bool { return e.ResponseBody != nil }

// Clone returns a deep copy so that the caller can't mutate shared maps or slices.
func (e Exchange) Clone() Exchange {
	out := e
	out.RequestHeaders = maps.Clone(e.RequestHeaders)
	out.ResponseHeaders = maps.Clone(e.ResponseHeaders)
	out.RequestBody = slices.Clone(e.RequestBody)
	out.ResponseBody = slices.Clone(e.ResponseBody)
	return out
}

// HeaderNames returns the header names of h in sorted order.
func HeaderNames(h map[string]string) []string {
	return slices.Sorted(maps.Keys(h))
}
