package capture

import (
	"fmt"
	"time"
)

// BrowserLaunchError reports that Chrome could not be started.
type BrowserLaunchError struct {
	ExecPath string
	Err      error
}

func (e *BrowserLaunchError) Error() string {
	if e.ExecPath != "" {
		return fmt.Sprintf("launch browser %s: %v", e.ExecPath, e.Err)
	}
	return fmt.Sprintf("launch browser: %v", e.Err)
}

func (e *BrowserLaunchError) Unwrap() error { return e.Err }

// NavigationTimeoutError reports that the page never fired its load event
// within the configured bound.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigate %s: load not signaled within %s", e.URL, e.Timeout)
}

func (e *NavigationTimeoutError) Unwrap() error { return e.Err }
