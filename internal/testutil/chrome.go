package testutil

import (
	"os"
	"os/exec"
	"testing"
)

var chromeNames = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// ChromePath returns a Chrome binary for browser tests or skips the test.
// CHROME_PATH takes precedence over the PATH lookup.
func ChromePath(t testing.TB) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range chromeNames {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skipf("no Chrome/Chromium binary found (tried %v); set CHROME_PATH to run", chromeNames)
	return ""
}
