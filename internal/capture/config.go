package capture

import (
	"time"

	"github.com/chromedp/chromedp"
)

// Config controls browser launch and the capture wait sequence.
type Config struct {
	// Headless runs Chrome without a window. Defaults to true.
	Headless bool `mapstructure:"headless" yaml:"headless"`

	// ExecPath points at a Chrome/Chromium binary. Empty lets chromedp search.
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`

	// NoSandbox disables Chrome's sandbox. Needed when running as root in containers.
	NoSandbox bool `mapstructure:"no_sandbox" yaml:"no_sandbox"`

	// NavigationTimeout bounds navigation up to the load event.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`

	// IdleAfter is how long the network must stay quiet after load before
	// the log is read.
	IdleAfter time.Duration `mapstructure:"idle_after" yaml:"idle_after"`

	// SettleTimeout bounds the wait for network idle. When it expires the
	// capture continues with the requests that completed.
	SettleTimeout time.Duration `mapstructure:"settle_timeout" yaml:"settle_timeout"`

	// ResourceTypes selects which network entries become exchanges.
	ResourceTypes []string `mapstructure:"resource_types" yaml:"resource_types"`

	// Flags are extra Chrome command line switches, e.g. host-resolver-rules.
	Flags map[string]any `mapstructure:"flags" yaml:"flags,omitempty"`

	// AllocatorOptions are appended after everything above. Not loaded from files.
	AllocatorOptions []chromedp.ExecAllocatorOption `mapstructure:"-" yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		IdleAfter:         500 * time.Millisecond,
		SettleTimeout:     10 * time.Second,
		ResourceTypes:     []string{"XHR"},
	}
}
