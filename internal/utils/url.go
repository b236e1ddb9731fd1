package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL          = errors.New("empty url")
	ErrMissingHost       = errors.New("missing host")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// TargetOptions controls NormalizeTarget.
type TargetOptions struct {
	// DefaultScheme is prepended to schemeless input ("example.com/page").
	// If empty, a scheme is required.
	DefaultScheme string
}

// NormalizeTarget validates a page URL given on the command line and returns
// it in a normalized form: lowercased scheme and host, IDN hosts converted to
// punycode, default ports and fragments dropped, credentials removed.
// Path and query are kept verbatim since the server may depend on them.
func NormalizeTarget(raw string, opts TargetOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrEmptyURL}
	}

	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &url.Error{Op: "parse", URL: raw, Err: fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)}
	}

	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrMissingHost}
	}

	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	bare := host
	if strings.Contains(host, ":") {
		bare = "[" + host + "]"
	}

	port := u.Port()
	switch {
	case (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443"):
		u.Host = bare
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	default:
		u.Host = bare
	}

	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}
