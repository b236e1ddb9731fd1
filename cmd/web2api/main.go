// Command web2api generates API models from the XHR traffic of a web page.
// Usage: web2api [flags] <url>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/web2api/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
