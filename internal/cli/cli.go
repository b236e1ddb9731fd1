// Package cli implements the web2api command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/web2api/internal/app"
	"github.com/raysh454/web2api/internal/llm"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagKeys maps flags onto configuration keys. The boolean switches
// --no-cache, --headful, --fail-fast and --verbose are applied in loadConfig.
var flagKeys = map[string]string{
	"output":      "export.output",
	"keep-temp":   "keep_temp",
	"provider":    "llm.provider",
	"model":       "llm.model",
	"language":    "synth.language",
	"concurrency": "synth.concurrency",
	"nav-timeout": "capture.navigation_timeout",
	"har":         "export.har",
	"print":       "export.print",
	"log-level":   "log_level",
	"chrome-path": "capture.exec_path",
	"no-sandbox":  "capture.no_sandbox",
}

type options struct {
	configFile string
	envFile    string
}

// NewRootCommand returns the web2api command. Output goes to stdout and
// diagnostics to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "web2api [flags] <url>",
		Short: "Generate API models from the XHR traffic of a web page",
		Long: `web2api downloads a page, opens the saved copy in headless Chrome,
records the XHR requests it makes and asks a model backend to write typed
request/response models and example calls for each of them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args[0], stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded into the environment when present")
	pf.StringP("output", "o", "generated_models.go", "file the generated models are written to")
	pf.Bool("keep-temp", false, "keep the downloaded page on disk")
	pf.String("provider", "", "generation backend: "+strings.Join(llm.Backends(), ", "))
	pf.String("model", "", "model id for the generation backend")
	pf.String("language", "", "target language of the generated models")
	pf.Int("concurrency", 0, "generation calls in flight")
	pf.Duration("nav-timeout", 0, "page load timeout")
	pf.String("har", "", "also write the captured traffic as a HAR file")
	pf.Bool("print", false, "print the generated models with syntax highlighting")
	pf.Bool("no-cache", false, "do not read or write the generation cache")
	pf.Bool("headful", false, "show the browser window")
	pf.Bool("fail-fast", false, "stop at the first generation error")
	pf.String("chrome-path", "", "Chrome or Chromium binary")
	pf.Bool("no-sandbox", false, "disable the Chrome sandbox (needed as root in containers)")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.BoolP("verbose", "v", false, "debug logging")

	root.AddCommand(newConfigCommand(opts, stdout), newBackendsCommand(stdout))
	return root
}

func newConfigCommand(opts *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = stdout.Write(out)
			return err
		},
	}
}

func newBackendsCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available generation backends",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, name := range llm.Backends() {
				if _, err := fmt.Fprintln(stdout, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func loadConfig(flags *pflag.FlagSet, opts *options) (*app.Config, error) {
	keys := make(map[string]string, len(flagKeys))
	for name, key := range flagKeys {
		if flags.Changed(name) {
			keys[name] = key
		}
	}

	cfg, err := app.LoadConfig(app.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
		Flags:      flags,
		FlagKeys:   keys,
	})
	if err != nil {
		return nil, err
	}

	if on, _ := flags.GetBool("no-cache"); on {
		cfg.Cache.Enabled = false
	}
	if on, _ := flags.GetBool("headful"); on {
		cfg.Capture.Headless = false
	}
	if on, _ := flags.GetBool("fail-fast"); on {
		cfg.Synth.FailurePolicy = "fail-fast"
	}
	if on, _ := flags.GetBool("verbose"); on {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *app.Config, target string, stdout, stderr io.Writer) error {
	logger := logging.NewStdoutLoggerWithOptions("web2api", logging.Options{Level: cfg.LogLevel, Output: stderr})

	application, err := app.NewApplication(ctx, cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			logger.Warn("shutdown", logging.Field{Key: "error", Value: err})
		}
	}()

	res, err := application.Run(ctx, target)
	if err != nil {
		return err
	}

	generated := len(res.Artifact.Fragments) - len(res.Artifact.Failed())
	fmt.Fprintf(stderr, "captured %d requests, generated %d models, wrote %s\n",
		len(res.Exchanges), generated, res.Output.Path)
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "web2api: interrupted")
		} else {
			fmt.Fprintf(stderr, "web2api: %v\n", err)
		}
		return 1
	}
	return 0
}
