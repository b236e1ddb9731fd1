package app_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/web2api/internal/app"
	"github.com/raysh454/web2api/internal/synth"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	if cfg.Export.Output != "generated_models.go" {
		t.Errorf("Output = %s", cfg.Export.Output)
	}
	if cfg.KeepTemp {
		t.Error("temp files are kept by default")
	}
	if cfg.Synth.Concurrency != 1 || cfg.Synth.FailurePolicy != synth.Continue || cfg.Synth.Language != "go" {
		t.Errorf("unexpected synth defaults %+v", cfg.Synth)
	}
	if got := cfg.Capture.ResourceTypes; len(got) != 1 || got[0] != "XHR" {
		t.Errorf("ResourceTypes = %v", got)
	}
	if !cfg.Capture.Headless {
		t.Error("capture should be headless by default")
	}
}

func TestLoadConfig_DefaultsRoundTrip(t *testing.T) {
	t.Parallel()
	cfg, err := app.LoadConfig(app.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := app.DefaultConfig()
	if cfg.Capture.NavigationTimeout != want.Capture.NavigationTimeout ||
		cfg.LLM.Provider != want.LLM.Provider ||
		cfg.Synth.MaxBodyBytes != want.Synth.MaxBodyBytes ||
		len(cfg.Synth.RedactHeaders) != len(want.Synth.RedactHeaders) ||
		cfg.Export.Output != want.Export.Output {
		t.Errorf("defaults changed by loading:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "web2api.yaml")
	content := `
keep_temp: true
capture:
  navigation_timeout: 5s
  resource_types: [XHR, Fetch]
synth:
  language: python
  concurrency: 4
llm:
  provider: structural
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := app.LoadConfig(app.LoadOptions{ConfigFile: path})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.KeepTemp || cfg.Capture.NavigationTimeout != 5*time.Second ||
		cfg.Synth.Language != "python" || cfg.Synth.Concurrency != 4 || cfg.LLM.Provider != "structural" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if got := cfg.Capture.ResourceTypes; len(got) != 2 || got[1] != "Fetch" {
		t.Errorf("ResourceTypes = %v", got)
	}
	// Untouched keys keep their defaults.
	if cfg.Export.Output != "generated_models.go" || cfg.Capture.SettleTimeout != 10*time.Second {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := app.LoadConfig(app.LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("WEB2API_LLM_MODEL=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEB2API_LLM_PROVIDER", "openai")
	t.Setenv("WEB2API_SYNTH_CONCURRENCY", "3")
	t.Setenv("WEB2API_EXPORT_OUTPUT", "from-env.go")
	t.Cleanup(func() { os.Unsetenv("WEB2API_LLM_MODEL") })

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("output", "o", "generated_models.go", "")
	flags.Int("concurrency", 1, "")
	if err := flags.Parse([]string{"--concurrency", "8"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := app.LoadConfig(app.LoadOptions{
		EnvFile:  envFile,
		Flags:    flags,
		FlagKeys: map[string]string{"output": "export.output", "concurrency": "synth.concurrency"},
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "from-dotenv" {
		t.Errorf("env not applied: %+v", cfg.LLM)
	}
	if cfg.Synth.Concurrency != 8 {
		t.Errorf("flag should beat env: concurrency = %d", cfg.Synth.Concurrency)
	}
	if cfg.Export.Output != "from-env.go" {
		t.Errorf("unset flag should not beat env: output = %s", cfg.Export.Output)
	}
}

func TestLoadConfig_UnknownFlag(t *testing.T) {
	t.Parallel()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	_, err := app.LoadConfig(app.LoadOptions{Flags: flags, FlagKeys: map[string]string{"missing": "x"}})
	if err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestConfigYAML_RedactsSecrets(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"

	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	if strings.Contains(string(out), "sk-secret") {
		t.Error("api key leaked")
	}
	if cfg.LLM.APIKey != "sk-secret" {
		t.Error("YAML mutated the config")
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if _, ok := decoded["capture"]; !ok {
		t.Errorf("capture section missing: %v", decoded)
	}
}

func TestLoadConfig_ExpandsHomeInPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "web2api.yaml")
	content := `
fetcher:
  temp_dir: ~/tmp
cache:
  path: ~/web2api/cache.db
export:
  output: ~/out/models.go
  har: ~/out/traffic.har
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := app.LoadConfig(app.LoadOptions{ConfigFile: path})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	checks := []struct{ got, want string }{
		{cfg.Fetcher.TempDir, filepath.Join(home, "tmp")},
		{cfg.Cache.Path, filepath.Join(home, "web2api", "cache.db")},
		{cfg.Export.Output, filepath.Join(home, "out", "models.go")},
		{cfg.Export.HARPath, filepath.Join(home, "out", "traffic.har")},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("path = %s, want %s", c.got, c.want)
		}
	}
}
