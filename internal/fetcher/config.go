package fetcher

type Config struct {
	// TempDir is where fetched pages are written. Empty means os.TempDir().
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
	// TempPattern is passed to os.CreateTemp.
	TempPattern string `mapstructure:"temp_pattern" yaml:"temp_pattern"`
}

func DefaultConfig() Config {
	return Config{TempPattern: "web2api-*.html"}
}
