package cache

import (
	"os"
	"path/filepath"
)

type Config struct {
	// Enabled turns the generation cache on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path of the SQLite database. Empty means DefaultPath().
	Path string `mapstructure:"path" yaml:"path"`
}

func DefaultConfig() Config {
	return Config{Enabled: true}
}

// DefaultPath returns web2api/cache.db under the user cache directory,
// falling back to the temp directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "web2api", "cache.db")
}
