package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// SlowDelay is how long /slow blocks before answering, in seconds.
	// Pages that reference it never finish loading within a short timeout.
	SlowDelay int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:      9999,
		SlowDelay: 60,
	}
}
