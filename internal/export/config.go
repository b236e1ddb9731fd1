package export

type Config struct {
	// Output is where the generated artifact is written.
	Output string `mapstructure:"output" yaml:"output"`

	// HARPath, when set, receives a HAR 1.2 log of the captured exchanges.
	HARPath string `mapstructure:"har" yaml:"har"`

	// Print echoes the artifact to stdout with syntax highlighting.
	Print bool `mapstructure:"print" yaml:"print"`

	// Style is the chroma style used by Print.
	Style string `mapstructure:"style" yaml:"style"`
}

func DefaultConfig() Config {
	return Config{
		Output: "generated_models.go",
		Style:  "monokai",
	}
}
