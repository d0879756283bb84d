package config

const (
	defaultSourceDir          = "raw"
	defaultAlternateSourceDir = "raw_new"
	defaultOutputDir          = "processed"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Source: Source{
			Dir:          defaultSourceDir,
			AlternateDir: defaultAlternateSourceDir,
		},
		Output: Output{
			Dir: defaultOutputDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
