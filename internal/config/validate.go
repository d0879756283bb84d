package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Source.Dir == "" {
		return errors.New("source.dir must be set")
	}
	if c.Source.AlternateDir == "" {
		return errors.New("source.alternate_dir must be set")
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir must be set")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
