package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.FFmpeg.Binary == "" {
		return errors.New("ffmpeg.binary must be set")
	}
	if c.Clip.Concurrency < 1 || c.Clip.Concurrency > 16 {
		return fmt.Errorf("clip.concurrency must be between 1 and 16, got %d", c.Clip.Concurrency)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Metrics.Textfile != "" && filepath.Ext(c.Metrics.Textfile) != ".prom" {
		return fmt.Errorf("metrics.textfile must end in .prom, got %q", c.Metrics.Textfile)
	}
	return nil
}
