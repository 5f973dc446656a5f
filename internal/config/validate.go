package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	required := []struct {
		key   string
		value string
	}{
		{"paths.source_csv", c.Paths.SourceCSV},
		{"paths.image_cache_db", c.Paths.ImageCacheDB},
		{"paths.output_root", c.Paths.OutputRoot},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s must be set", field.key)
		}
	}
	if c.Paths.SourceCSV == c.Paths.ImageCacheDB {
		return errors.New("paths.source_csv and paths.image_cache_db must be different files")
	}
	return nil
}

func (c *Config) validateBuild() error {
	if c.Build.BatchSize <= 0 {
		return errors.New("build.batch_size must be positive")
	}
	if c.Build.StaleStagingHours < 0 {
		return errors.New("build.stale_staging_hours must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q (use debug, info, warn, or error)", c.Logging.Level)
	}
}
