package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBuild()
	c.normalizeLogging()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := lookupEnv(envSourceCSV); ok {
		c.Paths.SourceCSV = value
	}
	if value, ok := lookupEnv(envImageCacheDB); ok {
		c.Paths.ImageCacheDB = value
	}
	if value, ok := lookupEnv(envOutputRoot); ok {
		c.Paths.OutputRoot = value
	}

	var err error
	if c.Paths.SourceCSV, err = expandPath(strings.TrimSpace(c.Paths.SourceCSV)); err != nil {
		return fmt.Errorf("paths.source_csv: %w", err)
	}
	if c.Paths.ImageCacheDB, err = expandPath(strings.TrimSpace(c.Paths.ImageCacheDB)); err != nil {
		return fmt.Errorf("paths.image_cache_db: %w", err)
	}
	if c.Paths.OutputRoot, err = expandPath(strings.TrimSpace(c.Paths.OutputRoot)); err != nil {
		return fmt.Errorf("paths.output_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBuild() {
	if c.Build.BatchSize == 0 {
		c.Build.BatchSize = DefaultBatchSize
	}
	if c.Build.StaleStagingHours < 0 {
		c.Build.StaleStagingHours = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := lookupEnv(envLogLevel); ok {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.TextfilePath, err = expandPath(strings.TrimSpace(c.Metrics.TextfilePath)); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
