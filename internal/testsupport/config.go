package testsupport

import (
	"path/filepath"
	"testing"

	"metmaster/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths live in a unique temp directory.
// Input files are not created; use WriteCSV and WriteImageCache.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceCSV = filepath.Join(base, "filtered_objects.csv")
	cfgVal.Paths.ImageCacheDB = filepath.Join(base, "image_cache.db")
	cfgVal.Paths.OutputRoot = filepath.Join(base, "master")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBatchSize overrides the commit batch size.
func WithBatchSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.BatchSize = n
	}
}

// WithMetricsTextfile enables the Prometheus textfile export.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.TextfilePath = filepath.Join(b.baseDir, "metrics", "metmaster.prom")
	}
}

// WithLogDir enables file logging under the temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputRoot)
}
