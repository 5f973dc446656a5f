package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"metmaster/internal/config"
	"metmaster/internal/imagemap"
	"metmaster/internal/logging"
	"metmaster/internal/metrics"
	"metmaster/internal/record"
	"metmaster/internal/release"
	"metmaster/internal/staging"
	"metmaster/internal/store"
)

// Generator is recorded in build_info.
const Generator = "metmaster"

// DefaultBatchSize is the number of accepted rows per commit.
const DefaultBatchSize = config.DefaultBatchSize

// Options configures one build.
type Options struct {
	SourceCSV    string
	ImageCacheDB string
	OutputRoot   string

	// BatchSize is the number of accepted rows per commit. Zero uses
	// DefaultBatchSize.
	BatchSize int
	// StaleAfter is the minimum age of leftover staging directories swept
	// before the build. Zero sweeps all leftovers; negative skips the sweep.
	StaleAfter time.Duration
	// MetricsTextfile, when set, receives Prometheus gauges after publish.
	MetricsTextfile string

	Logger *slog.Logger
	// Now is the build clock. It determines the build id.
	Now func() time.Time
	// RunID correlates logs and metadata. Empty generates a UUID.
	RunID string
}

// OptionsFromConfig maps loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		SourceCSV:       cfg.Paths.SourceCSV,
		ImageCacheDB:    cfg.Paths.ImageCacheDB,
		OutputRoot:      cfg.Paths.OutputRoot,
		BatchSize:       cfg.Build.BatchSize,
		StaleAfter:      cfg.StaleStagingAge(),
		MetricsTextfile: cfg.Metrics.TextfilePath,
		Logger:          logger,
	}
}

func (o *Options) normalize() error {
	if o.SourceCSV == "" || o.ImageCacheDB == "" || o.OutputRoot == "" {
		return errors.New("source csv, image cache db and output root are required")
	}
	for _, p := range []*string{&o.SourceCSV, &o.ImageCacheDB, &o.OutputRoot} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	return nil
}

// Run builds both snapshots from the inputs and publishes them as a new
// release that becomes current. On failure no release directory is left
// behind and the previous current release is untouched.
func Run(ctx context.Context, opts Options) (*release.Manifest, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	started := time.Now()

	if err := requireFile("source csv", opts.SourceCSV); err != nil {
		return nil, err
	}
	images, err := imagemap.Load(ctx, opts.ImageCacheDB)
	if err != nil {
		var missing *imagemap.MissingInputError
		if errors.As(err, &missing) {
			return nil, &MissingInputError{Input: "image cache db", Path: missing.Path}
		}
		return nil, fmt.Errorf("load image cache: %w", err)
	}

	lock, err := release.AcquireLock(opts.OutputRoot)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	now := opts.Now().UTC()
	buildID := release.NewBuildID(now)
	ctx = logging.WithBuild(ctx, buildID, opts.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "build"))

	if opts.StaleAfter >= 0 {
		swept := staging.CleanStale(ctx, opts.OutputRoot, opts.StaleAfter, opts.Logger)
		if len(swept.Removed) > 0 {
			logger.Info("swept stale build directories", logging.Int("removed", len(swept.Removed)))
		}
	}

	layout := release.Layout{Root: opts.OutputRoot}
	stagingDir, err := release.Prepare(layout, buildID)
	if err != nil {
		return nil, err
	}
	logger.Info("build started",
		logging.String("source_csv", opts.SourceCSV),
		logging.Int("cached_images", images.Len()),
		logging.Int("batch_size", opts.BatchSize),
	)

	b := &builder{
		opts:       opts,
		layout:     layout,
		buildID:    buildID,
		generated:  release.FormatGeneratedAt(now),
		stagingDir: stagingDir,
		images:     images,
		logger:     logger,
	}
	manifest, err := b.run(ctx)
	if err != nil {
		_ = b.closeDBs()
		if rmErr := release.Discard(layout, buildID); rmErr != nil {
			logging.WarnWithContext(logger, "failed to remove staging directory", "staging_cleanup_failed",
				logging.String("path", stagingDir),
				logging.Error(rmErr),
				logging.String(logging.FieldImpact, "leftover will be swept by the next build"),
			)
		}
		logging.ErrorWithContext(logger, "build failed", "build_failed", logging.Error(err))
		return nil, err
	}

	if err := release.PublishCurrent(layout, buildID); err != nil {
		logging.ErrorWithContext(logger, "release sealed but current not updated", "publish_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rerun publish by building again or copy the release manually"),
		)
		return manifest, err
	}

	elapsed := time.Since(started)
	logger.Info("build published",
		logging.Int64("rows_scanned", manifest.Stats.RowsScanned),
		logging.Int64("rows_with_images", manifest.Stats.RowsWithImages),
		logging.Int64("objects", manifest.Outputs.CatalogMasterDB.Objects),
		logging.Int64("tags", manifest.Outputs.CatalogMasterDB.Tags),
		logging.Duration("elapsed", elapsed.Round(time.Millisecond)),
	)

	if opts.MetricsTextfile != "" {
		m := metrics.New()
		m.Observe(manifest, elapsed, time.Now())
		if err := m.WriteTextfile(opts.MetricsTextfile); err != nil {
			logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
				logging.String("path", opts.MetricsTextfile),
				logging.Error(err),
				logging.String(logging.FieldImpact, "release is published; monitoring shows the previous build"),
			)
		}
	}
	return manifest, nil
}

func requireFile(input, path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &MissingInputError{Input: input, Path: path}
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", input, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s %s is a directory", input, path)
	}
	return nil
}

type builder struct {
	opts       Options
	layout     release.Layout
	buildID    string
	generated  string
	stagingDir string
	images     imagemap.Map
	logger     *slog.Logger

	catalog *store.DB
	pull    *store.DB
}

func (b *builder) fail(phase string, err error) error {
	return &Failure{BuildID: b.buildID, Phase: phase, Err: err}
}

func (b *builder) closeDBs() error {
	var errs []error
	for _, db := range []*store.DB{b.catalog, b.pull} {
		if db != nil {
			errs = append(errs, db.Close())
		}
	}
	b.catalog, b.pull = nil, nil
	return errors.Join(errs...)
}

func (b *builder) buildInfo(schema store.Schema) map[string]string {
	return map[string]string{
		"build_id":              b.buildID,
		"run_id":                b.opts.RunID,
		"generated_at_utc":      b.generated,
		"source_csv":            b.opts.SourceCSV,
		"source_image_cache_db": b.opts.ImageCacheDB,
		"schema":                schema.Name,
		"schema_version":        strconv.Itoa(store.SchemaVersion),
		"generator":             Generator,
	}
}

func (b *builder) run(ctx context.Context) (*release.Manifest, error) {
	var err error
	if b.catalog, err = store.Create(ctx, filepath.Join(b.stagingDir, release.CatalogFile), store.Catalog); err != nil {
		return nil, b.fail("create databases", err)
	}
	if b.pull, err = store.Create(ctx, filepath.Join(b.stagingDir, release.PullFile), store.Pull); err != nil {
		return nil, b.fail("create databases", err)
	}
	for _, db := range []*store.DB{b.catalog, b.pull} {
		if err := db.InsertBuildInfo(ctx, b.buildInfo(db.Schema())); err != nil {
			return nil, b.fail("write build info", err)
		}
	}

	f, err := os.Open(b.opts.SourceCSV)
	if err != nil {
		return nil, b.fail("open source csv", err)
	}
	defer f.Close()
	reader, err := record.NewReader(f)
	if err != nil {
		return nil, b.fail("load rows", err)
	}

	l := newLoader(b.catalog, b.pull, b.images, b.opts.BatchSize, b.logger)
	if err := l.run(ctx, reader); err != nil {
		return nil, b.fail("load rows", err)
	}
	if err := checkStats(l.stats.BuildStats); err != nil {
		return nil, b.fail("load rows", err)
	}
	if l.duplicates > 0 {
		b.logger.Info("duplicate object ids resolved last-write-wins", logging.Int64("duplicates", l.duplicates))
	}

	for _, db := range []*store.DB{b.catalog, b.pull} {
		if err := db.Finalize(ctx); err != nil {
			return nil, b.fail("finalize", err)
		}
	}
	catalogCounts, err := b.catalog.Counts(ctx)
	if err != nil {
		return nil, b.fail("count", err)
	}
	pullCounts, err := b.pull.Counts(ctx)
	if err != nil {
		return nil, b.fail("count", err)
	}
	if err := checkConsistency(ctx, b.catalog, b.pull, catalogCounts, pullCounts); err != nil {
		return nil, b.fail("consistency check", err)
	}
	if err := b.closeDBs(); err != nil {
		return nil, b.fail("close databases", err)
	}

	manifest := &release.Manifest{
		BuildID:        b.buildID,
		RunID:          b.opts.RunID,
		GeneratedAtUTC: b.generated,
		Inputs: release.Inputs{
			CSV:          b.opts.SourceCSV,
			ImageCacheDB: b.opts.ImageCacheDB,
		},
		Outputs: release.Outputs{
			CatalogMasterDB: release.Output{Objects: catalogCounts.Objects, Tags: catalogCounts.Tags},
			PullMasterDB:    release.Output{Objects: pullCounts.Objects, Tags: pullCounts.Tags},
		},
		Stats: l.stats.BuildStats,
	}
	if err := release.Seal(b.layout, manifest); err != nil {
		return nil, b.fail("seal release", err)
	}
	return manifest, nil
}
