package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/RoaringBitmap/roaring/roaring64"

	"metmaster/internal/imagemap"
	"metmaster/internal/logging"
	"metmaster/internal/record"
	"metmaster/internal/store"
)

// loader writes every accepted row to both snapshots inside shared batches.
type loader struct {
	catalog   *store.DB
	pull      *store.DB
	images    imagemap.Map
	batchSize int
	logger    *slog.Logger

	stats      stats
	seen       *roaring64.Bitmap
	duplicates int64
}

func newLoader(catalog, pull *store.DB, images imagemap.Map, batchSize int, logger *slog.Logger) *loader {
	return &loader{
		catalog:   catalog,
		pull:      pull,
		images:    images,
		batchSize: batchSize,
		logger:    logger,
		seen:      roaring64.New(),
	}
}

func (l *loader) dbs() []*store.DB { return []*store.DB{l.catalog, l.pull} }

func (l *loader) begin(ctx context.Context) error {
	for _, db := range l.dbs() {
		if err := db.Begin(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) commit() error {
	for _, db := range l.dbs() {
		if err := db.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// run consumes r to EOF. Rows are applied in input order; a duplicate
// object id replaces the earlier row.
func (l *loader) run(ctx context.Context, r *record.Reader) error {
	if err := l.begin(ctx); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := l.row(ctx, raw); err != nil {
			return err
		}
	}
	return l.commit()
}

func (l *loader) row(ctx context.Context, raw record.Raw) error {
	l.stats.scanned()

	art, err := record.Normalize(raw)
	if errors.Is(err, record.ErrBadObjectID) {
		l.stats.badObjectID()
		l.logger.Debug("skipping row without object id", logging.Int("line", raw.Line()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", raw.Line(), err)
	}

	obj := store.Object{Artwork: art}
	src := sourceNone
	if img, ok := l.images.Lookup(art.ObjectID); ok {
		obj.PrimaryImage, obj.PrimaryImageSmall = img.Primary, img.Small
		src = sourceCache
	} else if art.CSVPrimaryImage != "" || art.CSVPrimaryImageSmall != "" {
		obj.PrimaryImage, obj.PrimaryImageSmall = art.CSVPrimaryImage, art.CSVPrimaryImageSmall
		src = sourceCSV
	}
	l.stats.resolved(src)
	if obj.PrimaryImage == "" && obj.PrimaryImageSmall == "" {
		l.stats.noImages()
		return nil
	}
	l.stats.flags(art.IsPublicDomain, art.IsHighlight)

	if !l.seen.CheckedAdd(uint64(art.ObjectID)) {
		l.duplicates++
		l.logger.Debug("duplicate object id, later row replaces earlier",
			logging.Int64("object_id", art.ObjectID),
			logging.Int("line", raw.Line()),
		)
	}

	for _, db := range l.dbs() {
		if err := db.UpsertObject(ctx, obj); err != nil {
			return err
		}
	}
	for _, tag := range art.Tags {
		for _, db := range l.dbs() {
			id, err := db.Tags().GetOrCreate(ctx, tag)
			if err != nil {
				return err
			}
			if err := db.LinkTag(ctx, art.ObjectID, id); err != nil {
				return err
			}
		}
	}

	l.stats.accepted()
	if l.stats.RowsWithImages%int64(l.batchSize) == 0 {
		if err := l.commit(); err != nil {
			return err
		}
		l.logger.Info("batch committed",
			logging.Int64("rows_scanned", l.stats.RowsScanned),
			logging.Int64("rows_with_images", l.stats.RowsWithImages),
			logging.Int("catalog_tags", l.catalog.Tags().Len()),
		)
		if err := l.begin(ctx); err != nil {
			return err
		}
	}
	return nil
}
