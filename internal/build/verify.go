package build

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"

	"metmaster/internal/store"
)

func objectIDSet(ctx context.Context, db *store.DB) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	err := db.ForEachObjectID(ctx, func(id int64) error {
		bm.Add(uint64(id))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// checkConsistency confirms that both snapshots hold the same object ids and
// the same number of tags.
func checkConsistency(ctx context.Context, catalog, pull *store.DB, catalogCounts, pullCounts store.Counts) error {
	catalogIDs, err := objectIDSet(ctx, catalog)
	if err != nil {
		return err
	}
	pullIDs, err := objectIDSet(ctx, pull)
	if err != nil {
		return err
	}
	if !catalogIDs.Equals(pullIDs) {
		onlyCatalog := roaring64.AndNot(catalogIDs, pullIDs).GetCardinality()
		onlyPull := roaring64.AndNot(pullIDs, catalogIDs).GetCardinality()
		return fmt.Errorf("object sets differ: %d only in catalog, %d only in pull", onlyCatalog, onlyPull)
	}
	if uint64(catalogCounts.Objects) != catalogIDs.GetCardinality() {
		return fmt.Errorf("catalog object count %d does not match %d ids", catalogCounts.Objects, catalogIDs.GetCardinality())
	}
	if catalogCounts.Tags != pullCounts.Tags {
		return fmt.Errorf("tag counts differ: catalog %d, pull %d", catalogCounts.Tags, pullCounts.Tags)
	}
	return nil
}
