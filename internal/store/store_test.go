package store_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"metmaster/internal/record"
	"metmaster/internal/store"
)

func newDB(t *testing.T, schema store.Schema) *store.DB {
	t.Helper()
	db, err := store.Create(context.Background(), filepath.Join(t.TempDir(), schema.Name+".db"), schema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func object(id int64, title string, publicDomain int) store.Object {
	return store.Object{
		Artwork: record.Artwork{
			ObjectID:       id,
			Title:          title,
			IsPublicDomain: publicDomain,
			MetadataJSON:   "{}",
		},
		PrimaryImage: "https://images.example/" + title + ".jpg",
	}
}

func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateRefusesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := store.Create(ctx, path, store.Catalog)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = store.Create(ctx, path, store.Catalog)
	require.Error(t, err)
}

func TestWritesRequireBatch(t *testing.T) {
	ctx := context.Background()
	db := newDB(t, store.Pull)

	require.ErrorIs(t, db.UpsertObject(ctx, object(1, "a", 0)), store.ErrNoBatch)
	require.ErrorIs(t, db.LinkTag(ctx, 1, 1), store.ErrNoBatch)
	_, err := db.Tags().GetOrCreate(ctx, "x")
	require.ErrorIs(t, err, store.ErrNoBatch)
	require.ErrorIs(t, db.Commit(), store.ErrNoBatch)
}

func TestTagDictionaryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newDB(t, store.Catalog)
	require.NoError(t, db.Begin(ctx))

	first, err := db.Tags().GetOrCreate(ctx, "Portrait")
	require.NoError(t, err)
	again, err := db.Tags().GetOrCreate(ctx, "Portrait")
	require.NoError(t, err)
	other, err := db.Tags().GetOrCreate(ctx, "portrait")
	require.NoError(t, err)

	require.Equal(t, first, again)
	require.NotEqual(t, first, other)
	require.Equal(t, 2, db.Tags().Len())

	_, err = db.Tags().GetOrCreate(ctx, "")
	require.ErrorIs(t, err, store.ErrEmptyTag)

	require.NoError(t, db.Commit())
	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, counts.Tags)
}

func TestUpsertReplacesByObjectID(t *testing.T) {
	ctx := context.Background()
	db := newDB(t, store.Catalog)
	require.NoError(t, db.Begin(ctx))
	require.NoError(t, db.UpsertObject(ctx, object(7, "first", 0)))
	require.NoError(t, db.UpsertObject(ctx, object(7, "second", 1)))
	require.NoError(t, db.Commit())

	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, counts.Objects)

	raw := openRaw(t, db.Path())
	var title string
	var pd int
	require.NoError(t, raw.QueryRow("SELECT title, is_public_domain FROM objects WHERE object_id = 7").Scan(&title, &pd))
	require.Equal(t, "second", title)
	require.Equal(t, 1, pd)
}

func TestNullableDatesStoredAsNull(t *testing.T) {
	ctx := context.Background()
	db := newDB(t, store.Pull)
	begin := int64(1850)
	obj := object(3, "dated", 0)
	obj.ObjectBeginDate = &begin

	require.NoError(t, db.Begin(ctx))
	require.NoError(t, db.UpsertObject(ctx, obj))
	require.NoError(t, db.Commit())

	raw := openRaw(t, db.Path())
	var gotBegin, gotEnd sql.NullInt64
	require.NoError(t, raw.QueryRow("SELECT object_begin_date, object_end_date FROM objects").Scan(&gotBegin, &gotEnd))
	require.True(t, gotBegin.Valid)
	require.EqualValues(t, 1850, gotBegin.Int64)
	require.False(t, gotEnd.Valid)
}

func TestPullFinalizeComputesTagStats(t *testing.T) {
	ctx := context.Background()
	db := newDB(t, store.Pull)
	require.NoError(t, db.Begin(ctx))

	rows := []struct {
		obj  store.Object
		tags []string
	}{
		{object(1, "a", 1), []string{"Flowers", "Vase"}},
		{object(2, "b", 0), []string{"Flowers"}},
		{object(3, "c", 1), []string{"Flowers", "Vase"}},
	}
	for _, row := range rows {
		require.NoError(t, db.UpsertObject(ctx, row.obj))
		for _, tag := range row.tags {
			id, err := db.Tags().GetOrCreate(ctx, tag)
			require.NoError(t, err)
			require.NoError(t, db.LinkTag(ctx, row.obj.ObjectID, id))
			require.NoError(t, db.LinkTag(ctx, row.obj.ObjectID, id))
		}
	}
	require.NoError(t, db.Commit())
	require.NoError(t, db.Finalize(ctx))

	raw := openRaw(t, db.Path())
	stats := map[string][2]int{}
	rs, err := raw.Query(`SELECT t.value, s.object_count, s.public_domain_count
		FROM tag_stats s JOIN tags t ON t.id = s.tag_id`)
	require.NoError(t, err)
	defer rs.Close()
	for rs.Next() {
		var value string
		var count, pd int
		require.NoError(t, rs.Scan(&value, &count, &pd))
		stats[value] = [2]int{count, pd}
	}
	require.NoError(t, rs.Err())
	require.Equal(t, map[string][2]int{"Flowers": {3, 2}, "Vase": {2, 2}}, stats)

	var indexCount int
	require.NoError(t, raw.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_pull_%'").Scan(&indexCount))
	require.Equal(t, 4, indexCount)
}

func TestFinalizeRejectsOpenBatch(t *testing.T) {
	ctx := context.Background()
	db := newDB(t, store.Catalog)
	require.NoError(t, db.Begin(ctx))
	require.Error(t, db.Finalize(ctx))
}

func TestBuildInfoAndObjectIDs(t *testing.T) {
	ctx := context.Background()
	db := newDB(t, store.Catalog)
	require.NoError(t, db.InsertBuildInfo(ctx, map[string]string{"build_id": "20250101T000000Z", "schema": "catalog"}))

	require.NoError(t, db.Begin(ctx))
	for _, id := range []int64{9, 2, 5} {
		require.NoError(t, db.UpsertObject(ctx, object(id, "x", 0)))
	}
	require.NoError(t, db.Commit())

	var ids []int64
	require.NoError(t, db.ForEachObjectID(ctx, func(id int64) error {
		ids = append(ids, id)
		return nil
	}))
	require.Equal(t, []int64{2, 5, 9}, ids)

	raw := openRaw(t, db.Path())
	var value string
	require.NoError(t, raw.QueryRow("SELECT value FROM build_info WHERE key = 'schema'").Scan(&value))
	require.Equal(t, "catalog", value)
}

func TestReadOnlyDSNRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with space", "cache.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	rw := openRaw(t, path)
	_, err := rw.Exec("CREATE TABLE image_cache (object_id INTEGER PRIMARY KEY, primary_image TEXT)")
	require.NoError(t, err)
	_, err = rw.Exec("INSERT INTO image_cache VALUES (1, 'p1')")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := sql.Open("sqlite", store.ReadOnlyDSN(path))
	require.NoError(t, err)
	defer ro.Close()

	var n int
	require.NoError(t, ro.QueryRow("SELECT COUNT(*) FROM image_cache").Scan(&n))
	require.Equal(t, 1, n)

	_, err = ro.Exec("INSERT INTO image_cache VALUES (2, 'p2')")
	require.Error(t, err)
}

func TestReadOnlyDSNDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	db, err := sql.Open("sqlite", store.ReadOnlyDSN(path))
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, db.Ping())
	_, statErr := os.Stat(path)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestReadOnlyDSNEncodesPath(t *testing.T) {
	require.Equal(t, "file:///tmp/a%20b/c.db?mode=ro", store.ReadOnlyDSN("/tmp/a b/c.db"))
	require.Equal(t, "file:rel.db?mode=ro", store.ReadOnlyDSN("rel.db"))
}
