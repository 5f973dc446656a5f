package testsupport

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CacheEntry is one image_cache row.
type CacheEntry struct {
	ObjectID int64
	Primary  string
	Small    string
}

// WriteImageCache creates an image cache database at path holding entries.
func WriteImageCache(t testing.TB, path string, entries ...CacheEntry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open image cache: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS image_cache (
		object_id INTEGER PRIMARY KEY,
		primary_image TEXT NOT NULL DEFAULT '',
		primary_image_small TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL DEFAULT ''
	)`); err != nil {
		t.Fatalf("create image_cache: %v", err)
	}
	for _, e := range entries {
		if _, err := db.Exec(
			"INSERT OR REPLACE INTO image_cache(object_id, primary_image, primary_image_small, fetched_at) VALUES (?, ?, ?, ?)",
			e.ObjectID, e.Primary, e.Small, "2025-01-01T00:00:00Z",
		); err != nil {
			t.Fatalf("insert image_cache row %d: %v", e.ObjectID, err)
		}
	}
}
