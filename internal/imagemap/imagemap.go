// Package imagemap loads the resolved image URLs produced by the image
// fetcher into memory.
package imagemap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"metmaster/internal/store"
)

const query = `SELECT object_id, primary_image, primary_image_small
FROM image_cache
WHERE primary_image != '' OR primary_image_small != ''`

// Images is the URL pair for one object.
type Images struct {
	Primary string
	Small   string
}

// Empty reports whether neither URL is set.
func (i Images) Empty() bool { return i.Primary == "" && i.Small == "" }

// Map is a read-only object id to Images lookup.
type Map struct {
	entries map[int64]Images
}

// New builds a Map from entries, mostly for tests.
func New(entries map[int64]Images) Map {
	copied := make(map[int64]Images, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return Map{entries: copied}
}

// Lookup returns the cached URLs for id.
func (m Map) Lookup(id int64) (Images, bool) {
	img, ok := m.entries[id]
	return img, ok
}

// Len returns the number of cached objects.
func (m Map) Len() int { return len(m.entries) }

// MissingInputError reports an absent image cache database.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("image cache db not found: %s", e.Path)
}

// Unwrap lets callers match fs.ErrNotExist.
func (e *MissingInputError) Unwrap() error { return fs.ErrNotExist }

// Load reads every image_cache row with at least one URL. The database is
// opened read-only.
func Load(ctx context.Context, path string) (Map, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Map{}, &MissingInputError{Path: path}
	}
	if err != nil {
		return Map{}, fmt.Errorf("stat image cache: %w", err)
	}
	if info.IsDir() {
		return Map{}, fmt.Errorf("image cache %s is a directory", path)
	}

	db, err := sql.Open("sqlite", store.ReadOnlyDSN(path))
	if err != nil {
		return Map{}, fmt.Errorf("open image cache: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return Map{}, fmt.Errorf("query image cache: %w", err)
	}
	defer rows.Close()

	entries := make(map[int64]Images)
	for rows.Next() {
		var (
			id           int64
			primary      sql.NullString
			primarySmall sql.NullString
		)
		if err := rows.Scan(&id, &primary, &primarySmall); err != nil {
			return Map{}, fmt.Errorf("scan image cache row: %w", err)
		}
		entries[id] = Images{
			Primary: strings.TrimSpace(primary.String),
			Small:   strings.TrimSpace(primarySmall.String),
		}
	}
	if err := rows.Err(); err != nil {
		return Map{}, fmt.Errorf("iterate image cache: %w", err)
	}
	return Map{entries: entries}, nil
}
