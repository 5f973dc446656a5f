package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyTag rejects blank tag values.
var ErrEmptyTag = errors.New("empty tag value")

// TagDictionary maps tag values to their surrogate ids within one snapshot.
// Ids are cached for the life of the build so repeated tags skip the
// database.
type TagDictionary struct {
	db    *DB
	cache map[string]int64
}

func newTagDictionary(db *DB) *TagDictionary {
	return &TagDictionary{db: db, cache: make(map[string]int64)}
}

// GetOrCreate returns the id for value, inserting it on first use. It needs
// an open batch on the owning DB.
func (d *TagDictionary) GetOrCreate(ctx context.Context, value string) (int64, error) {
	if value == "" {
		return 0, ErrEmptyTag
	}
	if id, ok := d.cache[value]; ok {
		return id, nil
	}
	s := d.db
	if s.tx == nil {
		return 0, ErrNoBatch
	}
	if _, err := s.stmtTagIns.ExecContext(ctx, value); err != nil {
		return 0, fmt.Errorf("insert %s tag %q: %w", s.schema.Name, value, err)
	}
	var id int64
	if err := s.stmtTagSel.QueryRowContext(ctx, value).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve %s tag id for %q: %w", s.schema.Name, value, err)
	}
	d.cache[value] = id
	return id, nil
}

// Len reports the number of cached tags.
func (d *TagDictionary) Len() int { return len(d.cache) }
