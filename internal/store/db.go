package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"

	_ "modernc.org/sqlite"

	"metmaster/internal/record"
)

// ErrNoBatch is returned by row writes outside Begin/Commit.
var ErrNoBatch = errors.New("no open batch")

// Object is an artwork with its resolved image URLs.
type Object struct {
	record.Artwork
	PrimaryImage      string
	PrimaryImageSmall string
}

// Counts reports table sizes after a build.
type Counts struct {
	Objects int64
	Tags    int64
}

// DB is one snapshot file under construction.
type DB struct {
	db     *sql.DB
	path   string
	schema Schema
	tags   *TagDictionary

	tx         *sql.Tx
	stmtObject *sql.Stmt
	stmtLink   *sql.Stmt
	stmtTagIns *sql.Stmt
	stmtTagSel *sql.Stmt
}

// Create makes a new snapshot at path with the given layout. path must not
// exist.
func Create(ctx context.Context, path string, schema Schema) (*DB, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create %s db: %s already exists", schema.Name, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = DELETE",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	ddl, err := schema.script(schema.createFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s schema: %w", schema.Name, err)
	}

	s := &DB{db: db, path: path, schema: schema}
	s.tags = newTagDictionary(s)
	return s, nil
}

// Path returns the file backing the snapshot.
func (s *DB) Path() string { return s.path }

// Schema returns the snapshot layout.
func (s *DB) Schema() Schema { return s.schema }

// Tags returns the snapshot's tag dictionary.
func (s *DB) Tags() *TagDictionary { return s.tags }

// InsertBuildInfo writes build metadata in key order.
func (s *DB) InsertBuildInfo(ctx context.Context, items map[string]string) error {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin build_info tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, "INSERT INTO build_info(key, value) VALUES (?, ?)", k, items[k]); err != nil {
			return fmt.Errorf("insert build_info %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit build_info: %w", err)
	}
	return nil
}

// Begin opens a write batch and prepares the per-row statements.
func (s *DB) Begin(ctx context.Context) error {
	if s.tx != nil {
		return fmt.Errorf("%s: batch already open", s.schema.Name)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s batch: %w", s.schema.Name, err)
	}
	s.tx = tx

	prepare := func(query string) (*sql.Stmt, error) {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("prepare %q: %w", query, err)
		}
		return stmt, nil
	}
	if s.stmtObject, err = prepare(insertStatement(ReplaceOnConflict, "objects", s.schema.objectColumns)); err != nil {
		s.abort()
		return err
	}
	if s.stmtLink, err = prepare(insertStatement(IgnoreOnConflict, "object_tags", []string{"object_id", "tag_id"})); err != nil {
		s.abort()
		return err
	}
	if s.stmtTagIns, err = prepare(insertStatement(IgnoreOnConflict, "tags", []string{"value"})); err != nil {
		s.abort()
		return err
	}
	if s.stmtTagSel, err = prepare("SELECT id FROM tags WHERE value = ?"); err != nil {
		s.abort()
		return err
	}
	return nil
}

// Commit closes the open batch.
func (s *DB) Commit() error {
	if s.tx == nil {
		return ErrNoBatch
	}
	s.closeStatements()
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("commit %s batch: %w", s.schema.Name, err)
	}
	return nil
}

func (s *DB) abort() {
	s.closeStatements()
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
}

func (s *DB) closeStatements() {
	for _, stmt := range []*sql.Stmt{s.stmtObject, s.stmtLink, s.stmtTagIns, s.stmtTagSel} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	s.stmtObject, s.stmtLink, s.stmtTagIns, s.stmtTagSel = nil, nil, nil, nil
}

// UpsertObject writes obj, replacing any row with the same object id.
func (s *DB) UpsertObject(ctx context.Context, obj Object) error {
	if s.tx == nil {
		return ErrNoBatch
	}
	if _, err := s.stmtObject.ExecContext(ctx, s.schema.objectValues(obj)...); err != nil {
		return fmt.Errorf("upsert %s object %d: %w", s.schema.Name, obj.ObjectID, err)
	}
	return nil
}

// LinkTag associates a tag with an object unless the pair exists.
func (s *DB) LinkTag(ctx context.Context, objectID, tagID int64) error {
	if s.tx == nil {
		return ErrNoBatch
	}
	if _, err := s.stmtLink.ExecContext(ctx, objectID, tagID); err != nil {
		return fmt.Errorf("link %s object %d tag %d: %w", s.schema.Name, objectID, tagID, err)
	}
	return nil
}

// Finalize builds indices and derived tables. It must run after the last
// Commit.
func (s *DB) Finalize(ctx context.Context) error {
	if s.tx != nil {
		return fmt.Errorf("finalize %s: batch still open", s.schema.Name)
	}
	script, err := s.schema.script(s.schema.finalizeFile)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("finalize %s: %w", s.schema.Name, err)
	}
	return nil
}

// Counts returns the number of objects and tags.
func (s *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects").Scan(&c.Objects); err != nil {
		return Counts{}, fmt.Errorf("count %s objects: %w", s.schema.Name, err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&c.Tags); err != nil {
		return Counts{}, fmt.Errorf("count %s tags: %w", s.schema.Name, err)
	}
	return c, nil
}

// ForEachObjectID calls fn for every object id in ascending order.
func (s *DB) ForEachObjectID(ctx context.Context, fn func(int64) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT object_id FROM objects ORDER BY object_id")
	if err != nil {
		return fmt.Errorf("list %s object ids: %w", s.schema.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan %s object id: %w", s.schema.Name, err)
		}
		if err := fn(id); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close rolls back any open batch and closes the connection.
func (s *DB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.abort()
	err := s.db.Close()
	s.db = nil
	return err
}
