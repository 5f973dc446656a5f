package store

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// SchemaVersion is recorded in build_info. Bump it when either layout changes.
const SchemaVersion = 1

// ConflictPolicy selects what an insert does when the key already exists.
type ConflictPolicy int

const (
	// ReplaceOnConflict deletes the existing row and inserts the new one.
	ReplaceOnConflict ConflictPolicy = iota
	// IgnoreOnConflict keeps the existing row and drops the new one.
	IgnoreOnConflict
)

func (p ConflictPolicy) verb() string {
	switch p {
	case IgnoreOnConflict:
		return "INSERT OR IGNORE"
	default:
		return "INSERT OR REPLACE"
	}
}

func (p ConflictPolicy) String() string {
	switch p {
	case IgnoreOnConflict:
		return "ignore"
	default:
		return "replace"
	}
}

func insertStatement(policy ConflictPolicy, table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("%s INTO %s(%s) VALUES (%s)", policy.verb(), table, strings.Join(columns, ", "), placeholders)
}

// Schema describes one output layout: its DDL, its finalize script and the
// projection of an Object onto its objects table.
type Schema struct {
	Name          string
	createFile    string
	finalizeFile  string
	objectColumns []string
	objectValues  func(Object) []any
}

var (
	// Catalog is the full-provenance layout.
	Catalog = Schema{
		Name:         "catalog",
		createFile:   "sql/catalog_schema.sql",
		finalizeFile: "sql/catalog_finalize.sql",
		objectColumns: []string{
			"object_id", "title", "artist_display_name", "artist_display_bio",
			"artist_nationality", "artist_begin_date", "artist_end_date", "object_date",
			"object_begin_date", "object_end_date", "department", "classification",
			"object_name", "medium", "culture", "country", "is_public_domain",
			"is_highlight", "link_resource", "primary_image", "primary_image_small",
			"metadata_json",
		},
		objectValues: func(o Object) []any {
			a := o.Artwork
			return []any{
				a.ObjectID, a.Title, a.ArtistDisplayName, a.ArtistDisplayBio,
				a.ArtistNationality, a.ArtistBeginDate, a.ArtistEndDate, a.ObjectDate,
				nullableInt(a.ObjectBeginDate), nullableInt(a.ObjectEndDate), a.Department, a.Classification,
				a.ObjectName, a.Medium, a.Culture, a.Country, a.IsPublicDomain,
				a.IsHighlight, a.LinkResource, o.PrimaryImage, o.PrimaryImageSmall,
				a.MetadataJSON,
			}
		},
	}

	// Pull is the slim client projection. It also carries tag_stats.
	Pull = Schema{
		Name:         "pull",
		createFile:   "sql/pull_schema.sql",
		finalizeFile: "sql/pull_finalize.sql",
		objectColumns: []string{
			"object_id", "title", "artist_display_name", "object_begin_date", "object_end_date",
			"department", "classification", "medium", "is_public_domain", "primary_image",
			"primary_image_small",
		},
		objectValues: func(o Object) []any {
			a := o.Artwork
			return []any{
				a.ObjectID, a.Title, a.ArtistDisplayName, nullableInt(a.ObjectBeginDate), nullableInt(a.ObjectEndDate),
				a.Department, a.Classification, a.Medium, a.IsPublicDomain, o.PrimaryImage,
				o.PrimaryImageSmall,
			}
		},
	}
)

func (s Schema) script(name string) (string, error) {
	data, err := sqlFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s script: %w", s.Name, err)
	}
	return string(data), nil
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
