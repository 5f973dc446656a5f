// Package store writes the catalog and pull SQLite snapshots.
//
// Both snapshots share one DB type parameterized by a Schema. A DB owns a
// single connection and a private TagDictionary; rows are loaded inside
// explicit batches (Begin/Commit) and indices plus derived tables are built
// once by Finalize after the last batch.
package store
