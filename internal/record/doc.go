// Package record reads the per-artwork CSV extract and converts its loosely
// typed fields into Artwork values.
//
// All conversions are total: malformed flags read as false, malformed dates
// read as absent and blank text reads as the empty string. The only field that
// can reject a row is the object id, reported as ErrBadObjectID.
package record
