package store

import "net/url"

// ReadOnlyDSN returns a sqlite URI that opens path read-only. The driver only
// forwards query parameters to sqlite for file: URIs, so the path is encoded
// as one.
func ReadOnlyDSN(path string) string {
	u := url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}
	if u.Path != "" && u.Path[0] != '/' {
		// Relative paths stay relative: file:name.db, not file:///name.db.
		u = url.URL{Scheme: "file", Opaque: (&url.URL{Path: path}).EscapedPath(), RawQuery: "mode=ro"}
	}
	return u.String()
}
