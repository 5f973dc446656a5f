package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Raw is one CSV row keyed by header name. Columns named in the header but
// missing from a short row are absent.
type Raw struct {
	header []string
	values map[string]string
	line   int
}

// NewRaw builds a row from column/value pairs, mostly for tests and fixtures.
func NewRaw(values map[string]string) Raw {
	header := make([]string, 0, len(values))
	copied := make(map[string]string, len(values))
	for k, v := range values {
		header = append(header, k)
		copied[k] = v
	}
	sort.Strings(header)
	return Raw{header: header, values: copied}
}

// Get returns the value of column and whether the row carries it.
func (r Raw) Get(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Line is the 1-based line in the source file where the row starts, or 0.
func (r Raw) Line() int { return r.line }

// JSON renders every header column of the row as a JSON object with sorted
// keys. Columns missing from a short row are null.
func (r Raw) JSON() (string, error) {
	doc := make(map[string]any, len(r.header))
	for _, col := range r.header {
		if v, ok := r.values[col]; ok {
			doc[col] = v
		} else {
			doc[col] = nil
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode row metadata: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
