package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const utf8BOM = "\ufeff"

// ErrInvalidUTF8 is returned for a row whose bytes are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid utf-8")

// Reader yields Raw rows from a header-bearing CSV stream.
//
// Quotes inside unquoted fields are kept literally (Print 5" x 7"). A quoted
// field that is still open at end of input is an error.
type Reader struct {
	csv    *csv.Reader
	tap    *tapReader
	offset int64
	header []string
}

// tapReader keeps the bytes the csv reader has pulled but not yet consumed,
// so each record's raw text can be inspected after parsing.
type tapReader struct {
	r    io.Reader
	buf  []byte
	base int64
}

func (t *tapReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.buf = append(t.buf, p[:n]...)
	return n, err
}

// consume returns the raw bytes in [from, to) and drops everything before to.
func (t *tapReader) consume(from, to int64) []byte {
	raw := t.buf[from-t.base : to-t.base]
	t.buf = t.buf[to-t.base:]
	t.base = to
	return raw
}

// NewReader consumes the header line of r. An empty stream yields a reader
// with no rows.
func NewReader(r io.Reader) (*Reader, error) {
	tap := &tapReader{r: r}
	cr := csv.NewReader(tap)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	reader := &Reader{csv: cr, tap: tap}
	header, err := reader.read()
	if errors.Is(err, io.EOF) {
		return reader, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	reader.header = header
	return reader, nil
}

func (r *Reader) read() ([]string, error) {
	fields, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	end := r.csv.InputOffset()
	raw := r.tap.consume(r.offset, end)
	r.offset = end

	if unterminatedQuote(raw) {
		last := len(fields) - 1
		line, col := r.csv.FieldPos(last)
		return nil, &csv.ParseError{StartLine: line, Line: line, Column: col, Err: csv.ErrQuote}
	}
	for i, f := range fields {
		if !utf8.ValidString(f) {
			line, col := r.csv.FieldPos(i)
			return nil, fmt.Errorf("line %d, column %d: %w", line, col, ErrInvalidUTF8)
		}
	}
	return fields, nil
}

// unterminatedQuote reports whether raw, one record as read with lazy quotes,
// ends inside a quoted field. A quote closes a quoted field only when
// followed by a comma, a line break or end of input; "" is an escaped quote.
func unterminatedQuote(raw []byte) bool {
	fieldStart := true
	quoted := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quoted {
			if c != '"' {
				continue
			}
			if i+1 < len(raw) && raw[i+1] == '"' {
				i++
				continue
			}
			if i+1 == len(raw) || raw[i+1] == ',' || raw[i+1] == '\n' || raw[i+1] == '\r' {
				quoted = false
			}
			continue
		}
		switch {
		case fieldStart && c == '"':
			quoted = true
			fieldStart = false
		case c == ',' || c == '\n' || c == '\r':
			fieldStart = true
		default:
			fieldStart = false
		}
	}
	return quoted
}

// Header returns the column names in file order.
func (r *Reader) Header() []string {
	out := make([]string, len(r.header))
	copy(out, r.header)
	return out
}

// Next returns the next row, or io.EOF when the stream is exhausted. Fields
// beyond the header are ignored.
func (r *Reader) Next() (Raw, error) {
	if r.header == nil {
		return Raw{}, io.EOF
	}
	fields, err := r.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Raw{}, io.EOF
		}
		return Raw{}, fmt.Errorf("read csv row: %w", err)
	}
	line, _ := r.csv.FieldPos(0)
	values := make(map[string]string, len(r.header))
	for i, col := range r.header {
		if i >= len(fields) {
			break
		}
		values[col] = fields[i]
	}
	return Raw{header: r.header, values: values, line: line}, nil
}
