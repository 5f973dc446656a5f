package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"metmaster/internal/record"
)

// DefaultHeader is the full column set of the CSV extract.
var DefaultHeader = []string{
	record.ColObjectID, record.ColIsHighlight, record.ColIsPublicDomain,
	record.ColDepartment, record.ColObjectName, record.ColTitle, record.ColCulture,
	record.ColArtistDisplayName, record.ColArtistDisplayBio, record.ColArtistNationality,
	record.ColArtistBeginDate, record.ColArtistEndDate, record.ColObjectDate,
	record.ColObjectBeginDate, record.ColObjectEndDate, record.ColMedium,
	record.ColCountry, record.ColClassification, record.ColLinkResource,
	record.ColTags, record.ColPrimaryImage, record.ColPrimaryImageSmall,
}

// Row is one fixture row keyed by column name. Missing columns are written
// as empty fields.
type Row map[string]string

// WriteCSV writes rows under DefaultHeader to path.
func WriteCSV(t testing.TB, path string, rows ...Row) {
	t.Helper()
	WriteCSVWithHeader(t, path, DefaultHeader, rows...)
}

// WriteCSVWithHeader writes rows under a custom header.
func WriteCSVWithHeader(t testing.TB, path string, header []string, rows ...Row) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, row := range rows {
		fields := make([]string, len(header))
		for i, col := range header {
			fields[i] = row[col]
		}
		if err := w.Write(fields); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}
}

// AppendRaw appends literal bytes to path, used to inject malformed lines.
func AppendRaw(t testing.TB, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
