package release

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"metmaster/internal/fileutil"
)

// BuildStats are the row counters of one build.
type BuildStats struct {
	RowsScanned                   int64 `json:"rows_scanned" yaml:"rows_scanned"`
	RowsWithImages                int64 `json:"rows_with_images" yaml:"rows_with_images"`
	RowsSkippedNoImages           int64 `json:"rows_skipped_no_images" yaml:"rows_skipped_no_images"`
	RowsSkippedBadObjectID        int64 `json:"rows_skipped_bad_object_id" yaml:"rows_skipped_bad_object_id"`
	RowsPublicDomain              int64 `json:"rows_public_domain" yaml:"rows_public_domain"`
	RowsHighlight                 int64 `json:"rows_highlight" yaml:"rows_highlight"`
	RowsWithImagesFromCache       int64 `json:"rows_with_images_from_cache" yaml:"rows_with_images_from_cache"`
	RowsWithImagesFromCSVFallback int64 `json:"rows_with_images_from_csv_fallback" yaml:"rows_with_images_from_csv_fallback"`
}

// Inputs names the source files of a build.
type Inputs struct {
	CSV          string `json:"csv" yaml:"csv"`
	ImageCacheDB string `json:"image_cache_db" yaml:"image_cache_db"`
}

// Output describes one published database.
type Output struct {
	Path    string `json:"path" yaml:"path"`
	SHA256  string `json:"sha256" yaml:"sha256"`
	Bytes   int64  `json:"bytes" yaml:"bytes"`
	Objects int64  `json:"objects" yaml:"objects"`
	Tags    int64  `json:"tags" yaml:"tags"`
}

// Outputs holds both databases of a release.
type Outputs struct {
	CatalogMasterDB Output `json:"catalog_master_db" yaml:"catalog_master_db"`
	PullMasterDB    Output `json:"pull_master_db" yaml:"pull_master_db"`
}

// Manifest is the manifest.json document of a release.
type Manifest struct {
	BuildID        string     `json:"build_id" yaml:"build_id"`
	RunID          string     `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAtUTC string     `json:"generated_at_utc" yaml:"generated_at_utc"`
	Inputs         Inputs     `json:"inputs" yaml:"inputs"`
	Outputs        Outputs    `json:"outputs" yaml:"outputs"`
	Stats          BuildStats `json:"stats" yaml:"stats"`
}

func (m *Manifest) outputs() []struct {
	name string
	out  *Output
} {
	return []struct {
		name string
		out  *Output
	}{
		{CatalogFile, &m.Outputs.CatalogMasterDB},
		{PullFile, &m.Outputs.PullMasterDB},
	}
}

// MarshalManifest renders m as indented JSON with a trailing newline.
func MarshalManifest(m *Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteManifest writes m to path atomically.
func WriteManifest(path string, m *Manifest) error {
	data, err := MarshalManifest(m)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// ReadManifest loads a manifest.json file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, nil
}

// Checksum is one checksums.txt line.
type Checksum struct {
	Name   string
	SHA256 string
}

// FormatChecksums renders entries in sha256sum format.
func FormatChecksums(entries []Checksum) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s  %s\n", e.SHA256, e.Name)
	}
	return buf.Bytes()
}

// ReadChecksums parses a checksums.txt file into name -> digest.
func ReadChecksums(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sums := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		digest, name, ok := strings.Cut(text, "  ")
		if !ok || digest == "" || name == "" {
			return nil, fmt.Errorf("%s:%d: malformed checksum line", path, line)
		}
		sums[name] = digest
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}
