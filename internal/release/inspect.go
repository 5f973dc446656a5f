package release

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"metmaster/internal/fileutil"
)

// Info summarizes one published release.
type Info struct {
	BuildID  string
	Dir      string
	Current  bool
	Manifest *Manifest
	Err      error
}

// List returns the published releases under root, oldest first. Staging
// directories are skipped. A release whose manifest cannot be read is
// listed with Err set.
func List(root string) ([]Info, error) {
	layout := Layout{Root: root}
	entries, err := os.ReadDir(layout.ReleasesDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read releases dir: %w", err)
	}

	current, err := ReadCurrent(root)
	if err != nil && !errors.Is(err, ErrNoCurrent) {
		return nil, err
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || hidden(entry.Name()) {
			continue
		}
		info := Info{
			BuildID: entry.Name(),
			Dir:     layout.ReleaseDir(entry.Name()),
			Current: entry.Name() == current,
		}
		info.Manifest, info.Err = ReadManifest(filepath.Join(info.Dir, ManifestFile))
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].BuildID < infos[j].BuildID })
	return infos, nil
}

// Mismatch is one artifact that failed verification.
type Mismatch struct {
	Name     string
	Expected string
	Actual   string
}

// VerifyReport is the outcome of Verify.
type VerifyReport struct {
	Dir        string
	BuildID    string
	Checked    []string
	Mismatches []Mismatch
}

// OK reports whether every artifact matched.
func (r VerifyReport) OK() bool { return len(r.Mismatches) == 0 }

// Verify re-hashes both databases in dir and compares them with
// checksums.txt and manifest.json. A mismatch returns the report together
// with ErrChecksumMismatch.
func Verify(dir string) (VerifyReport, error) {
	report := VerifyReport{Dir: dir}

	manifest, err := ReadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return report, fmt.Errorf("read manifest: %w", err)
	}
	report.BuildID = manifest.BuildID

	sums, err := ReadChecksums(filepath.Join(dir, ChecksumsFile))
	if err != nil {
		return report, fmt.Errorf("read checksums: %w", err)
	}

	for _, o := range manifest.outputs() {
		actual, size, err := fileutil.HashFile(filepath.Join(dir, o.name))
		if err != nil {
			return report, fmt.Errorf("hash %s: %w", o.name, err)
		}
		report.Checked = append(report.Checked, o.name)

		if sums[o.name] != actual {
			report.Mismatches = append(report.Mismatches, Mismatch{Name: o.name + " (checksums.txt)", Expected: sums[o.name], Actual: actual})
		}
		if o.out.SHA256 != actual {
			report.Mismatches = append(report.Mismatches, Mismatch{Name: o.name + " (manifest)", Expected: o.out.SHA256, Actual: actual})
		}
		if o.out.Bytes != size {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Name:     o.name + " (size)",
				Expected: fmt.Sprint(o.out.Bytes),
				Actual:   fmt.Sprint(size),
			})
		}
	}

	if !report.OK() {
		return report, fmt.Errorf("%w: %d artifact(s) in %s", ErrChecksumMismatch, len(report.Mismatches), dir)
	}
	return report, nil
}
