package release

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"metmaster/internal/fileutil"
)

// Prepare creates the staging directory for buildID. It fails with
// ErrReleaseExists when the release is already published.
func Prepare(layout Layout, buildID string) (string, error) {
	final := layout.ReleaseDir(buildID)
	if _, err := os.Stat(final); err == nil {
		return "", fmt.Errorf("%w: %s", ErrReleaseExists, final)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat release dir: %w", err)
	}
	if err := os.MkdirAll(layout.ReleasesDir(), 0o755); err != nil {
		return "", fmt.Errorf("ensure releases dir: %w", err)
	}
	staging := layout.StagingDir(buildID)
	if err := os.Mkdir(staging, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	return staging, nil
}

// Discard removes the staging directory of buildID.
func Discard(layout Layout, buildID string) error {
	return os.RemoveAll(layout.StagingDir(buildID))
}

// Seal hashes both databases in the staging directory, writes checksums.txt
// and manifest.json, then renames staging into releases/<build_id>. m must
// carry counts and stats; Seal fills in path, digest and size of each output.
func Seal(layout Layout, m *Manifest) error {
	staging := layout.StagingDir(m.BuildID)
	final := layout.ReleaseDir(m.BuildID)

	sums := make([]Checksum, 0, 2)
	for _, o := range m.outputs() {
		src := filepath.Join(staging, o.name)
		digest, size, err := fileutil.HashFile(src)
		if err != nil {
			return publishErr("hash", src, err)
		}
		o.out.Path = filepath.Join(final, o.name)
		o.out.SHA256 = digest
		o.out.Bytes = size
		sums = append(sums, Checksum{Name: o.name, SHA256: digest})
	}

	checksumsPath := filepath.Join(staging, ChecksumsFile)
	if err := fileutil.WriteFileAtomic(checksumsPath, FormatChecksums(sums), 0o644); err != nil {
		return publishErr("write checksums", checksumsPath, err)
	}
	manifestPath := filepath.Join(staging, ManifestFile)
	if err := WriteManifest(manifestPath, m); err != nil {
		return publishErr("write manifest", manifestPath, err)
	}
	if err := fileutil.SyncDir(staging); err != nil {
		return publishErr("sync staging", staging, err)
	}

	if _, err := os.Stat(final); err == nil {
		return publishErr("promote", final, ErrReleaseExists)
	}
	if err := os.Rename(staging, final); err != nil {
		return publishErr("promote", final, err)
	}
	if err := fileutil.SyncDir(layout.ReleasesDir()); err != nil {
		return publishErr("sync releases", layout.ReleasesDir(), err)
	}
	return nil
}

// PublishCurrent mirrors releases/<buildID> into current and then points
// CURRENT_BUILD at it. Readers see either the old or the new current tree.
func PublishCurrent(layout Layout, buildID string) error {
	src := layout.ReleaseDir(buildID)
	if _, err := os.Stat(src); err != nil {
		return publishErr("locate release", src, err)
	}

	tmp := layout.currentTempDir(buildID)
	if err := os.RemoveAll(tmp); err != nil {
		return publishErr("clear temp current", tmp, err)
	}
	if err := fileutil.CopyDir(src, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return publishErr("copy release", tmp, err)
	}

	if err := swapCurrent(tmp, layout.CurrentDir()); err != nil {
		_ = os.RemoveAll(tmp)
		return publishErr("swap current", layout.CurrentDir(), err)
	}
	if err := fileutil.SyncDir(layout.Root); err != nil {
		return publishErr("sync output root", layout.Root, err)
	}

	marker := layout.MarkerPath()
	if err := fileutil.WriteFileAtomic(marker, []byte(buildID+"\n"), 0o644); err != nil {
		return publishErr("write marker", marker, err)
	}
	return nil
}

// swapFallback moves the old tree aside and the new one in. There is a
// short window where current does not exist.
func swapFallback(next, current string) error {
	old := next + ".old"
	if err := os.Rename(current, old); err != nil {
		return err
	}
	if err := os.Rename(next, current); err != nil {
		_ = os.Rename(old, current)
		return err
	}
	return os.RemoveAll(old)
}

// ReadCurrent returns the build id recorded in CURRENT_BUILD.
func ReadCurrent(root string) (string, error) {
	data, err := os.ReadFile(Layout{Root: root}.MarkerPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoCurrent
	}
	if err != nil {
		return "", fmt.Errorf("read current marker: %w", err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrNoCurrent
	}
	return id, nil
}
