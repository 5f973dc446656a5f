package release

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Artifact and directory names inside an output root.
const (
	CatalogFile   = "catalog_master.db"
	PullFile      = "pull_master.db"
	ManifestFile  = "manifest.json"
	ChecksumsFile = "checksums.txt"

	ReleasesDirName = "releases"
	CurrentDirName  = "current"
	MarkerFile      = "CURRENT_BUILD"
	LockFile        = ".build.lock"

	StagingPrefix     = ".staging-"
	CurrentTempPrefix = ".current-"
)

const buildIDLayout = "20060102T150405Z"

// NewBuildID formats t as a second-resolution UTC build id.
func NewBuildID(t time.Time) string {
	return t.UTC().Format(buildIDLayout)
}

// ValidBuildID reports whether id has the NewBuildID shape.
func ValidBuildID(id string) bool {
	_, err := time.Parse(buildIDLayout, id)
	return err == nil
}

// FormatGeneratedAt renders t as an ISO-8601 UTC timestamp with an explicit
// +00:00 offset and microseconds only when non-zero.
func FormatGeneratedAt(t time.Time) string {
	t = t.UTC()
	if micros := t.Nanosecond() / 1000; micros != 0 {
		return fmt.Sprintf("%s.%06d+00:00", t.Format("2006-01-02T15:04:05"), micros)
	}
	return t.Format("2006-01-02T15:04:05") + "+00:00"
}

// Layout resolves paths under an output root.
type Layout struct {
	Root string
}

func (l Layout) ReleasesDir() string { return filepath.Join(l.Root, ReleasesDirName) }

func (l Layout) ReleaseDir(buildID string) string {
	return filepath.Join(l.ReleasesDir(), buildID)
}

func (l Layout) StagingDir(buildID string) string {
	return filepath.Join(l.ReleasesDir(), StagingPrefix+buildID)
}

func (l Layout) CurrentDir() string { return filepath.Join(l.Root, CurrentDirName) }

func (l Layout) currentTempDir(buildID string) string {
	return filepath.Join(l.Root, CurrentTempPrefix+buildID)
}

func (l Layout) MarkerPath() string { return filepath.Join(l.Root, MarkerFile) }

func (l Layout) LockPath() string { return filepath.Join(l.Root, LockFile) }

func hidden(name string) bool { return strings.HasPrefix(name, ".") }
