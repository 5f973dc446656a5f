// Package staging sweeps build leftovers from an output root.
//
// An interrupted build leaves releases/.staging-<id> behind and an
// interrupted publish can leave <root>/.current-<id>. Neither is ever visible
// as a release, but both hold full database copies.
package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"metmaster/internal/logging"
	"metmaster/internal/release"
)

// CleanStaleResult contains the outcome of a stale directory cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// DirInfo contains metadata about a leftover directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListLeftovers returns the staging and temp-current directories under root.
func ListLeftovers(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}
	layout := release.Layout{Root: root}

	var dirs []DirInfo
	for _, scan := range []struct {
		dir    string
		prefix string
	}{
		{layout.ReleasesDir(), release.StagingPrefix},
		{root, release.CurrentTempPrefix},
	} {
		entries, err := os.ReadDir(scan.dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasPrefix(entry.Name(), scan.prefix) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			dirPath := filepath.Join(scan.dir, entry.Name())
			size, _ := dirSize(dirPath)
			dirs = append(dirs, DirInfo{
				Name:    entry.Name(),
				Path:    dirPath,
				ModTime: info.ModTime(),
				Size:    size,
			})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	return dirs, nil
}

// CleanStale removes leftovers older than maxAge. A zero maxAge removes
// every leftover. Callers must hold the build lock.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}
	logger = logging.NewComponentLogger(logger, "staging")

	dirs, err := ListLeftovers(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: ctx.Err()})
			return result
		}
		if maxAge > 0 && !dir.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale build directory", "staging_cleanup_failed",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_root permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dir.Path)
		logger.Info("removed stale build directory",
			logging.String("path", dir.Path),
			logging.Duration("age", time.Since(dir.ModTime).Round(time.Second)),
			logging.Int64("bytes", dir.Size),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}

	return result
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
