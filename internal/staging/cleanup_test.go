package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"metmaster/internal/logging"
	"metmaster/internal/release"
	"metmaster/internal/testsupport"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldLeftovers(t *testing.T) {
	root := t.TempDir()
	layout := release.Layout{Root: root}

	oldStaging := layout.StagingDir("20250101T000000Z")
	oldCurrent := filepath.Join(root, release.CurrentTempPrefix+"20250101T000000Z")
	recentStaging := layout.StagingDir("20250102T000000Z")
	published := layout.ReleaseDir("20241231T000000Z")
	for _, dir := range []string{oldStaging, oldCurrent, recentStaging, published} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	testsupport.WriteFile(t, filepath.Join(oldStaging, release.CatalogFile), 2048)

	oldTime := time.Now().Add(-2 * time.Hour)
	for _, dir := range []string{oldStaging, oldCurrent, published} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatalf("set old time: %v", err)
		}
	}

	result := CleanStale(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %v", result.Removed)
	}
	for _, dir := range []string{oldStaging, oldCurrent} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", dir)
		}
	}
	for _, dir := range []string{recentStaging, published} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("%s should still exist: %v", dir, err)
		}
	}
}

func TestCleanStaleZeroAgeRemovesAll(t *testing.T) {
	root := t.TempDir()
	dir := release.Layout{Root: root}.StagingDir("20250102T000000Z")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	result := CleanStale(context.Background(), root, 0, logging.NewNop())
	if len(result.Removed) != 1 {
		t.Fatalf("expected fresh leftover removed with zero age, got %v", result.Removed)
	}
}

func TestListLeftoversReportsSize(t *testing.T) {
	root := t.TempDir()
	dir := release.Layout{Root: root}.StagingDir("20250101T000000Z")
	testsupport.WriteFile(t, filepath.Join(dir, release.PullFile), 4096)

	dirs, err := ListLeftovers(root)
	if err != nil {
		t.Fatalf("ListLeftovers: %v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("expected 1 leftover, got %d", len(dirs))
	}
	if dirs[0].Size != 4096 {
		t.Fatalf("expected size 4096, got %d", dirs[0].Size)
	}
	if dirs[0].Name != release.StagingPrefix+"20250101T000000Z" {
		t.Fatalf("unexpected name %q", dirs[0].Name)
	}
}
