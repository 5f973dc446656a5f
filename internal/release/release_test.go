package release_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"metmaster/internal/release"
)

func stageRelease(t *testing.T, layout release.Layout, buildID, catalog, pull string) *release.Manifest {
	t.Helper()
	staging, err := release.Prepare(layout, buildID)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, release.CatalogFile), []byte(catalog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, release.PullFile), []byte(pull), 0o644))

	m := &release.Manifest{
		BuildID:        buildID,
		GeneratedAtUTC: "2025-01-01T00:00:00+00:00",
		Inputs:         release.Inputs{CSV: "objects.csv", ImageCacheDB: "image_cache.db"},
		Outputs: release.Outputs{
			CatalogMasterDB: release.Output{Objects: 2, Tags: 3},
			PullMasterDB:    release.Output{Objects: 2, Tags: 3},
		},
		Stats: release.BuildStats{RowsScanned: 3, RowsWithImages: 2, RowsSkippedNoImages: 1},
	}
	require.NoError(t, release.Seal(layout, m))
	return m
}

func TestNewBuildIDAndGeneratedAt(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("EST", -5*3600))
	require.Equal(t, "20250304T100607Z", release.NewBuildID(ts))
	require.True(t, release.ValidBuildID("20250304T100607Z"))
	require.False(t, release.ValidBuildID(".staging-20250304T100607Z"))

	require.Equal(t, "2025-03-04T10:06:07+00:00", release.FormatGeneratedAt(ts))
	require.Equal(t, "2025-03-04T10:06:07.120000+00:00", release.FormatGeneratedAt(ts.Add(120*time.Millisecond)))
}

func TestSealWritesChecksumsAndManifest(t *testing.T) {
	layout := release.Layout{Root: t.TempDir()}
	m := stageRelease(t, layout, "20250101T000000Z", "catalog-bytes", "pull-bytes")

	dir := layout.ReleaseDir("20250101T000000Z")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{release.CatalogFile, release.PullFile, release.ManifestFile, release.ChecksumsFile}, names)

	_, err = os.Stat(layout.StagingDir("20250101T000000Z"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	checksums, err := os.ReadFile(filepath.Join(dir, release.ChecksumsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(checksums), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, m.Outputs.CatalogMasterDB.SHA256+"  "+release.CatalogFile, lines[0])
	require.Equal(t, m.Outputs.PullMasterDB.SHA256+"  "+release.PullFile, lines[1])

	require.Equal(t, filepath.Join(dir, release.CatalogFile), m.Outputs.CatalogMasterDB.Path)
	require.EqualValues(t, len("catalog-bytes"), m.Outputs.CatalogMasterDB.Bytes)

	raw, err := os.ReadFile(filepath.Join(dir, release.ManifestFile))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(raw), "}\n"))
	require.Contains(t, string(raw), `"rows_with_images_from_csv_fallback": 0`)

	loaded, err := release.ReadManifest(filepath.Join(dir, release.ManifestFile))
	require.NoError(t, err)
	require.Equal(t, m, loaded)
}

func TestPrepareRejectsExistingRelease(t *testing.T) {
	layout := release.Layout{Root: t.TempDir()}
	stageRelease(t, layout, "20250101T000000Z", "a", "b")

	_, err := release.Prepare(layout, "20250101T000000Z")
	require.ErrorIs(t, err, release.ErrReleaseExists)
}

func TestPublishCurrentSwapsTreeAndMarker(t *testing.T) {
	layout := release.Layout{Root: t.TempDir()}

	_, err := release.ReadCurrent(layout.Root)
	require.ErrorIs(t, err, release.ErrNoCurrent)

	stageRelease(t, layout, "20250101T000000Z", "first-catalog", "first-pull")
	require.NoError(t, release.PublishCurrent(layout, "20250101T000000Z"))

	id, err := release.ReadCurrent(layout.Root)
	require.NoError(t, err)
	require.Equal(t, "20250101T000000Z", id)
	marker, err := os.ReadFile(layout.MarkerPath())
	require.NoError(t, err)
	require.Equal(t, "20250101T000000Z\n", string(marker))

	stageRelease(t, layout, "20250102T000000Z", "second-catalog", "second-pull")
	require.NoError(t, release.PublishCurrent(layout, "20250102T000000Z"))

	got, err := os.ReadFile(filepath.Join(layout.CurrentDir(), release.CatalogFile))
	require.NoError(t, err)
	require.Equal(t, "second-catalog", string(got))

	id, err = release.ReadCurrent(layout.Root)
	require.NoError(t, err)
	require.Equal(t, "20250102T000000Z", id)

	entries, err := os.ReadDir(layout.Root)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), release.CurrentTempPrefix), "leftover %s", e.Name())
	}

	report, err := release.Verify(layout.CurrentDir())
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Equal(t, "20250102T000000Z", report.BuildID)
}

func TestVerifyDetectsTampering(t *testing.T) {
	layout := release.Layout{Root: t.TempDir()}
	stageRelease(t, layout, "20250101T000000Z", "catalog", "pull")
	dir := layout.ReleaseDir("20250101T000000Z")

	report, err := release.Verify(dir)
	require.NoError(t, err)
	require.Len(t, report.Checked, 2)

	require.NoError(t, os.WriteFile(filepath.Join(dir, release.PullFile), []byte("tampered"), 0o644))
	report, err = release.Verify(dir)
	require.ErrorIs(t, err, release.ErrChecksumMismatch)
	require.False(t, report.OK())
	require.NotEmpty(t, report.Mismatches)
	for _, mm := range report.Mismatches {
		require.True(t, strings.HasPrefix(mm.Name, release.PullFile), mm.Name)
	}
}

func TestListMarksCurrentAndSkipsStaging(t *testing.T) {
	layout := release.Layout{Root: t.TempDir()}
	infos, err := release.List(layout.Root)
	require.NoError(t, err)
	require.Empty(t, infos)

	stageRelease(t, layout, "20250102T000000Z", "b", "b")
	stageRelease(t, layout, "20250101T000000Z", "a", "a")
	require.NoError(t, release.PublishCurrent(layout, "20250102T000000Z"))
	_, err = release.Prepare(layout, "20250103T000000Z")
	require.NoError(t, err)

	infos, err = release.List(layout.Root)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "20250101T000000Z", infos[0].BuildID)
	require.False(t, infos[0].Current)
	require.Equal(t, "20250102T000000Z", infos[1].BuildID)
	require.True(t, infos[1].Current)
	require.NoError(t, infos[1].Err)
	require.EqualValues(t, 2, infos[1].Manifest.Outputs.PullMasterDB.Objects)

	require.NoError(t, release.Discard(layout, "20250103T000000Z"))
	_, err = os.Stat(layout.StagingDir("20250103T000000Z"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAcquireLockIsExclusive(t *testing.T) {
	root := t.TempDir()
	lock, err := release.AcquireLock(root)
	require.NoError(t, err)

	_, err = release.AcquireLock(root)
	require.ErrorIs(t, err, release.ErrLocked)

	require.NoError(t, lock.Release())
	again, err := release.AcquireLock(root)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestPublishErrorUnwraps(t *testing.T) {
	layout := release.Layout{Root: t.TempDir()}
	err := release.PublishCurrent(layout, "20250101T000000Z")
	var pubErr *release.PublishError
	require.ErrorAs(t, err, &pubErr)
	require.Equal(t, "locate release", pubErr.Step)
	require.ErrorIs(t, err, os.ErrNotExist)
}
