package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"metmaster/internal/metrics"
	"metmaster/internal/release"
)

func sampleManifest() *release.Manifest {
	return &release.Manifest{
		BuildID: "20250101T000000Z",
		Outputs: release.Outputs{
			CatalogMasterDB: release.Output{Objects: 10, Tags: 4, Bytes: 8192},
			PullMasterDB:    release.Output{Objects: 10, Tags: 4, Bytes: 4096},
		},
		Stats: release.BuildStats{RowsScanned: 12, RowsWithImages: 10, RowsSkippedNoImages: 2},
	}
}

func TestObserveSetsGauges(t *testing.T) {
	b := metrics.New()
	b.Observe(sampleManifest(), 1500*time.Millisecond, time.Unix(1735689600, 0))

	require.InDelta(t, 12, testutil.ToFloat64(b.Rows.WithLabelValues("scanned")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(b.Rows.WithLabelValues("skipped_no_images")), 0)
	require.InDelta(t, 4096, testutil.ToFloat64(b.OutputBytes.WithLabelValues("pull")), 0)
	require.InDelta(t, 1.5, testutil.ToFloat64(b.Duration), 0.0001)
	require.InDelta(t, 1735689600, testutil.ToFloat64(b.LastSuccess), 0)
	require.InDelta(t, 1, testutil.ToFloat64(b.Info.WithLabelValues("20250101T000000Z")), 0)
}

func TestWriteTextfile(t *testing.T) {
	b := metrics.New()
	b.Observe(sampleManifest(), time.Second, time.Now())

	path := filepath.Join(t.TempDir(), "collector", "metmaster.prom")
	require.NoError(t, b.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, `metmaster_build_objects{schema="catalog"} 10`), text)
	require.Contains(t, text, `metmaster_build_info{build_id="20250101T000000Z"} 1`)
}
