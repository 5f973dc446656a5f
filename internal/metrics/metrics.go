// Package metrics exports build results in the node_exporter textfile
// collector format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"metmaster/internal/release"
)

const namespace = "metmaster"

// Build holds the gauges describing the last successful build.
type Build struct {
	registry *prometheus.Registry

	Rows        *prometheus.GaugeVec
	Objects     *prometheus.GaugeVec
	Tags        *prometheus.GaugeVec
	OutputBytes *prometheus.GaugeVec
	Duration    prometheus.Gauge
	LastSuccess prometheus.Gauge
	Info        *prometheus.GaugeVec
}

// New registers the build gauges on a private registry.
func New() *Build {
	b := &Build{registry: prometheus.NewRegistry()}

	b.Rows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "rows",
			Help:      "Row counters of the last successful build",
		},
		[]string{"stat"},
	)
	b.Objects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "objects",
			Help:      "Objects in each published database",
		},
		[]string{"schema"},
	)
	b.Tags = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "tags",
			Help:      "Distinct tags in each published database",
		},
		[]string{"schema"},
	)
	b.OutputBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "output_bytes",
			Help:      "Size of each published database",
		},
		[]string{"schema"},
	)
	b.Duration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Wall time of the last successful build",
		},
	)
	b.LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last successful build was published",
		},
	)
	b.Info = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "info",
			Help:      "Build id of the current release",
		},
		[]string{"build_id"},
	)

	b.registry.MustRegister(b.Rows, b.Objects, b.Tags, b.OutputBytes, b.Duration, b.LastSuccess, b.Info)
	return b
}

// Observe records a published manifest.
func (b *Build) Observe(m *release.Manifest, duration time.Duration, publishedAt time.Time) {
	s := m.Stats
	for stat, v := range map[string]int64{
		"scanned":               s.RowsScanned,
		"with_images":           s.RowsWithImages,
		"skipped_no_images":     s.RowsSkippedNoImages,
		"skipped_bad_object_id": s.RowsSkippedBadObjectID,
		"public_domain":         s.RowsPublicDomain,
		"highlight":             s.RowsHighlight,
		"images_from_cache":     s.RowsWithImagesFromCache,
		"images_from_csv":       s.RowsWithImagesFromCSVFallback,
	} {
		b.Rows.WithLabelValues(stat).Set(float64(v))
	}
	for schema, out := range map[string]release.Output{
		"catalog": m.Outputs.CatalogMasterDB,
		"pull":    m.Outputs.PullMasterDB,
	} {
		b.Objects.WithLabelValues(schema).Set(float64(out.Objects))
		b.Tags.WithLabelValues(schema).Set(float64(out.Tags))
		b.OutputBytes.WithLabelValues(schema).Set(float64(out.Bytes))
	}
	b.Duration.Set(duration.Seconds())
	b.LastSuccess.Set(float64(publishedAt.Unix()))
	b.Info.Reset()
	b.Info.WithLabelValues(m.BuildID).Set(1)
}

// WriteTextfile writes the gauges to path, creating its directory.
func (b *Build) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, b.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Gatherer exposes the registry for tests and embedding.
func (b *Build) Gatherer() prometheus.Gatherer { return b.registry }
