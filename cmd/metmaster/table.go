package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"metmaster/internal/release"
)

// column is one table column. Counts, sizes and shares are numeric and right
// aligned; names and digests are left aligned.
type column struct {
	title   string
	numeric bool
}

func newTable(columns ...column) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		align := text.AlignLeft
		if c.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return tw
}

type namedOutput struct {
	name string
	out  release.Output
}

func manifestOutputs(m *release.Manifest) []namedOutput {
	return []namedOutput{
		{release.CatalogFile, m.Outputs.CatalogMasterDB},
		{release.PullFile, m.Outputs.PullMasterDB},
	}
}

// renderOutputsTable lists both databases of a release with a short digest
// and a size total.
func renderOutputsTable(m *release.Manifest) string {
	tw := newTable(
		column{title: "Database"},
		column{title: "Objects", numeric: true},
		column{title: "Tags", numeric: true},
		column{title: "Size", numeric: true},
		column{title: "SHA-256"},
	)
	var total int64
	for _, o := range manifestOutputs(m) {
		tw.AppendRow(table.Row{
			o.name,
			formatCount(o.out.Objects),
			formatCount(o.out.Tags),
			formatBytes(o.out.Bytes),
			shortDigest(o.out.SHA256),
		})
		total += o.out.Bytes
	}
	tw.AppendFooter(table.Row{"total", "", "", formatBytes(total), ""})
	return tw.Render()
}

// renderStatsTable shows each build counter with its share of scanned rows.
// Image sources are indented under the rows they split.
func renderStatsTable(s release.BuildStats) string {
	entries := []struct {
		label string
		value int64
	}{
		{"rows scanned", s.RowsScanned},
		{"with images", s.RowsWithImages},
		{"  from cache", s.RowsWithImagesFromCache},
		{"  from csv fallback", s.RowsWithImagesFromCSVFallback},
		{"skipped, no images", s.RowsSkippedNoImages},
		{"skipped, bad object id", s.RowsSkippedBadObjectID},
		{"public domain", s.RowsPublicDomain},
		{"highlight", s.RowsHighlight},
	}
	tw := newTable(
		column{title: "Stat"},
		column{title: "Rows", numeric: true},
		column{title: "Share", numeric: true},
	)
	for _, e := range entries {
		tw.AppendRow(table.Row{e.label, formatCount(e.value), percent(e.value, s.RowsScanned)})
	}
	return tw.Render()
}

// renderReleasesTable marks the current release with "*" and flags
// releases whose manifest cannot be read.
func renderReleasesTable(rows []releaseRow) string {
	tw := newTable(
		column{title: ""},
		column{title: "Build"},
		column{title: "Generated"},
		column{title: "Objects", numeric: true},
		column{title: "Size", numeric: true},
	)
	var total int64
	for _, row := range rows {
		marker := ""
		if row.Current {
			marker = "*"
		}
		generated := row.GeneratedAtUTC
		if row.Error != "" {
			generated = "unreadable manifest"
		}
		tw.AppendRow(table.Row{marker, row.BuildID, generated, formatCount(row.Objects), formatBytes(row.Bytes)})
		total += row.Bytes
	}
	tw.AppendFooter(table.Row{"", formatCount(int64(len(rows))) + " releases", "", "", formatBytes(total)})
	return tw.Render()
}
