package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"metmaster/internal/release"
	"metmaster/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show inputs, the current build and leftover staging directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			root := cfg.Paths.OutputRoot
			rep := newReport(out)

			rep.section("Inputs")
			addInput(rep, "Source CSV", cfg.Paths.SourceCSV)
			addInput(rep, "Image cache", cfg.Paths.ImageCacheDB)

			rep.section("Current build")
			current, err := release.ReadCurrent(root)
			switch {
			case errors.Is(err, release.ErrNoCurrent):
				rep.add("Build", outcomeMissing, "nothing published under "+root)
			case err != nil:
				rep.add("Build", outcomeMismatch, err.Error())
			default:
				addCurrent(rep, root, current)
			}

			rep.section("Leftovers")
			leftovers, err := staging.ListLeftovers(root)
			switch {
			case err != nil:
				rep.add("Staging", outcomeMismatch, err.Error())
			case len(leftovers) == 0:
				rep.add("Staging", outcomeOK, "none")
			default:
				for _, dir := range leftovers {
					rep.addLeftover(dir, fmt.Sprintf("%s, modified %s", formatBytes(dir.Size), humanize.Time(dir.ModTime)))
				}
			}

			rep.render(out)
			return nil
		},
	}
}

func addInput(rep *report, label, path string) {
	info, err := os.Stat(path)
	if err != nil {
		rep.add(label, outcomeMissing, path)
		return
	}
	rep.add(label, outcomeOK, fmt.Sprintf("%s (%s, modified %s)", path, formatBytes(info.Size()), info.ModTime().UTC().Format(time.RFC3339)))
}

// addCurrent describes the release CURRENT_BUILD points at. A marker whose
// release directory or manifest is gone is reported as missing.
func addCurrent(rep *report, root, buildID string) {
	dir := release.Layout{Root: root}.ReleaseDir(buildID)
	manifest, err := release.ReadManifest(filepath.Join(dir, release.ManifestFile))
	if err != nil {
		rep.add("Build", outcomeMissing, fmt.Sprintf("%s (%v)", buildID, err))
		return
	}
	rep.add("Build", outcomeCurrent, buildID)
	rep.add("Generated", outcomeInfo, manifest.GeneratedAtUTC)
	for _, o := range manifestOutputs(manifest) {
		rep.add(o.name, outcomeInfo, fmt.Sprintf("%s objects, %s tags, %s",
			formatCount(o.out.Objects), formatCount(o.out.Tags), formatBytes(o.out.Bytes)))
	}
	rep.add("Rows scanned", outcomeInfo, formatCount(manifest.Stats.RowsScanned))
}
