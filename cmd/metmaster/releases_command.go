package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"metmaster/internal/release"
)

type releaseRow struct {
	BuildID        string `json:"build_id"`
	Current        bool   `json:"current"`
	GeneratedAtUTC string `json:"generated_at_utc,omitempty"`
	Objects        int64  `json:"objects"`
	Bytes          int64  `json:"bytes"`
	Error          string `json:"error,omitempty"`
}

func newReleasesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "List published releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			infos, err := release.List(cfg.Paths.OutputRoot)
			if err != nil {
				return err
			}

			rows := make([]releaseRow, 0, len(infos))
			for _, info := range infos {
				row := releaseRow{BuildID: info.BuildID, Current: info.Current}
				if info.Err != nil {
					row.Error = info.Err.Error()
				}
				if m := info.Manifest; m != nil {
					row.GeneratedAtUTC = m.GeneratedAtUTC
					row.Objects = m.Outputs.CatalogMasterDB.Objects
					row.Bytes = m.Outputs.CatalogMasterDB.Bytes + m.Outputs.PullMasterDB.Bytes
				}
				rows = append(rows, row)
			}

			if jsonOutput {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No releases published")
				return nil
			}
			fmt.Fprintln(out, renderReleasesTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print releases as JSON")
	return cmd
}
