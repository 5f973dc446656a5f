package main

import (
	"github.com/spf13/cobra"

	"metmaster/internal/release"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify [build-id]",
		Short: "Re-hash a release and compare it with its manifest and checksums",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, dir, err := releaseDir(cfg.Paths.OutputRoot, args)
			if err != nil {
				return err
			}

			vr, verifyErr := release.Verify(dir)
			if jsonOutput {
				if err := writeJSON(cmd, vr); err != nil {
					return err
				}
				return verifyErr
			}

			out := cmd.OutOrStdout()
			rep := newReport(out)
			rep.section("Verify " + vr.BuildID)
			rep.addArtifacts(vr)
			rep.render(out)
			return verifyErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}
