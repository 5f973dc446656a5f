package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"metmaster/internal/release"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "manifest [build-id]",
		Short: "Print the manifest of a release",
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
			manifest, err := release.ReadManifest(filepath.Join(dir, release.ManifestFile))
			if err != nil {
				return err
			}

			switch strings.ToLower(strings.TrimSpace(format)) {
			case "", "json":
				return writeJSON(cmd, manifest)
			case "yaml", "yml":
				return writeYAML(cmd, manifest)
			default:
				return fmt.Errorf("unsupported format %q (use json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	return cmd
}
