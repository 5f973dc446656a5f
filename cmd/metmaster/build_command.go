package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"metmaster/internal/build"
	"metmaster/internal/config"
	"metmaster/internal/release"
)

type buildFlags struct {
	csv          string
	imageCacheDB string
	outputRoot   string
	batchSize    int
	jsonOutput   bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build both master databases and publish them as current",
		Long: `Build reads the filtered objects CSV and the image cache, writes the
catalog and pull master databases into a new release directory, and
switches current/ to it once both are sealed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := build.OptionsFromConfig(cfg, logger)
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}

			manifest, err := build.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				return writeJSON(cmd, manifest)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBuildSummary(manifest, opts.OutputRoot))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.csv, "csv", "", "Source CSV (overrides paths.source_csv)")
	cmd.Flags().StringVar(&flags.imageCacheDB, "image-cache-db", "", "Image cache database (overrides paths.image_cache_db)")
	cmd.Flags().StringVar(&flags.outputRoot, "output-root", "", "Output root (overrides paths.output_root)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "Rows per transaction (overrides build.batch_size)")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the manifest as JSON")
	return cmd
}

func (f buildFlags) apply(cmd *cobra.Command, opts *build.Options) error {
	overrides := []struct {
		value  string
		target *string
	}{
		{f.csv, &opts.SourceCSV},
		{f.imageCacheDB, &opts.ImageCacheDB},
		{f.outputRoot, &opts.OutputRoot},
	}
	for _, o := range overrides {
		value := strings.TrimSpace(o.value)
		if value == "" {
			continue
		}
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return err
		}
		*o.target = expanded
	}
	if cmd.Flags().Changed("batch-size") {
		if f.batchSize <= 0 {
			return fmt.Errorf("--batch-size must be positive, got %d", f.batchSize)
		}
		opts.BatchSize = f.batchSize
	}
	return nil
}

func renderBuildSummary(m *release.Manifest, root string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Published %s to %s\n\n", m.BuildID, release.Layout{Root: root}.CurrentDir())
	b.WriteString(renderOutputsTable(m))
	b.WriteString("\n\n")
	b.WriteString(renderStatsTable(m.Stats))
	b.WriteString("\n")
	return b.String()
}
