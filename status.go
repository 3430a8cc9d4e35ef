package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexandro/fastfind/config"
	"github.com/lexandro/fastfind/index"
	"github.com/lexandro/fastfind/tools"
)

func newStatusCommand(g *globalOptions) *cobra.Command {
	var idx indexFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the index file's size, age and record count",
		Long: `Read the index file and report its size, last build time and record count.
Records are validated against the configured layout, so a merged index read as
split reports its lines as malformed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags config.Flags
			idx.apply(cmd, &flags)
			cfg, logger, err := g.load(cmd, flags)
			if err != nil {
				return err
			}

			stats, err := index.ReadStats(cfg.IndexPath, cfg.RecordLayout())
			if err != nil {
				return fmt.Errorf("reading index status: %w", err)
			}
			logger.Debug("index status", "index", stats.Path, "records", stats.Records)
			fmt.Fprint(cmd.OutOrStdout(), tools.FormatStats(stats))
			return nil
		},
	}

	idx.register(cmd)
	return cmd
}
