package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"erbfmt/internal/driver"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the formatting cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show cache location and size",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cache, err := driver.OpenDiskCache("erbfmt")
				if err != nil {
					return err
				}
				stats, err := cache.Stats()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dir:     %s\nentries: %d\nsize:    %s\n", stats.Dir, stats.Entries, humanBytes(stats.Bytes))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove all cached results",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cache, err := driver.OpenDiskCache("erbfmt")
				if err != nil {
					return err
				}
				if err := cache.DropAll(); err != nil {
					return fmt.Errorf("failed to clean cache: %w", err)
				}
				if !quiet(cmd) {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cache.Dir())
				}
				return nil
			},
		},
	)
	return cmd
}

func humanBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
