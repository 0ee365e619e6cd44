package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/cache"
	"github.com/jchantrell/fresdb/internal/utils"
)

var clearCache bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or clear the decompressed payload cache",
	Long: `Cache prints where decompressed payloads are cached and how much they take.
With --clear every cached payload is removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cache.CacheManager(cfg.CacheDir)

		if clearCache {
			stats, err := c.Stats()
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			slog.Info("Cleared cache", "dir", c.Dir(), "entries", stats.Entries, "size", utils.Bytes(stats.Size))
			return nil
		}

		return printCache(cmd.OutOrStdout(), c)
	},
}

func printCache(w io.Writer, c *cache.Cache) error {
	stats, err := c.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Directory: %s\n", c.Dir())
	fmt.Fprintf(w, "Entries: %s\n", utils.Number(int64(stats.Entries)))
	fmt.Fprintf(w, "Size: %s\n", utils.Bytes(stats.Size))
	return nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.Flags().BoolVar(&clearCache, "clear", false, "remove every cached payload")
}
