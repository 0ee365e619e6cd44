package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/archive"
	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/config"
	"github.com/jchantrell/fresdb/internal/utils"
)

var (
	cfg     *config.Config
	cfgFile string

	dbPath     string
	logLevel   string
	logFormat  string
	noProgress bool
	useCache   bool
)

var rootCmd = &cobra.Command{
	Use:   "fresdb",
	Short: "BFRES archive decoder and catalog tool",
	Long: `fresdb decodes BFRES resource archives (plain, Yaz0 or zstd wrapped) into
their models, skeletons, vertex buffers, materials and textures.

It can decompress archives, print their contents, export embedded files and
texture data, and catalog whole directories of archives into a queryable
SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("database") {
			cfg.Database = dbPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		if cmd.Flags().Changed("cache") {
			cfg.Cache = useCache
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}

		slog.SetDefault(slog.New(handler))

		slog.Debug("Configuration",
			"database", cfg.Database,
			"cache", cfg.Cache,
			"cache_dir", cfg.CacheDir,
			"extensions", cfg.Extensions,
			"workers", cfg.Workers,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLoader builds an archive loader from the active configuration
func newLoader() *archive.Loader {
	return archive.NewLoader(&archive.LoaderOptions{
		Cache:    cfg.Cache,
		CacheDir: cfg.CacheDir,
		Decode:   bfres.DefaultDecodeOptions(),
		Logger:   slog.Default(),
	})
}

// progressEnabled reports whether progress bars should be drawn
func progressEnabled() bool {
	return !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug")
}

func newProgress(total int) *utils.Progress {
	return utils.NewProgress(total, progressEnabled())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is fresdb.yaml in home or pwd)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "", "database file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
	rootCmd.PersistentFlags().BoolVar(&useCache, "cache", false, "cache decompressed payloads")
}
