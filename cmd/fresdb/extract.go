package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/archive"
	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/database"
	"github.com/jchantrell/fresdb/internal/utils"
)

type ExtractionStats struct {
	StartTime      time.Time
	EndTime        time.Time
	TotalFiles     int
	ProcessedFiles int
	SkippedFiles   int
	OlderFiles     int
	DecodeErrors   int
	DatabaseErrors int
	RowsInserted   int64
	BytesDecoded   int64
}

// extractResult is one worker's outcome for one file
type extractResult struct {
	path    string
	archive *archive.Archive
	skipped bool
	err     error
	elapsed time.Duration
}

// hashSet is the set of catalogued content hashes shared by workers
type hashSet struct {
	mu     sync.RWMutex
	hashes map[string]bool
}

func (s *hashSet) has(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hashes[hash]
}

func (s *hashSet) add(hash string) {
	s.mu.Lock()
	s.hashes[hash] = true
	s.mu.Unlock()
}

var extractMinVersion string

// olderThan reports whether a decoded archive's FRES version is below
// minimum. A nil minimum accepts every version.
func olderThan(a *archive.Archive, minimum *bfres.Version) bool {
	return minimum != nil && a.File.Header.Version.Compare(*minimum) < 0
}

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Catalog archives into the SQLite database",
	Long: `Extract discovers archives below the given paths (default: the current
directory) by the configured extensions, decodes them concurrently and writes
each into the catalog database. Archives whose content is already catalogued
are skipped; an archive at a known path with new content replaces the old
entry. With --min-version, archives older than the given FRES version
(for example 3.4) are decoded but not catalogued.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := &ExtractionStats{
			StartTime: time.Now(),
		}

		var minVersion *bfres.Version
		if extractMinVersion != "" {
			v, err := bfres.ParseVersion(extractMinVersion)
			if err != nil {
				return fmt.Errorf("invalid --min-version: %w", err)
			}
			minVersion = &v
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}

		files, err := archive.Discover(paths, cfg.Extensions)
		if err != nil {
			return fmt.Errorf("discovering archives: %w", err)
		}
		if len(files) == 0 {
			slog.Info("No archives found", "paths", paths, "extensions", cfg.Extensions)
			return nil
		}
		stats.TotalFiles = len(files)

		db, err := database.NewDatabase(database.DefaultDatabaseOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("creating database: %w", err)
		}
		defer db.Close()

		ddlManager := database.NewDDLManager(db)
		if err := ddlManager.CreateSchemas(ctx, database.CatalogTables, nil); err != nil {
			return fmt.Errorf("creating schemas: %w", err)
		}

		inserter := database.NewCatalogInserter(db, slog.Default())
		hashes, err := inserter.Hashes(ctx)
		if err != nil {
			return err
		}
		known := &hashSet{hashes: hashes}

		slog.Info("Extracting archives", "count", len(files), "workers", cfg.Workers, "database", cfg.Database)

		processingStartTime := time.Now()
		progress := newProgress(len(files))
		results := runWorkers(ctx, files, cfg.Workers, newLoader(), known)

		for r := range results {
			progress.Increment(filepath.Base(r.path), r.elapsed)

			switch {
			case r.err != nil:
				slog.Error("Failed to decode archive", "path", r.path, "error", r.err)
				stats.DecodeErrors++
				continue
			case r.skipped:
				slog.Debug("Skipping catalogued archive", "path", r.path)
				stats.SkippedFiles++
				continue
			case ctx.Err() != nil:
				// Drain without writing once canceled.
				continue
			}

			if olderThan(r.archive, minVersion) {
				slog.Debug("Skipping older archive", "path", r.path, "version", r.archive.File.Header.Version)
				stats.OlderFiles++
				continue
			}

			// Identical content under another path decoded in this run.
			if known.has(r.archive.HashString()) {
				stats.SkippedFiles++
				continue
			}

			rows, err := inserter.InsertArchive(ctx, r.archive)
			if err != nil {
				slog.Error("Failed to insert archive", "path", r.path, "error", err)
				stats.DatabaseErrors++
				continue
			}
			known.add(r.archive.HashString())

			stats.ProcessedFiles++
			stats.RowsInserted += rows
			stats.BytesDecoded += r.archive.Size
		}

		progress.Finish()
		stats.EndTime = time.Now()

		printStats(stats, stats.EndTime.Sub(processingStartTime))

		if err := ctx.Err(); err != nil {
			slog.Warn("Extraction canceled")
			return fmt.Errorf("extraction canceled")
		}

		fmt.Println("Try running: fresdb query --tables")
		return nil
	},
}

// runWorkers decodes files on n goroutines. The returned channel is closed
// once every started file has a result; files not yet started when ctx is
// canceled are dropped.
func runWorkers(ctx context.Context, files []string, n int, loader *archive.Loader, known *hashSet) <-chan extractResult {
	jobs := make(chan string)
	results := make(chan extractResult)

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for range max(1, n) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- processFile(path, loader, known)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func processFile(path string, loader *archive.Loader, known *hashSet) extractResult {
	start := time.Now()
	r := extractResult{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		r.err = fmt.Errorf("reading %s: %w", path, err)
		r.elapsed = time.Since(start)
		return r
	}

	if known.has(archive.FormatHash(archive.Hash(raw))) {
		r.skipped = true
		r.elapsed = time.Since(start)
		return r
	}

	r.archive, r.err = loader.LoadBytes(path, raw)
	r.elapsed = time.Since(start)
	return r
}

func printStats(stats *ExtractionStats, processingDuration time.Duration) {
	totalDuration := stats.EndTime.Sub(stats.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fmt.Printf("Archives processed: %d/%d\n", stats.ProcessedFiles, stats.TotalFiles)
	fmt.Printf("Archives skipped: %d\n", stats.SkippedFiles)
	if stats.OlderFiles > 0 {
		fmt.Printf("Archives below minimum version: %d\n", stats.OlderFiles)
	}
	fmt.Printf("Decode errors: %d\n", stats.DecodeErrors)
	fmt.Printf("Database errors: %d\n", stats.DatabaseErrors)
	fmt.Printf("Rows inserted: %s\n", utils.Number(stats.RowsInserted))
	fmt.Printf("Data decoded: %s\n", utils.Bytes(stats.BytesDecoded))
	fmt.Printf("Total duration: %s\n", utils.Duration(totalDuration))
	fmt.Printf("Processing rate: %s archives/sec\n", utils.Rate(int64(stats.ProcessedFiles), processingDuration))
	fmt.Printf("Insertion rate: %s rows/sec\n", utils.Rate(stats.RowsInserted, processingDuration))
	fmt.Printf("Memory usage: %s\n", utils.Bytes(int64(memStats.Alloc)))
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractMinVersion, "min-version", "", "skip archives older than this FRES version")
}
