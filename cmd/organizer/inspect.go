package main

import (
	"context"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/file-organizer/internal/dedupe"
	"github.com/fenilsonani/file-organizer/internal/scanner"
	"github.com/fenilsonani/file-organizer/internal/stats"
	"github.com/fenilsonani/file-organizer/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list <dir>",
	Short: "List the entries of a directory",
	Long: heredoc.Doc(`
		Lists the immediate entries of a directory: directories first, then
		files, each group sorted by name. Hidden entries are included.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lister := scanner.NewLister(current.fs)
		lister.SetLogger(current.logger)

		listing, err := lister.List(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return current.reporter.Listing(listing)
	},
}

var foldersCmd = &cobra.Command{
	Use:   "folders <dir>",
	Short: "List the visible subfolders of a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lister := scanner.NewLister(current.fs)
		lister.SetLogger(current.logger)

		nodes, err := lister.Folders(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return current.reporter.Folders(args[0], nodes)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <dir>",
	Short: "Summarize storage by file category",
	Long: heredoc.Doc(`
		Walks a directory tree and reports file counts and sizes per category
		along with the largest files found.

		Hidden files and folders are skipped. The walk is bounded by the
		scan.max_depth and scan.max_entries settings.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := newAggregator()

		var summary *stats.StorageSummary
		err := ui.RunWithSpinner(cmd.Context(), os.Stderr, "Scanning "+args[0], current.progress, func(ctx context.Context) error {
			var err error
			summary, err = agg.Aggregate(ctx, args[0])
			return err
		})
		if err != nil {
			return err
		}
		return current.reporter.Storage(summary)
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category <dir> <label>",
	Short: "List the files of one category",
	Long: heredoc.Doc(`
		Lists the files under a directory whose extension belongs to a
		category. Run 'organizer categories' to see the labels.
	`),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := newAggregator()

		var files []scanner.FileEntry
		err := ui.RunWithSpinner(cmd.Context(), os.Stderr, "Collecting "+args[1], current.progress, func(ctx context.Context) error {
			var err error
			files, err = agg.FilesInCategory(ctx, args[0], args[1])
			return err
		})
		if err != nil {
			return err
		}
		return current.reporter.CategoryFiles(args[0], args[1], files)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the extension table used to categorize files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.reporter.Categories(current.catalog)
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates <dir>",
	Short: "Find files with identical content",
	Long: heredoc.Doc(`
		Finds groups of files with identical content under a directory.
		Files are grouped by size first and only same-size files are hashed.
		Files above 10 MiB are compared by their size, first and last
		megabyte.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg
		minSize, err := cfg.Duplicates.MinSizeBytes()
		if err != nil {
			return err
		}

		finder := dedupe.New(current.fs, dedupe.Options{
			MaxDepth:        cfg.Scan.MaxDepth,
			MaxEntries:      cfg.Scan.MaxEntries,
			MinSize:         minSize,
			ExcludePatterns: cfg.Scan.ExcludePatterns,
			Workers:         cfg.Duplicates.Workers,
		})
		finder.SetLogger(current.logger)
		finder.SetProgressReporter(current.progress)

		var groups []dedupe.Group
		err = ui.RunWithSpinner(cmd.Context(), os.Stderr, "Looking for duplicates in "+args[0], current.progress, func(ctx context.Context) error {
			var err error
			groups, err = finder.Find(ctx, args[0])
			return err
		})
		if err != nil {
			return err
		}
		return current.reporter.Duplicates(args[0], groups)
	},
}

func newAggregator() *stats.Aggregator {
	cfg := current.cfg
	agg := stats.New(current.fs, current.catalog, stats.Options{
		MaxDepth:           cfg.Scan.MaxDepth,
		MaxEntries:         cfg.Scan.MaxEntries,
		TopFiles:           cfg.Scan.TopFiles,
		ExcludePatterns:    cfg.Scan.ExcludePatterns,
		CategoryMaxDepth:   cfg.CategoryListing.MaxDepth,
		CategoryMaxEntries: cfg.CategoryListing.MaxEntries,
		CategoryMaxResults: cfg.CategoryListing.MaxResults,
	})
	agg.SetLogger(current.logger)
	agg.SetProgressReporter(current.progress)
	return agg
}
