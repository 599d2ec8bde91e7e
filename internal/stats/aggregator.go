// Package stats rolls a bounded directory walk up into per-category
// storage statistics.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fenilsonani/file-organizer/internal/catalog"
	"github.com/fenilsonani/file-organizer/internal/logging"
	"github.com/fenilsonani/file-organizer/internal/progress"
	"github.com/fenilsonani/file-organizer/internal/scanner"
)

const (
	DefaultMaxDepth   = 10
	DefaultMaxEntries = 50000
	DefaultTopFiles   = 15

	DefaultCategoryMaxDepth   = 10
	DefaultCategoryMaxEntries = 10000
	DefaultCategoryMaxResults = 500

	progressEvery = 250
)

var (
	// ErrInvalidDirectory is returned when the root is missing or not a directory
	ErrInvalidDirectory = errors.New("invalid directory")
	// ErrUnknownCategory is returned when a label is not in the catalog
	ErrUnknownCategory = errors.New("unknown category")
)

// CategoryStat is the rollup of one category label
type CategoryStat struct {
	Category  string `json:"category" yaml:"category"`
	Count     int    `json:"count" yaml:"count"`
	TotalSize int64  `json:"total_size_bytes" yaml:"total_size_bytes"`
}

// StorageSummary is the result of a statistics scan
type StorageSummary struct {
	Path         string              `json:"path" yaml:"path"`
	TotalSize    int64               `json:"total_size_bytes" yaml:"total_size_bytes"`
	TotalFiles   int                 `json:"total_file_count" yaml:"total_file_count"`
	Categories   []CategoryStat      `json:"categories" yaml:"categories"`
	LargestFiles []scanner.FileEntry `json:"largest_files" yaml:"largest_files"`
	Skipped      int                 `json:"skipped_entries" yaml:"skipped_entries"`
	ScanTime     time.Duration       `json:"scan_time" yaml:"scan_time"`
}

// Options bounds the walks. Zero values fall back to the defaults.
type Options struct {
	MaxDepth        int
	MaxEntries      int
	TopFiles        int
	ExcludePatterns []string

	CategoryMaxDepth   int
	CategoryMaxEntries int
	CategoryMaxResults int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.TopFiles <= 0 {
		o.TopFiles = DefaultTopFiles
	}
	if o.CategoryMaxDepth <= 0 {
		o.CategoryMaxDepth = DefaultCategoryMaxDepth
	}
	if o.CategoryMaxEntries <= 0 {
		o.CategoryMaxEntries = DefaultCategoryMaxEntries
	}
	if o.CategoryMaxResults <= 0 {
		o.CategoryMaxResults = DefaultCategoryMaxResults
	}
	return o
}

// Aggregator computes storage summaries
type Aggregator struct {
	fs       afero.Fs
	catalog  *catalog.Catalog
	opts     Options
	logger   *logging.Logger
	progress *progress.Reporter
}

// New creates an aggregator. A nil fs means the OS filesystem and a nil
// catalog means the built-in one.
func New(fs afero.Fs, cat *catalog.Catalog, opts Options) *Aggregator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Aggregator{fs: fs, catalog: cat, opts: opts.withDefaults()}
}

// SetLogger sets the logger
func (a *Aggregator) SetLogger(logger *logging.Logger) {
	a.logger = logger
}

// SetProgressReporter sets the progress reporter
func (a *Aggregator) SetProgressReporter(reporter *progress.Reporter) {
	a.progress = reporter
}

// Aggregate walks root once and returns per-category totals plus the
// largest files seen
func (a *Aggregator) Aggregate(ctx context.Context, root string) (*StorageSummary, error) {
	tracer := otel.Tracer("stats")
	ctx, span := tracer.Start(ctx, "Aggregate")
	defer span.End()
	span.SetAttributes(attribute.String("path", root))

	if err := a.checkRoot(root); err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	walker := scanner.NewWalker(a.fs, scanner.WalkOptions{
		MaxDepth:        a.opts.MaxDepth,
		MaxEntries:      a.opts.MaxEntries,
		ExcludePatterns: a.opts.ExcludePatterns,
	})
	walker.SetLogger(a.logger)

	summary := &StorageSummary{Path: root}
	byLabel := make(map[string]*CategoryStat)
	top := NewTopK(a.opts.TopFiles)

	a.reportScan(root, "", summary, progress.PhaseScanning, start)
	for entry := range walker.Walk(root) {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}

		label := a.catalog.CategoryFor(entry.Extension)
		stat, ok := byLabel[label]
		if !ok {
			stat = &CategoryStat{Category: label}
			byLabel[label] = stat
		}
		stat.Count++
		stat.TotalSize += entry.Size

		summary.TotalFiles++
		summary.TotalSize += entry.Size
		top.Offer(entry)

		if summary.TotalFiles%progressEvery == 0 {
			a.reportScan(root, entry.Path, summary, progress.PhaseScanning, start)
		}
	}

	summary.Categories = sortedStats(byLabel)
	summary.LargestFiles = top.Sorted()
	summary.Skipped = walker.Skipped()
	summary.ScanTime = time.Since(start)

	if summary.Skipped > 0 {
		a.logger.Warn("Skipped %d unreadable entries under %s", summary.Skipped, root)
	}
	if summary.TotalFiles >= a.opts.MaxEntries {
		a.logger.Info("Scan of %s stopped at the %d file limit", root, a.opts.MaxEntries)
	}
	a.reportScan(root, "", summary, progress.PhaseComplete, start)

	span.SetAttributes(
		attribute.Int("files", summary.TotalFiles),
		attribute.Int64("bytes", summary.TotalSize),
		attribute.Int("categories", len(summary.Categories)),
	)
	return summary, nil
}

// FilesInCategory returns the files under root whose extension maps to
// label, in walk order
func (a *Aggregator) FilesInCategory(ctx context.Context, root, label string) ([]scanner.FileEntry, error) {
	tracer := otel.Tracer("stats")
	ctx, span := tracer.Start(ctx, "FilesInCategory")
	defer span.End()
	span.SetAttributes(attribute.String("path", root), attribute.String("category", label))

	if !a.hasLabel(label) {
		err := fmt.Errorf("%w: %q", ErrUnknownCategory, label)
		span.RecordError(err)
		return nil, err
	}
	if err := a.checkRoot(root); err != nil {
		span.RecordError(err)
		return nil, err
	}

	walker := scanner.NewWalker(a.fs, scanner.WalkOptions{
		MaxDepth:        a.opts.CategoryMaxDepth,
		MaxEntries:      a.opts.CategoryMaxEntries,
		ExcludePatterns: a.opts.ExcludePatterns,
	})
	walker.SetLogger(a.logger)

	files := []scanner.FileEntry{}
	for entry := range walker.Walk(root) {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		if a.catalog.CategoryFor(entry.Extension) != label {
			continue
		}
		entry.Index = len(files)
		files = append(files, entry)
		if len(files) >= a.opts.CategoryMaxResults {
			break
		}
	}

	span.SetAttributes(attribute.Int("files", len(files)))
	return files, nil
}

func (a *Aggregator) checkRoot(root string) error {
	if _, err := scanner.CheckDir(a.fs, root); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDirectory, err)
	}
	return nil
}

func (a *Aggregator) hasLabel(label string) bool {
	for _, l := range a.catalog.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

func (a *Aggregator) reportScan(root, current string, s *StorageSummary, phase progress.Phase, start time.Time) {
	a.progress.UpdateScanProgress(&progress.ScanProgress{
		Phase:       phase,
		Root:        root,
		CurrentPath: current,
		FilesFound:  s.TotalFiles,
		TotalSize:   s.TotalSize,
		StartTime:   start,
	})
}

// sortedStats orders categories by total size descending, then label
func sortedStats(byLabel map[string]*CategoryStat) []CategoryStat {
	out := make([]CategoryStat, 0, len(byLabel))
	for _, s := range byLabel {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSize != out[j].TotalSize {
			return out[i].TotalSize > out[j].TotalSize
		}
		return out[i].Category < out[j].Category
	})
	return out
}
