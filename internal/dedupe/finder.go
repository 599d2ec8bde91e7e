// Package dedupe finds files with identical content under a directory.
package dedupe

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fenilsonani/file-organizer/internal/logging"
	"github.com/fenilsonani/file-organizer/internal/progress"
	"github.com/fenilsonani/file-organizer/internal/scanner"
	"github.com/fenilsonani/file-organizer/pkg/utils"
)

const (
	DefaultMaxDepth   = 10
	DefaultMaxEntries = 50000
	DefaultMinSize    = 1

	// QuickHashThreshold is the size above which only the head and tail
	// of a file are hashed
	QuickHashThreshold = 10 << 20
	quickChunkSize     = 1 << 20
)

// File is one member of a duplicate group
type File struct {
	Path       string    `json:"path" yaml:"path"`
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
}

// Group is a set of files with the same size and hash. Files[0] is the
// copy to keep: the shortest path, ties broken alphabetically.
type Group struct {
	Hash  string `json:"hash" yaml:"hash"`
	Size  int64  `json:"size_bytes" yaml:"size_bytes"`
	Quick bool   `json:"quick_hash,omitempty" yaml:"quick_hash,omitempty"`
	Files []File `json:"files" yaml:"files"`
}

// Wasted returns the bytes taken by every copy except the one kept
func (g Group) Wasted() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Files)-1)
}

// TotalWasted sums Wasted over groups
func TotalWasted(groups []Group) int64 {
	var total int64
	for _, g := range groups {
		total += g.Wasted()
	}
	return total
}

// Options bounds the walk. Zero values fall back to the defaults.
type Options struct {
	MaxDepth        int
	MaxEntries      int
	MinSize         int64
	ExcludePatterns []string
	Workers         int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.MinSize <= 0 {
		o.MinSize = DefaultMinSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// Finder groups duplicate files
type Finder struct {
	fs       afero.Fs
	opts     Options
	logger   *logging.Logger
	progress *progress.Reporter
	skipped  int
}

// New creates a finder. A nil fs means the OS filesystem.
func New(fs afero.Fs, opts Options) *Finder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Finder{fs: fs, opts: opts.withDefaults()}
}

// SetLogger sets the logger
func (f *Finder) SetLogger(logger *logging.Logger) {
	f.logger = logger
}

// SetProgressReporter sets the progress reporter
func (f *Finder) SetProgressReporter(reporter *progress.Reporter) {
	f.progress = reporter
}

// Skipped returns how many entries the last Find could not read or hash
func (f *Finder) Skipped() int {
	return f.skipped
}

type candidate struct {
	entry scanner.FileEntry
	hash  uint64
	quick bool
	err   error
}

// Find walks root, groups files by size, hashes the sizes that repeat and
// returns the groups of identical files, most wasted bytes first
func (f *Finder) Find(ctx context.Context, root string) ([]Group, error) {
	tracer := otel.Tracer("dedupe")
	ctx, span := tracer.Start(ctx, "Find")
	defer span.End()
	span.SetAttributes(attribute.String("path", root))

	if _, err := scanner.CheckDir(f.fs, root); err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	f.skipped = 0
	walker := scanner.NewWalker(f.fs, scanner.WalkOptions{
		MaxDepth:        f.opts.MaxDepth,
		MaxEntries:      f.opts.MaxEntries,
		ExcludePatterns: f.opts.ExcludePatterns,
	})
	walker.SetLogger(f.logger)

	bySize := make(map[int64][]scanner.FileEntry)
	scanned := 0
	var scannedBytes int64
	for entry := range walker.Walk(root) {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		scanned++
		scannedBytes += entry.Size
		if entry.Size < f.opts.MinSize {
			continue
		}
		bySize[entry.Size] = append(bySize[entry.Size], entry)
	}
	f.skipped = walker.Skipped()

	var work []scanner.FileEntry
	for _, entries := range bySize {
		if len(entries) > 1 {
			work = append(work, entries...)
		}
	}
	f.logger.Debug("%d files scanned, %d share a size with another file", scanned, len(work))
	f.report(root, "", progress.PhaseScanning, scanned, scannedBytes, start)

	hashed, err := f.hashAll(ctx, work)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	groups := buildGroups(hashed)
	f.report(root, "", progress.PhaseComplete, scanned, scannedBytes, start)
	if f.skipped > 0 {
		f.logger.Warn("Skipped %d unreadable entries under %s", f.skipped, root)
	}

	span.SetAttributes(
		attribute.Int("files", scanned),
		attribute.Int("groups", len(groups)),
		attribute.Int64("wasted_bytes", TotalWasted(groups)),
	)
	return groups, nil
}

// hashAll hashes entries on a fixed pool of workers
func (f *Finder) hashAll(ctx context.Context, entries []scanner.FileEntry) ([]candidate, error) {
	jobs := make(chan scanner.FileEntry, len(entries))
	results := make(chan candidate, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < f.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				if err := ctx.Err(); err != nil {
					results <- candidate{entry: entry, err: err}
					continue
				}
				results <- f.hashOne(entry)
			}
		}()
	}

	for _, e := range entries {
		jobs <- e
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]candidate, 0, len(entries))
	for res := range results {
		if res.err != nil {
			if ctx.Err() == nil {
				f.skipped++
				f.logger.Debug("Skipping %s: %v", res.entry.Path, res.err)
			}
			continue
		}
		out = append(out, res)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Finder) hashOne(entry scanner.FileEntry) candidate {
	c := candidate{entry: entry}
	if entry.Size > QuickHashThreshold {
		c.quick = true
		c.hash, c.err = utils.HashFileQuick(f.fs, entry.Path, quickChunkSize)
	} else {
		c.hash, c.err = utils.HashFile(f.fs, entry.Path)
	}
	return c
}

func buildGroups(hashed []candidate) []Group {
	type key struct {
		size int64
		hash uint64
	}
	byKey := make(map[key]*Group)
	for _, c := range hashed {
		k := key{c.entry.Size, c.hash}
		g, ok := byKey[k]
		if !ok {
			g = &Group{Hash: fmt.Sprintf("%016x", c.hash), Size: c.entry.Size, Quick: c.quick}
			byKey[k] = g
		}
		g.Files = append(g.Files, File{Path: c.entry.Path, ModifiedAt: c.entry.ModifiedAt})
	}

	groups := []Group{}
	for _, g := range byKey {
		if len(g.Files) < 2 {
			continue
		}
		sort.Slice(g.Files, func(i, j int) bool {
			a, b := g.Files[i].Path, g.Files[j].Path
			if len(a) != len(b) {
				return len(a) < len(b)
			}
			return a < b
		})
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if wi, wj := groups[i].Wasted(), groups[j].Wasted(); wi != wj {
			return wi > wj
		}
		return groups[i].Files[0].Path < groups[j].Files[0].Path
	})
	return groups
}

func (f *Finder) report(root, current string, phase progress.Phase, files int, size int64, start time.Time) {
	f.progress.UpdateScanProgress(&progress.ScanProgress{
		Phase:       phase,
		Root:        root,
		CurrentPath: current,
		FilesFound:  files,
		TotalSize:   size,
		StartTime:   start,
	})
}
