package scanner

import (
	"iter"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/fenilsonani/file-organizer/internal/logging"
)

// WalkOptions bounds a recursive walk. Zero values mean no limit.
type WalkOptions struct {
	// MaxDepth is the deepest level yielded; files directly in the root are depth 1
	MaxDepth int
	// MaxEntries caps the number of files yielded
	MaxEntries int
	// ExcludePatterns are globs matched against directory names to prune
	ExcludePatterns []string
}

// Walker lazily enumerates regular files below a root.
// A Walker must not run two walks at the same time.
type Walker struct {
	fs      afero.Fs
	opts    WalkOptions
	logger  *logging.Logger
	skipped int
}

// NewWalker creates a walker over fs. A nil fs means the OS filesystem.
func NewWalker(fs afero.Fs, opts WalkOptions) *Walker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Walker{fs: fs, opts: opts}
}

// SetLogger sets the logger used for swallowed errors
func (w *Walker) SetLogger(logger *logging.Logger) {
	w.logger = logger
}

// Skipped returns how many unreadable entries the last walk passed over
func (w *Walker) Skipped() int {
	return w.skipped
}

// Walk yields the regular files under root, depth-first in lexical order.
// Hidden entries are pruned, symlinks are not followed and unreadable
// entries are skipped. Reading stops as soon as the consumer stops ranging.
func (w *Walker) Walk(root string) iter.Seq[FileEntry] {
	return func(yield func(FileEntry) bool) {
		w.skipped = 0
		root = filepath.Clean(root)

		info, err := w.fs.Stat(root)
		if err != nil || !info.IsDir() {
			w.skip(root, err)
			return
		}

		st := &walkState{yield: yield}
		w.walkDir(root, 1, st)
	}
}

type walkState struct {
	yield   func(FileEntry) bool
	yielded int
	stopped bool
}

// walkDir visits the children of dir, which sit at the given depth
func (w *Walker) walkDir(dir string, depth int, st *walkState) {
	names, err := readDirNames(w.fs, dir)
	if err != nil {
		w.skip(dir, err)
		return
	}

	for _, name := range names {
		if st.stopped {
			return
		}
		if IsHidden(name) {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := w.lstat(path)
		if err != nil {
			w.skip(path, err)
			continue
		}

		switch {
		case info.IsDir():
			if w.excluded(name) {
				continue
			}
			if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
				continue
			}
			w.walkDir(path, depth+1, st)

		case info.Mode().IsRegular():
			if !st.yield(newEntry(path, info)) {
				st.stopped = true
				return
			}
			st.yielded++
			if w.opts.MaxEntries > 0 && st.yielded >= w.opts.MaxEntries {
				st.stopped = true
				return
			}
		}
	}
}

func (w *Walker) lstat(path string) (os.FileInfo, error) {
	if lst, ok := w.fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(path)
		return info, err
	}
	return w.fs.Stat(path)
}

func (w *Walker) excluded(name string) bool {
	for _, pattern := range w.opts.ExcludePatterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Walker) skip(path string, err error) {
	w.skipped++
	if err != nil {
		w.logger.Debug("Skipping %s: %v", path, err)
	}
}
