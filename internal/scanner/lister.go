package scanner

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fenilsonani/file-organizer/internal/logging"
)

// Lister reads single directories without recursing
type Lister struct {
	fs     afero.Fs
	logger *logging.Logger
}

// NewLister creates a lister over fs. A nil fs means the OS filesystem.
func NewLister(fs afero.Fs) *Lister {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Lister{fs: fs}
}

// SetLogger sets the logger used for skipped entries
func (l *Lister) SetLogger(logger *logging.Logger) {
	l.logger = logger
}

// List returns the visible entries of dir, directories first, then by
// case-insensitive name. Entries whose metadata cannot be read are kept
// with zero size and an unknown modification time.
func (l *Lister) List(ctx context.Context, dir string) (*Listing, error) {
	tracer := otel.Tracer("scanner")
	_, span := tracer.Start(ctx, "List")
	defer span.End()
	span.SetAttributes(attribute.String("path", dir))

	if _, err := CheckDir(l.fs, dir); err != nil {
		span.RecordError(err)
		return nil, err
	}

	names, err := readDirNames(l.fs, dir)
	if err != nil {
		err = &PathError{Op: "readdir", Path: dir, Kind: ErrReadError, Err: err}
		span.RecordError(err)
		return nil, err
	}

	listing := &Listing{Path: dir, Files: make([]FileEntry, 0, len(names))}
	for _, name := range names {
		if IsHidden(name) {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := l.fs.Stat(path)
		if err != nil {
			l.logger.Debug("Cannot read metadata for %s: %v", path, err)
			listing.Files = append(listing.Files, FileEntry{
				Name:      name,
				Path:      path,
				Extension: ExtensionOf(name),
			})
			continue
		}

		entry := newEntry(path, info)
		entry.Name = name
		listing.Files = append(listing.Files, entry)
	}

	sortEntries(listing.Files)
	for i := range listing.Files {
		listing.Files[i].Index = i
		if listing.Files[i].IsDirectory {
			listing.TotalFolders++
		} else {
			listing.TotalFiles++
		}
	}

	span.SetAttributes(
		attribute.Int("files", listing.TotalFiles),
		attribute.Int("folders", listing.TotalFolders),
	)
	return listing, nil
}

// Folders returns the visible subdirectories of dir for a folder tree view.
// A missing or non-directory path yields an empty list.
func (l *Lister) Folders(ctx context.Context, dir string) ([]FolderNode, error) {
	tracer := otel.Tracer("scanner")
	_, span := tracer.Start(ctx, "Folders")
	defer span.End()
	span.SetAttributes(attribute.String("path", dir))

	folders := []FolderNode{}
	if _, err := CheckDir(l.fs, dir); err != nil {
		return folders, nil
	}

	names, err := readDirNames(l.fs, dir)
	if err != nil {
		l.logger.Debug("Cannot read %s: %v", dir, err)
		return folders, nil
	}

	for _, name := range names {
		if IsHidden(name) {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := l.fs.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		folders = append(folders, FolderNode{
			Name:        name,
			Path:        path,
			HasChildren: l.hasSubdirectory(path),
		})
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return lessName(folders[i].Name, folders[j].Name)
	})
	return folders, nil
}

func (l *Lister) hasSubdirectory(dir string) bool {
	names, err := readDirNames(l.fs, dir)
	if err != nil {
		return false
	}
	for _, name := range names {
		if IsHidden(name) {
			continue
		}
		if info, err := l.fs.Stat(filepath.Join(dir, name)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// readDirNames returns the names in dir in lexical order
func readDirNames(fs afero.Fs, dir string) ([]string, error) {
	f, err := fs.Open(dir)
	if err != nil {
		return nil, err
	}
	names, err := f.Readdirnames(-1)
	f.Close()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func sortEntries(entries []FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		return lessName(a.Name, b.Name)
	})
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
