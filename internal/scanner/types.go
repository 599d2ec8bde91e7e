package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileEntry represents a single directory entry or walked file
type FileEntry struct {
	Index       int       `json:"index" yaml:"index"`
	Name        string    `json:"name" yaml:"name"`
	Path        string    `json:"path" yaml:"path"`
	IsDirectory bool      `json:"is_directory" yaml:"is_directory"`
	Size        int64     `json:"size_bytes" yaml:"size_bytes"`
	ModifiedAt  time.Time `json:"modified_at" yaml:"modified_at"`
	Extension   string    `json:"extension" yaml:"extension"`
}

// HasModTime reports whether the modification time could be read
func (e FileEntry) HasModTime() bool {
	return !e.ModifiedAt.IsZero()
}

// Listing is the sorted content of one directory
type Listing struct {
	Path         string      `json:"path" yaml:"path"`
	Files        []FileEntry `json:"files" yaml:"files"`
	TotalFiles   int         `json:"total_files" yaml:"total_files"`
	TotalFolders int         `json:"total_folders" yaml:"total_folders"`
}

// FolderNode is one subdirectory in a folder tree view
type FolderNode struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	HasChildren bool   `json:"has_children" yaml:"has_children"`
}

// IsHidden reports whether name is a dot entry
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ExtensionOf returns the extension of name without the dot, case preserved
func ExtensionOf(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

func newEntry(path string, info os.FileInfo) FileEntry {
	e := FileEntry{
		Name:        info.Name(),
		Path:        path,
		IsDirectory: info.IsDir(),
		ModifiedAt:  info.ModTime(),
	}
	if !e.IsDirectory {
		e.Size = info.Size()
		e.Extension = ExtensionOf(e.Name)
	}
	return e
}
