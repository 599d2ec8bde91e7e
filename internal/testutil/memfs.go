package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// NewMemFs returns an in-memory filesystem holding files (path -> content).
// Parent directories are created as needed.
func NewMemFs(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, content, 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", path, err)
		}
	}
	return fs
}

// SetModTime sets the modification time of path on fs
func SetModTime(t *testing.T, fs afero.Fs, path string, mtime time.Time) {
	t.Helper()
	if err := fs.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set time for %s: %v", path, err)
	}
}

// FaultyFs wraps an afero.Fs and injects errors into selected operations.
// Errors are keyed by path; RenameErr applies to every rename.
type FaultyFs struct {
	afero.Fs

	mu        sync.Mutex
	RenameErr error
	RemoveErr map[string]error
	StatErr   map[string]error
	CreateErr map[string]error
}

// NewFaultyFs wraps base
func NewFaultyFs(base afero.Fs) *FaultyFs {
	return &FaultyFs{
		Fs:        base,
		RemoveErr: make(map[string]error),
		StatErr:   make(map[string]error),
		CreateErr: make(map[string]error),
	}
}

// FailRenames makes every Rename return a link error wrapping err
func (f *FaultyFs) FailRenames(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RenameErr = err
}

// FailRemove makes Remove(path) return err
func (f *FaultyFs) FailRemove(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoveErr[path] = err
}

// FailStat makes Stat(path) return err
func (f *FaultyFs) FailStat(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatErr[path] = err
}

// FailCreate makes OpenFile(path) with O_CREATE return err
func (f *FaultyFs) FailCreate(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateErr[path] = err
}

func (f *FaultyFs) Rename(oldname, newname string) error {
	f.mu.Lock()
	err := f.RenameErr
	f.mu.Unlock()
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *FaultyFs) Remove(name string) error {
	f.mu.Lock()
	err := f.RemoveErr[name]
	f.mu.Unlock()
	if err != nil {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	return f.Fs.Remove(name)
}

func (f *FaultyFs) Stat(name string) (os.FileInfo, error) {
	f.mu.Lock()
	err := f.StatErr[name]
	f.mu.Unlock()
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	return f.Fs.Stat(name)
}

func (f *FaultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 {
		f.mu.Lock()
		err := f.CreateErr[name]
		f.mu.Unlock()
		if err != nil {
			return nil, &os.PathError{Op: "open", Path: name, Err: err}
		}
	}
	return f.Fs.OpenFile(name, flag, perm)
}
