// Package testutil provides test helpers and fixtures for organizer tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// TestFixture holds paths to test directories and files
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)

	// Standard test directories
	SourceDir string // messy folder being organized
	DestDir   string // organized output root
}

// NewFixture creates a new test fixture with a source and destination directory
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()

	f := &TestFixture{
		T:         t,
		RootDir:   root,
		SourceDir: filepath.Join(root, "source"),
		DestDir:   filepath.Join(root, "organized"),
	}

	for _, dir := range []string{f.SourceDir, f.DestDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return f
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateSizedFile creates a zero-filled file of size bytes
func (f *TestFixture) CreateSizedFile(relPath string, size int) string {
	f.T.Helper()
	return f.CreateFile(relPath, make([]byte, size))
}

// CreateSourceFile creates a file under the source directory
func (f *TestFixture) CreateSourceFile(name string, content []byte) string {
	f.T.Helper()
	return f.CreateFile(filepath.Join("source", name), content)
}

// PopulateDownloads fills the source directory with a typical mix of files
// and returns their paths keyed by name
func (f *TestFixture) PopulateDownloads() map[string]string {
	f.T.Helper()

	files := map[string]int{
		"photo.jpg":        4096,
		"holiday.PNG":      2048,
		"report.pdf":       1024,
		"notes.txt":        128,
		"song.mp3":         8192,
		"archive.zip":      512,
		"main.go":          256,
		"budget.xlsx":      300,
		"unknown.xyz":      10,
		"projects/a.py":    64,
		"projects/b/c.rs":  32,
		".hidden/secret":   16,
		".dotfile":         8,
		"projects/.env":    8,
		"deep/1/2/3/x.log": 1,
	}

	paths := make(map[string]string, len(files))
	for name, size := range files {
		paths[name] = f.CreateSizedFile(filepath.Join("source", name), size)
	}
	return paths
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateNestedDirs creates a chain of depth directories under relPath,
// each holding one file, and returns the deepest directory
func (f *TestFixture) CreateNestedDirs(relPath string, depth int) string {
	f.T.Helper()

	dir := relPath
	for i := 1; i <= depth; i++ {
		dir = filepath.Join(dir, fmt.Sprintf("level%d", i))
		f.CreateFile(filepath.Join(dir, fmt.Sprintf("file%d.txt", i)), []byte("x"))
	}
	return filepath.Join(f.RootDir, dir)
}

// CreateReadOnlyDir creates a read-only directory (files inside can't be moved)
func (f *TestFixture) CreateReadOnlyDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	f.CreateFile(filepath.Join(relPath, "trapped.txt"), []byte("trapped"))
	if err := os.Chmod(dirPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	// Restore permissions so TempDir cleanup works
	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// =============================================================================
// Symlink Helpers
// =============================================================================

// CreateSymlink creates a symbolic link
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := filepath.Join(f.RootDir, linkPath)
	dir := filepath.Dir(fullLinkPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Fatalf("failed to create symlink %s -> %s: %v", fullLinkPath, target, err)
	}

	return fullLinkPath
}

// CreateBrokenSymlink creates a symlink pointing to a non-existent target
func (f *TestFixture) CreateBrokenSymlink(linkPath string) string {
	f.T.Helper()
	return f.CreateSymlink("/nonexistent/target/"+randomString(8), linkPath)
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// DestPath returns the full path for a relative path within the destination
func (f *TestFixture) DestPath(relPath string) string {
	return filepath.Join(f.DestDir, relPath)
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// AssertFileContent fails if path does not hold exactly want
func (f *TestFixture) AssertFileContent(path string, want []byte) {
	f.T.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		f.T.Errorf("failed to read %s: %v", path, err)
		return
	}
	if string(got) != string(want) {
		f.T.Errorf("file %s has content %q, want %q", path, got, want)
	}
}

// ListNames returns the sorted names inside dir
func (f *TestFixture) ListNames(dir string) []string {
	f.T.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		f.T.Fatalf("failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Utility Functions
// =============================================================================

// IsRoot returns true if running as root/admin
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}

// randomString generates a random string of specified length
func randomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return fmt.Sprintf("%x", b)[:length]
}
