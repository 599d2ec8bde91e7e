package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is wrapped by every validation failure in this package
var ErrUnsafePath = errors.New("unsafe path")

// PathValidator guards destination roots against system directories
type PathValidator struct {
	protectedPaths []string
}

// NewPathValidator creates a new PathValidator with default protected paths
func NewPathValidator() *PathValidator {
	return &PathValidator{
		protectedPaths: []string{
			// Unix system directories
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib64",
			"/proc",
			"/sbin",
			"/sys",
			"/usr",
			"/var",
			// macOS system directories
			"/System",
			"/Applications",
			"/Library/System",
		},
	}
}

// ValidateDestinationRoot checks that files may be moved into root
func (pv *PathValidator) ValidateDestinationRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: destination is empty", ErrUnsafePath)
	}
	if !filepath.IsAbs(root) {
		return fmt.Errorf("%w: destination must be absolute: %s", ErrUnsafePath, root)
	}
	if strings.ContainsRune(root, 0) {
		return fmt.Errorf("%w: destination contains a null byte", ErrUnsafePath)
	}

	clean := filepath.Clean(root)
	for _, protected := range pv.protectedPaths {
		if clean == protected {
			return fmt.Errorf("%w: refusing to write into protected path: %s", ErrUnsafePath, clean)
		}
		// Only the first level below a protected directory is refused:
		// /usr/share is off limits, /usr/local/share/organized is not
		if strings.HasPrefix(clean, protected+"/") {
			rel, _ := filepath.Rel(protected, clean)
			if !strings.Contains(rel, "/") {
				return fmt.Errorf("%w: refusing to write into critical system path: %s", ErrUnsafePath, clean)
			}
		}
	}
	return nil
}

// IsProtectedPath checks if a path is a protected system path
func (pv *PathValidator) IsProtectedPath(path string) bool {
	cleanPath := filepath.Clean(path)
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return true
		}
		if protected != "/" && strings.HasPrefix(cleanPath, protected+"/") {
			return true
		}
	}
	return false
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	pv.protectedPaths = append(pv.protectedPaths, filepath.Clean(path))
}

// ValidateFolder checks a destination sub-folder. It must be relative and
// must not climb out of the destination root. Empty means the root itself.
func ValidateFolder(folder string) error {
	if strings.ContainsRune(folder, 0) {
		return fmt.Errorf("%w: folder contains a null byte", ErrUnsafePath)
	}
	if folder == "" {
		return nil
	}
	if filepath.IsAbs(folder) || strings.HasPrefix(folder, "/") {
		return fmt.Errorf("%w: folder must be relative: %s", ErrUnsafePath, folder)
	}

	if !Within(".", folder) {
		return fmt.Errorf("%w: folder escapes the destination: %s", ErrUnsafePath, folder)
	}
	return nil
}

// ValidateFileName checks that name is a single path element
func ValidateFileName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: file name is empty", ErrUnsafePath)
	case name == "." || name == "..":
		return fmt.Errorf("%w: invalid file name: %s", ErrUnsafePath, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: file name contains a null byte", ErrUnsafePath)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: file name contains a path separator: %s", ErrUnsafePath, name)
	}
	return nil
}

// Within reports whether path is root or lies below it
func Within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ValidateGlobPattern validates that a glob pattern is safe
func ValidateGlobPattern(pattern string) error {
	if strings.Contains(pattern, "..") {
		return fmt.Errorf("glob pattern contains directory traversal: %s", pattern)
	}

	if _, err := filepath.Match(pattern, "test"); err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}

	return nil
}
