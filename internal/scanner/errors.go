package scanner

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when the requested path does not exist
	ErrNotFound = errors.New("path not found")
	// ErrNotADirectory is returned when the path exists but is not a directory
	ErrNotADirectory = errors.New("not a directory")
	// ErrReadError is returned when the directory exists but cannot be read
	ErrReadError = errors.New("cannot read directory")
)

// PathError records the failed operation, the path and the kind of failure
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the sentinel kind and the underlying OS error
func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// CheckDir verifies that dir exists and is a directory, following symlinks
func CheckDir(fs afero.Fs, dir string) (os.FileInfo, error) {
	info, err := fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PathError{Op: "stat", Path: dir, Kind: ErrNotFound}
		}
		return nil, &PathError{Op: "stat", Path: dir, Kind: ErrReadError, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathError{Op: "stat", Path: dir, Kind: ErrNotADirectory}
	}
	return info, nil
}
