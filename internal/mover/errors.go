package mover

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fenilsonani/file-organizer/internal/security"
)

// ErrorReason categorizes why a move failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorSourceNotFound
	ErrorInvalidDestination
	ErrorCrossDevice
	ErrorDestinationExists
	ErrorNoSpace
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorSourceNotFound:
		return "Source not found"
	case ErrorInvalidDestination:
		return "Invalid destination"
	case ErrorCrossDevice:
		return "Cross-device move"
	case ErrorDestinationExists:
		return "Destination exists"
	case ErrorNoSpace:
		return "No space left"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// MoveError represents a detailed move failure
type MoveError struct {
	Source      string
	Destination string
	Op          string
	Reason      ErrorReason
	Original    error
}

// Error implements the error interface
func (e *MoveError) Error() string {
	if e.Destination == "" {
		return fmt.Sprintf("%s %s: %s (%v)", e.Op, e.Source, e.Reason, e.Original)
	}
	return fmt.Sprintf("%s %s -> %s: %s (%v)", e.Op, e.Source, e.Destination, e.Reason, e.Original)
}

func (e *MoveError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *MoveError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("⚠️  Permission denied: %s", e.Source)
	case ErrorSourceNotFound:
		return fmt.Sprintf("ℹ️  No longer exists: %s", e.Source)
	case ErrorInvalidDestination:
		return fmt.Sprintf("❌ Invalid destination for %s: %v", e.Source, e.Original)
	case ErrorCrossDevice:
		return fmt.Sprintf("⚠️  Could not copy across devices: %s", e.Source)
	case ErrorDestinationExists:
		return fmt.Sprintf("⚠️  Destination appeared while moving: %s", e.Destination)
	case ErrorNoSpace:
		return fmt.Sprintf("⚠️  Destination is full: %s", e.Destination)
	default:
		return fmt.Sprintf("❌ Error moving %s: %v", e.Source, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized MoveError
func CategorizeError(op, source, destination string, err error) *MoveError {
	if err == nil {
		return nil
	}

	moveErr := &MoveError{
		Source:      source,
		Destination: destination,
		Op:          op,
		Original:    err,
		Reason:      ErrorUnknown,
	}

	if errors.Is(err, security.ErrUnsafePath) {
		moveErr.Reason = ErrorInvalidDestination
		return moveErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM, syscall.EROFS:
			moveErr.Reason = ErrorPermissionDenied
		case syscall.ENOENT:
			moveErr.Reason = ErrorSourceNotFound
		case syscall.EXDEV:
			moveErr.Reason = ErrorCrossDevice
		case syscall.EEXIST:
			moveErr.Reason = ErrorDestinationExists
		case syscall.ENOSPC:
			moveErr.Reason = ErrorNoSpace
		case syscall.ENOTDIR, syscall.EISDIR, syscall.ENAMETOOLONG:
			moveErr.Reason = ErrorInvalidDestination
		}
		return moveErr
	}

	switch {
	case os.IsNotExist(err):
		moveErr.Reason = ErrorSourceNotFound
	case os.IsPermission(err):
		moveErr.Reason = ErrorPermissionDenied
	case os.IsExist(err):
		moveErr.Reason = ErrorDestinationExists
	}
	return moveErr
}

// GroupErrors groups move errors by reason
func GroupErrors(errs []*MoveError) map[ErrorReason][]*MoveError {
	grouped := make(map[ErrorReason][]*MoveError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errs []*MoveError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	var b strings.Builder
	b.WriteString("\n⚠️  Issues encountered:\n")

	if perms, ok := grouped[ErrorPermissionDenied]; ok {
		fmt.Fprintf(&b, "   ├─ Permission denied: %d files\n", len(perms))
		b.WriteString("   │  └─ Tip: Check ownership of the source and destination folders\n")
	}
	if missing, ok := grouped[ErrorSourceNotFound]; ok {
		fmt.Fprintf(&b, "   ├─ Source missing: %d files\n", len(missing))
		b.WriteString("   │  └─ Tip: Re-run analyze, the plan is older than the folder\n")
	}
	if invalid, ok := grouped[ErrorInvalidDestination]; ok {
		fmt.Fprintf(&b, "   ├─ Invalid destination: %d files\n", len(invalid))
	}
	if xdev, ok := grouped[ErrorCrossDevice]; ok {
		fmt.Fprintf(&b, "   ├─ Cross-device copy failed: %d files\n", len(xdev))
	}
	if exists, ok := grouped[ErrorDestinationExists]; ok {
		fmt.Fprintf(&b, "   ├─ Destination taken: %d files\n", len(exists))
	}
	if full, ok := grouped[ErrorNoSpace]; ok {
		fmt.Fprintf(&b, "   ├─ Disk full: %d files\n", len(full))
	}
	if unknown, ok := grouped[ErrorUnknown]; ok {
		fmt.Fprintf(&b, "   └─ Other errors: %d files\n", len(unknown))
	}

	return b.String()
}
