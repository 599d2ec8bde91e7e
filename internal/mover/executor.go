// Package mover relocates files into category folders under a destination
// root, picking collision-free names and falling back to copy+delete when
// a rename is not possible.
package mover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fenilsonani/file-organizer/internal/logging"
	"github.com/fenilsonani/file-organizer/internal/progress"
	"github.com/fenilsonani/file-organizer/internal/security"
)

// Decision is one planned relocation
type Decision struct {
	SourcePath    string  `json:"source_path" yaml:"source_path"`
	TargetFolder  string  `json:"target_folder" yaml:"target_folder"`
	SuggestedName *string `json:"suggested_name,omitempty" yaml:"suggested_name,omitempty"`
	Apply         bool    `json:"apply" yaml:"apply"`
}

// Move records where a file ended up
type Move struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Copied      bool   `json:"copied,omitempty" yaml:"copied,omitempty"`
	SourceKept  bool   `json:"source_kept,omitempty" yaml:"source_kept,omitempty"`
}

// Outcome tallies a batch. Successful, Failed and Skipped always add up to
// the number of decisions; Partial counts the successes whose source could
// not be removed after copying.
type Outcome struct {
	Successful int          `json:"successful" yaml:"successful"`
	Failed     int          `json:"failed" yaml:"failed"`
	Skipped    int          `json:"skipped" yaml:"skipped"`
	Partial    int          `json:"partial" yaml:"partial"`
	DryRun     bool         `json:"dry_run" yaml:"dry_run"`
	Moves      []Move       `json:"moves" yaml:"moves"`
	Errors     []*MoveError `json:"-" yaml:"-"`
}

// Total returns the number of decisions processed
func (o Outcome) Total() int {
	return o.Successful + o.Failed + o.Skipped
}

type itemStatus int

const (
	statusSkipped itemStatus = iota
	statusMoved
	statusFailed
)

// Executor applies move decisions
type Executor struct {
	fs       afero.Fs
	dryRun   bool
	logger   *logging.Logger
	progress *progress.Reporter
}

// New creates an executor over fs. A nil fs means the OS filesystem.
func New(fs afero.Fs) *Executor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Executor{fs: fs}
}

// SetDryRun makes Execute resolve destinations without touching the filesystem
func (e *Executor) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// SetLogger sets the logger
func (e *Executor) SetLogger(logger *logging.Logger) {
	e.logger = logger
}

// SetProgressReporter sets the progress reporter
func (e *Executor) SetProgressReporter(reporter *progress.Reporter) {
	e.progress = reporter
}

// Execute processes decisions in order. Failures are counted and the batch
// continues; nothing already moved is rolled back.
func (e *Executor) Execute(ctx context.Context, destRoot string, decisions []Decision, applyRenaming bool) Outcome {
	tracer := otel.Tracer("mover")
	_, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("destination", destRoot),
		attribute.Int("decisions", len(decisions)),
		attribute.Bool("apply_renaming", applyRenaming),
		attribute.Bool("dry_run", e.dryRun),
	)

	out := Outcome{DryRun: e.dryRun, Moves: []Move{}}
	start := time.Now()
	// Dry runs create nothing, so destinations handed out earlier in the
	// batch are remembered here to keep them distinct
	claimed := make(map[string]bool)

	for i, d := range decisions {
		e.reportMove(progress.PhaseMoving, d.SourcePath, i, len(decisions), out, start)

		status, mv, moveErr := e.moveOne(destRoot, d, applyRenaming, claimed)
		switch status {
		case statusSkipped:
			out.Skipped++
		case statusMoved:
			out.Successful++
			if mv.SourceKept {
				out.Partial++
			}
			out.Moves = append(out.Moves, mv)
		case statusFailed:
			out.Failed++
			out.Errors = append(out.Errors, moveErr)
			e.logger.Error("Failed to move %s: %v", d.SourcePath, moveErr)
		}
	}

	e.reportMove(progress.PhaseComplete, "", len(decisions), len(decisions), out, start)
	e.logger.Info("Move complete: %d successful, %d failed, %d skipped", out.Successful, out.Failed, out.Skipped)

	span.SetAttributes(
		attribute.Int("successful", out.Successful),
		attribute.Int("failed", out.Failed),
		attribute.Int("skipped", out.Skipped),
		attribute.Int("partial", out.Partial),
	)
	return out
}

func (e *Executor) moveOne(destRoot string, d Decision, applyRenaming bool, claimed map[string]bool) (itemStatus, Move, *MoveError) {
	if !d.Apply {
		return statusSkipped, Move{}, nil
	}

	src := d.SourcePath
	info, err := e.fs.Stat(src)
	if err != nil {
		return statusFailed, Move{}, CategorizeError("stat", src, "", err)
	}

	if err := security.ValidateFolder(d.TargetFolder); err != nil {
		return statusFailed, Move{}, invalidDestination("validate", src, "", err)
	}
	name := filepath.Base(src)
	if applyRenaming && d.SuggestedName != nil && *d.SuggestedName != "" {
		name = *d.SuggestedName
		if err := security.ValidateFileName(name); err != nil {
			return statusFailed, Move{}, invalidDestination("validate", src, "", err)
		}
	}

	dir := filepath.Join(destRoot, d.TargetFolder)
	if !e.dryRun {
		if err := e.fs.MkdirAll(dir, 0755); err != nil {
			return statusFailed, Move{}, invalidDestination("mkdir", src, dir, err)
		}
	}

	// Already organized: the file sits exactly where it would go
	if filepath.Clean(filepath.Join(dir, name)) == filepath.Clean(src) {
		e.logger.Debug("Already in place: %s", src)
		return statusMoved, Move{Source: src, Destination: src}, nil
	}

	dest, err := e.uniqueDestination(dir, name, claimed)
	if err != nil {
		return statusFailed, Move{}, CategorizeError("stat", src, dir, err)
	}
	mv := Move{Source: src, Destination: dest}

	if e.dryRun {
		claimed[dest] = true
		e.logger.Info("[DRY RUN] Would move: %s -> %s", src, dest)
		return statusMoved, mv, nil
	}

	renameErr := e.fs.Rename(src, dest)
	if renameErr == nil {
		e.logger.Info("Moved: %s -> %s", src, dest)
		return statusMoved, mv, nil
	}
	if info.IsDir() {
		return statusFailed, Move{}, CategorizeError("rename", src, dest, renameErr)
	}

	e.logger.Debug("Rename of %s failed (%v), copying instead", src, renameErr)
	if err := copyFile(e.fs, src, dest); err != nil {
		return statusFailed, Move{}, CategorizeError("copy", src, dest, err)
	}
	mv.Copied = true

	if err := e.fs.Remove(src); err != nil {
		mv.SourceKept = true
		e.logger.Warn("Copied %s to %s but could not remove the original: %v", src, dest, err)
		return statusMoved, mv, nil
	}

	e.logger.Info("Moved (copy): %s -> %s", src, dest)
	return statusMoved, mv, nil
}

// uniqueDestination returns dir/name, or the first free dir/stem_N.ext
func (e *Executor) uniqueDestination(dir, name string, claimed map[string]bool) (string, error) {
	stem, ext := splitName(name)
	candidate := filepath.Join(dir, name)
	for n := 1; ; n++ {
		taken, err := e.exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken && !claimed[candidate] {
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

// exists reports whether anything, including a dangling symlink, occupies path
func (e *Executor) exists(path string) (bool, error) {
	var err error
	if lst, ok := e.fs.(afero.Lstater); ok {
		_, _, err = lst.LstatIfPossible(path)
	} else {
		_, err = e.fs.Stat(path)
	}
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (e *Executor) reportMove(phase progress.Phase, current string, processed, total int, out Outcome, start time.Time) {
	e.progress.UpdateMoveProgress(&progress.MoveProgress{
		Phase:      phase,
		Current:    current,
		Processed:  processed,
		Total:      total,
		Successful: out.Successful,
		Failed:     out.Failed,
		Skipped:    out.Skipped,
		DryRun:     e.dryRun,
		StartTime:  start,
	})
}

// splitName splits name into stem and extension. A leading dot does not
// start an extension, so ".bashrc" has no extension.
func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	stem = strings.TrimSuffix(name, ext)
	if stem == "" {
		return name, ""
	}
	return stem, ext
}

func invalidDestination(op, src, dest string, err error) *MoveError {
	return &MoveError{
		Source:      src,
		Destination: dest,
		Op:          op,
		Reason:      ErrorInvalidDestination,
		Original:    err,
	}
}
