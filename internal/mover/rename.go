package mover

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fenilsonani/file-organizer/internal/security"
)

// ErrTargetExists is returned by Rename when the new name is taken
var ErrTargetExists = errors.New("a file with this name already exists")

// Rename gives the file at path a new name in the same directory and
// returns the new path. It never replaces an existing entry.
func (e *Executor) Rename(ctx context.Context, path, newName string) (string, error) {
	tracer := otel.Tracer("mover")
	_, span := tracer.Start(ctx, "Rename")
	defer span.End()
	span.SetAttributes(attribute.String("path", path), attribute.String("new_name", newName))

	if _, err := e.fs.Stat(path); err != nil {
		err = CategorizeError("stat", path, "", err)
		span.RecordError(err)
		return "", err
	}
	if err := security.ValidateFileName(newName); err != nil {
		err = invalidDestination("validate", path, "", err)
		span.RecordError(err)
		return "", err
	}

	target := filepath.Join(filepath.Dir(path), newName)
	taken, err := e.exists(target)
	if err != nil {
		err = CategorizeError("stat", path, target, err)
		span.RecordError(err)
		return "", err
	}
	if taken {
		err := fmt.Errorf("%w: %s", ErrTargetExists, target)
		span.RecordError(err)
		return "", err
	}

	if e.dryRun {
		e.logger.Info("[DRY RUN] Would rename: %s -> %s", path, target)
		return target, nil
	}
	if err := e.fs.Rename(path, target); err != nil {
		err = CategorizeError("rename", path, target, err)
		span.RecordError(err)
		return "", err
	}

	e.logger.Info("Renamed: %s -> %s", path, target)
	return target, nil
}
