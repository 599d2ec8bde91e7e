package mover

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/fenilsonani/file-organizer/internal/testutil"
)

func TestRename(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{
		"/d/IMG_0001.jpg": []byte("a"),
		"/d/taken.jpg":    []byte("b"),
	})
	ex := New(fs)

	got, err := ex.Rename(context.Background(), "/d/IMG_0001.jpg", "beach.jpg")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got != "/d/beach.jpg" {
		t.Errorf("new path = %s", got)
	}
	if ok, _ := afero.Exists(fs, "/d/beach.jpg"); !ok {
		t.Error("renamed file missing")
	}

	if _, err := ex.Rename(context.Background(), "/d/beach.jpg", "taken.jpg"); !errors.Is(err, ErrTargetExists) {
		t.Errorf("error = %v, want ErrTargetExists", err)
	}

	var moveErr *MoveError
	if _, err := ex.Rename(context.Background(), "/d/beach.jpg", "../up.jpg"); !errors.As(err, &moveErr) || moveErr.Reason != ErrorInvalidDestination {
		t.Errorf("error = %v, want invalid destination", err)
	}
	if _, err := ex.Rename(context.Background(), "/d/none.jpg", "x.jpg"); !errors.As(err, &moveErr) || moveErr.Reason != ErrorSourceNotFound {
		t.Errorf("error = %v, want source not found", err)
	}
}

func TestRenameDryRun(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{"/d/a.txt": nil})
	ex := New(fs)
	ex.SetDryRun(true)

	if _, err := ex.Rename(context.Background(), "/d/a.txt", "b.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/d/a.txt"); !ok {
		t.Error("dry run renamed the file")
	}
}
