package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fenilsonani/file-organizer/internal/catalog"
	"github.com/fenilsonani/file-organizer/internal/progress"
	"github.com/fenilsonani/file-organizer/internal/scanner"
	"github.com/fenilsonani/file-organizer/internal/testutil"
)

func TestAggregateMixedTree(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{
		"/home/a.jpg":        make([]byte, 100),
		"/home/b.PNG":        make([]byte, 50),
		"/home/docs/c.pdf":   make([]byte, 300),
		"/home/docs/d.txt":   make([]byte, 10),
		"/home/misc/e.zzz":   make([]byte, 7),
		"/home/.cache/f.jpg": make([]byte, 999),
	})

	summary, err := New(fs, nil, Options{}).Aggregate(context.Background(), "/home")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if summary.TotalFiles != 5 {
		t.Errorf("TotalFiles = %d, want 5", summary.TotalFiles)
	}
	if summary.TotalSize != 467 {
		t.Errorf("TotalSize = %d, want 467", summary.TotalSize)
	}

	want := []CategoryStat{
		{Category: "Documentos/Logs", Count: 2, TotalSize: 310},
		{Category: "Imagens", Count: 2, TotalSize: 150},
		{Category: catalog.Other, Count: 1, TotalSize: 7},
	}
	if len(summary.Categories) != len(want) {
		t.Fatalf("categories = %+v", summary.Categories)
	}
	for i := range want {
		if summary.Categories[i] != want[i] {
			t.Errorf("category %d = %+v, want %+v", i, summary.Categories[i], want[i])
		}
	}

	if summary.LargestFiles[0].Name != "c.pdf" || summary.LargestFiles[4].Name != "e.zzz" {
		t.Errorf("largest files order wrong: %v", summary.LargestFiles)
	}
}

func TestAggregateInvariants(t *testing.T) {
	files := make(map[string][]byte)
	exts := []string{"jpg", "mp4", "pdf", "zip", "go", "xyz", "csv"}
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("/data/d%d/f%02d.%s", i%4, i, exts[i%len(exts)])
		files[name] = make([]byte, (i*37)%101)
	}
	fs := testutil.NewMemFs(t, files)

	summary, err := New(fs, nil, Options{}).Aggregate(context.Background(), "/data")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	var size int64
	var count int
	for i, c := range summary.Categories {
		size += c.TotalSize
		count += c.Count
		if i > 0 && summary.Categories[i-1].TotalSize < c.TotalSize {
			t.Errorf("categories not sorted by size: %+v", summary.Categories)
		}
	}
	if size != summary.TotalSize || count != summary.TotalFiles {
		t.Errorf("category sums %d/%d differ from totals %d/%d", count, size, summary.TotalFiles, summary.TotalSize)
	}

	if len(summary.LargestFiles) != DefaultTopFiles {
		t.Fatalf("len(LargestFiles) = %d, want %d", len(summary.LargestFiles), DefaultTopFiles)
	}
	for i := 1; i < len(summary.LargestFiles); i++ {
		if summary.LargestFiles[i-1].Size < summary.LargestFiles[i].Size {
			t.Errorf("largest files not descending at %d", i)
		}
		if summary.LargestFiles[i].Index != i {
			t.Errorf("index %d = %d", i, summary.LargestFiles[i].Index)
		}
	}

	// no file outside the top set may be larger than its smallest member
	smallest := summary.LargestFiles[len(summary.LargestFiles)-1].Size
	kept := make(map[string]bool)
	for _, f := range summary.LargestFiles {
		kept[f.Path] = true
	}
	for path, content := range files {
		if !kept[path] && int64(len(content)) > smallest {
			t.Errorf("%s (%d bytes) missing from largest files", path, len(content))
		}
	}
}

func TestAggregateFewerFilesThanTopK(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{
		"/x/a.txt": make([]byte, 1),
		"/x/b.txt": make([]byte, 2),
	})

	summary, err := New(fs, nil, Options{}).Aggregate(context.Background(), "/x")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(summary.LargestFiles) != 2 {
		t.Errorf("len(LargestFiles) = %d, want 2", len(summary.LargestFiles))
	}
}

func TestAggregateEmptyDirectory(t *testing.T) {
	f := testutil.NewFixture(t)

	summary, err := New(nil, nil, Options{}).Aggregate(context.Background(), f.SourceDir)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if summary.TotalFiles != 0 || summary.TotalSize != 0 || len(summary.Categories) != 0 || len(summary.LargestFiles) != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestAggregateInvalidDirectory(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{"/file.txt": nil})
	agg := New(fs, nil, Options{})

	for _, path := range []string{"/missing", "/file.txt"} {
		_, err := agg.Aggregate(context.Background(), path)
		if !errors.Is(err, ErrInvalidDirectory) {
			t.Errorf("Aggregate(%q) error = %v, want ErrInvalidDirectory", path, err)
		}
	}

	_, err := agg.Aggregate(context.Background(), "/missing")
	if !errors.Is(err, scanner.ErrNotFound) {
		t.Errorf("error %v should also wrap scanner.ErrNotFound", err)
	}
}

func TestAggregateRespectsEntryCap(t *testing.T) {
	files := make(map[string][]byte)
	for i := 0; i < 30; i++ {
		files[fmt.Sprintf("/cap/f%02d.bin", i)] = make([]byte, 1)
	}
	fs := testutil.NewMemFs(t, files)

	summary, err := New(fs, nil, Options{MaxEntries: 10}).Aggregate(context.Background(), "/cap")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if summary.TotalFiles != 10 {
		t.Errorf("TotalFiles = %d, want 10", summary.TotalFiles)
	}
}

func TestAggregateCancelled(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{"/c/a.txt": nil})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(fs, nil, Options{}).Aggregate(ctx, "/c"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestAggregatePublishesProgress(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{"/p/a.txt": make([]byte, 5)})
	reporter := progress.NewReporter()

	agg := New(fs, nil, Options{})
	agg.SetProgressReporter(reporter)
	if _, err := agg.Aggregate(context.Background(), "/p"); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	last := reporter.GetScanProgress()
	if last == nil || last.Phase != progress.PhaseComplete || last.FilesFound != 1 || last.TotalSize != 5 {
		t.Errorf("final progress = %+v", last)
	}
}

func TestFilesInCategory(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{
		"/m/a.mp3":     make([]byte, 3),
		"/m/b.txt":     nil,
		"/m/sub/c.OGG": make([]byte, 4),
		"/m/.h/d.mp3":  nil,
	})
	agg := New(fs, nil, Options{})

	files, err := agg.FilesInCategory(context.Background(), "/m", "Áudio")
	if err != nil {
		t.Fatalf("FilesInCategory: %v", err)
	}
	if len(files) != 2 || files[0].Name != "a.mp3" || files[1].Name != "c.OGG" {
		t.Fatalf("files = %+v", files)
	}
	if files[1].Index != 1 {
		t.Errorf("index = %d, want 1", files[1].Index)
	}

	none, err := agg.FilesInCategory(context.Background(), "/m", "Fontes")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("FilesInCategory(Fontes) = %v, %v", none, err)
	}
}

func TestFilesInCategoryCapsResults(t *testing.T) {
	files := make(map[string][]byte)
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("/r/img%02d.jpg", i)] = nil
	}
	fs := testutil.NewMemFs(t, files)

	got, err := New(fs, nil, Options{CategoryMaxResults: 5}).FilesInCategory(context.Background(), "/r", "Imagens")
	if err != nil {
		t.Fatalf("FilesInCategory: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestFilesInCategoryUnknownLabel(t *testing.T) {
	fs := testutil.NewMemFs(t, map[string][]byte{"/u/a.txt": nil})

	_, err := New(fs, nil, Options{}).FilesInCategory(context.Background(), "/u", "Nope")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("error = %v, want ErrUnknownCategory", err)
	}
}
