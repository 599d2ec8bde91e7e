package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const analyzeOutput = `{
  "total_files": 2,
  "images": 1,
  "documents": 1,
  "other_files": 0,
  "classifications": [
    {"index": 0, "filename": "a.jpg", "filepath": "/d/a.jpg", "suggested_folder": "Imagens",
     "suggested_name": null, "confidence": 0.9, "selected": true, "is_duplicate": false, "duplicate_of": null},
    {"index": 1, "filename": "b.pdf", "filepath": "/d/b.pdf", "suggested_folder": "Documentos/Logs",
     "suggested_name": "report.pdf", "confidence": 0.4, "selected": false, "is_duplicate": true, "duplicate_of": "/d/c.pdf"}
  ],
  "scan_time": 0.25,
  "total_duplicates": 1
}`

type fakeRun struct {
	name   string
	args   []string
	stdout string
	stderr string
	err    error
}

func (f *fakeRun) run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name = name
	f.args = args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func newFakeEngine(f *fakeRun) *Engine {
	e := NewEngine("organizer-engine", 0)
	e.run = f.run
	return e
}

func TestEngineAnalyze(t *testing.T) {
	f := &fakeRun{stdout: analyzeOutput}
	e := newFakeEngine(f)

	result, err := e.Analyze(context.Background(), "/d")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if f.name != "organizer-engine" || len(f.args) != 2 || f.args[0] != "analyze" || f.args[1] != "/d" {
		t.Errorf("invoked %s %v", f.name, f.args)
	}
	if result.TotalFiles != 2 || result.TotalDuplicates != 1 || len(result.Classifications) != 2 {
		t.Fatalf("result = %+v", result)
	}

	second := result.Classifications[1]
	if second.SuggestedName == nil || *second.SuggestedName != "report.pdf" {
		t.Errorf("SuggestedName = %v", second.SuggestedName)
	}
	if second.DuplicateOf == nil || *second.DuplicateOf != "/d/c.pdf" {
		t.Errorf("DuplicateOf = %v", second.DuplicateOf)
	}
	if result.Classifications[0].SuggestedName != nil {
		t.Errorf("null suggested_name decoded as %q", *result.Classifications[0].SuggestedName)
	}
	if result.Selected() != 1 {
		t.Errorf("Selected() = %d, want 1", result.Selected())
	}
}

func TestEngineAnalyzeResolvesRelativeDir(t *testing.T) {
	f := &fakeRun{stdout: `{"classifications": []}`}
	if _, err := newFakeEngine(f).Analyze(context.Background(), "rel"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !filepath.IsAbs(f.args[1]) {
		t.Errorf("engine got relative path %q", f.args[1])
	}
}

func TestEngineSearch(t *testing.T) {
	f := &fakeRun{stdout: `[{"index": 0, "filename": "x.txt", "filepath": "/d/x.txt", "confidence": 0.8}]`}

	results, err := newFakeEngine(f).Search(context.Background(), "/d", "tax 2023")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(f.args) != 3 || f.args[0] != "search" || f.args[2] != "tax 2023" {
		t.Errorf("args = %v", f.args)
	}
	if len(results) != 1 || results[0].Filename != "x.txt" {
		t.Errorf("results = %+v", results)
	}
}

func TestEngineSearchEmpty(t *testing.T) {
	results, err := newFakeEngine(&fakeRun{stdout: "[]"}).Search(context.Background(), "/d", "q")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty non-nil", results)
	}
}

func TestEngineFailure(t *testing.T) {
	tests := []struct {
		name        string
		run         fakeRun
		wantMessage string
	}{
		{
			name:        "error report on stdout",
			run:         fakeRun{stdout: `{"error": "no such directory", "trace": "..."}`, stderr: "warning", err: errors.New("exit status 1")},
			wantMessage: "no such directory",
		},
		{
			name:        "stderr only",
			run:         fakeRun{stderr: "Traceback: boom\n", err: errors.New("exit status 2")},
			wantMessage: "Traceback: boom",
		},
		{
			name:        "no output",
			run:         fakeRun{err: errors.New("exec: not found")},
			wantMessage: "exec: not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.run
			_, err := newFakeEngine(&f).Analyze(context.Background(), "/d")

			var engineErr *EngineError
			if !errors.As(err, &engineErr) {
				t.Fatalf("error = %v, want *EngineError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMessage)
			}
			if !errors.Is(err, f.err) {
				t.Errorf("error does not wrap the run error")
			}
		})
	}
}

func TestEngineBadOutput(t *testing.T) {
	_, err := newFakeEngine(&fakeRun{stdout: "not json"}).Analyze(context.Background(), "/d")
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("error = %v, want decode failure", err)
	}
}

func TestEngineNotConfigured(t *testing.T) {
	e := NewEngine("  ", time.Second)
	if _, err := e.Search(context.Background(), "/d", "q"); !errors.Is(err, ErrEngineNotConfigured) {
		t.Errorf("error = %v, want ErrEngineNotConfigured", err)
	}
}

func TestEngineTimeout(t *testing.T) {
	e := NewEngine("slow", 10*time.Millisecond)
	e.run = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	_, err := e.Analyze(context.Background(), "/d")
	var engineErr *EngineError
	if !errors.As(err, &engineErr) || !strings.Contains(engineErr.Message, "timed out") {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestEngineRealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "engine.sh")
	body := "#!/bin/sh\n" +
		"if [ \"$1\" = search ]; then echo '[]'; exit 0; fi\n" +
		"echo '{\"error\": \"bad dir\"}'\n" +
		"echo oops >&2\n" +
		"exit 3\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(script, 5*time.Second)

	if _, err := e.Search(context.Background(), dir, "q"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	_, err := e.Analyze(context.Background(), dir)
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %v, want *EngineError", err)
	}
	if engineErr.ExitCode != 3 || engineErr.Message != "bad dir" || engineErr.Stderr != "oops" {
		t.Errorf("engine error = %+v", engineErr)
	}
}
