package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fenilsonani/file-organizer/internal/logging"
)

// DefaultTimeout bounds one engine invocation
const DefaultTimeout = 10 * time.Minute

// ErrEngineNotConfigured is returned when no engine command is set
var ErrEngineNotConfigured = errors.New("classification engine not configured")

// EngineError reports a failed engine invocation
type EngineError struct {
	Command  string
	Args     []string
	ExitCode int
	Message  string // "error" field of the engine's JSON failure report, if any
	Stderr   string
	Err      error
}

func (e *EngineError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Stderr
	}
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	return fmt.Sprintf("engine %s %s failed (exit %d): %s", e.Command, strings.Join(e.Args, " "), e.ExitCode, detail)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// runFunc runs name with args and returns what it wrote to stdout and stderr
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Engine runs the external classifier as `<command> analyze <dir>` and
// `<command> search <dir> <query>`, reading one JSON document from stdout
type Engine struct {
	Command string
	Timeout time.Duration

	logger *logging.Logger
	run    runFunc
}

// NewEngine creates an engine client. A zero timeout means DefaultTimeout.
func NewEngine(command string, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{Command: command, Timeout: timeout, run: runCommand}
}

// SetLogger sets the logger
func (e *Engine) SetLogger(logger *logging.Logger) {
	e.logger = logger
}

// Analyze classifies every file in dir
func (e *Engine) Analyze(ctx context.Context, dir string) (*AnalyzeResult, error) {
	tracer := otel.Tracer("classify")
	ctx, span := tracer.Start(ctx, "Analyze")
	defer span.End()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	span.SetAttributes(attribute.String("path", abs))

	out, err := e.invoke(ctx, "analyze", abs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var result AnalyzeResult
	if err := json.Unmarshal(out, &result); err != nil {
		err = fmt.Errorf("failed to decode engine output: %w", err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("files", result.TotalFiles),
		attribute.Int("duplicates", result.TotalDuplicates),
	)
	e.logger.Info("Engine classified %d files in %.1fs", result.TotalFiles, result.ScanTime)
	return &result, nil
}

// Search returns the files in dir that match a free-text query, best match first
func (e *Engine) Search(ctx context.Context, dir, query string) ([]FileClassification, error) {
	tracer := otel.Tracer("classify")
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	span.SetAttributes(attribute.String("path", abs), attribute.String("query", query))

	out, err := e.invoke(ctx, "search", abs, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	results := []FileClassification{}
	if err := json.Unmarshal(out, &results); err != nil {
		err = fmt.Errorf("failed to decode engine output: %w", err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}

func (e *Engine) invoke(ctx context.Context, args ...string) ([]byte, error) {
	if strings.TrimSpace(e.Command) == "" {
		return nil, ErrEngineNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	e.logger.Debug("Running engine: %s %s", e.Command, strings.Join(args, " "))
	stdout, stderr, err := e.run(ctx, e.Command, args...)
	if len(stderr) > 0 {
		e.logger.Debug("Engine stderr: %s", strings.TrimSpace(string(stderr)))
	}
	if err == nil {
		return stdout, nil
	}

	engineErr := &EngineError{
		Command:  e.Command,
		Args:     args,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(string(stderr)),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		engineErr.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		engineErr.Message = fmt.Sprintf("timed out after %s", e.Timeout)
	} else {
		var report struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(stdout, &report) == nil {
			engineErr.Message = report.Error
		}
	}
	return nil, engineErr
}
