package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/fenilsonani/file-organizer/internal/progress"
	"github.com/fenilsonani/file-organizer/internal/ui/styles"
	"github.com/fenilsonani/file-organizer/internal/ui/utils"
)

// IsInteractive reports whether f is a terminal
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Job is the work shown behind a spinner
type Job func(ctx context.Context) error

type jobDoneMsg struct{ err error }

type progressMsg struct{ update interface{} }

type spinnerModel struct {
	title    string
	spinner  spinner.Model
	status   string
	bar      string
	updates  <-chan interface{}
	job      Job
	ctx      context.Context
	cancel   context.CancelFunc
	start    time.Time
	done     bool
	stopping bool
	err      error
}

func newSpinnerModel(ctx context.Context, cancel context.CancelFunc, title string, updates <-chan interface{}, job Job) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return spinnerModel{
		title:   title,
		spinner: s,
		updates: updates,
		job:     job,
		ctx:     ctx,
		cancel:  cancel,
		start:   time.Now(),
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runJob, waitForUpdate(m.updates))
}

func (m spinnerModel) runJob() tea.Msg {
	return jobDoneMsg{err: m.job(m.ctx)}
}

func waitForUpdate(updates <-chan interface{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return progressMsg{update: u}
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.stopping {
			// The job sees the cancelled context and returns on its own
			m.stopping = true
			m.cancel()
		}
		return m, nil

	case progressMsg:
		switch u := msg.update.(type) {
		case *progress.ScanProgress:
			m.status = progress.FormatScanProgress(u)
			m.bar = ""
		case *progress.MoveProgress:
			m.status = progress.FormatMoveProgress(u)
			m.bar = styles.ProgressBar(u.Processed, u.Total, 30)
		}
		return m, waitForUpdate(m.updates)

	case jobDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf(" (%s)", time.Since(m.start).Round(time.Second))))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(styles.FilePathStyle.Render(utils.TruncateString(m.status, 100)))
		b.WriteString("\n")
	}
	if m.bar != "" {
		b.WriteString("  ")
		b.WriteString(m.bar)
		b.WriteString("\n")
	}
	if m.stopping {
		b.WriteString(styles.WarningStyle.Render("  Cancelling..."))
	} else {
		b.WriteString(styles.HelpStyle.Render("  Press ctrl+c to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// RunWithSpinner runs job while drawing a spinner and the latest progress
// from reporter on out. When out is not a terminal the job simply runs.
func RunWithSpinner(ctx context.Context, out *os.File, title string, reporter *progress.Reporter, job Job) error {
	if out == nil || !IsInteractive(out) {
		return job(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var updates <-chan interface{}
	if reporter != nil {
		updates = reporter.Subscribe()
		defer reporter.Unsubscribe(updates)
	}

	p := tea.NewProgram(newSpinnerModel(ctx, cancel, title, updates, job), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running progress display: %w", err)
	}
	return final.(spinnerModel).err
}
