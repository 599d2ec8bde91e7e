package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseMoving   Phase = "moving"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// ScanProgress represents progress during a tree walk
type ScanProgress struct {
	Phase       Phase
	Root        string
	CurrentPath string
	FilesFound  int
	TotalSize   int64
	StartTime   time.Time
	Error       error
}

// MoveProgress represents progress during a move batch
type MoveProgress struct {
	Phase      Phase
	Current    string
	Processed  int
	Total      int
	Successful int
	Failed     int
	Skipped    int
	DryRun     bool
	StartTime  time.Time
}

// Reporter provides thread-safe progress reporting
type Reporter struct {
	scanProgress *ScanProgress
	moveProgress *MoveProgress
	mu           sync.RWMutex
	listeners    []chan interface{}
}

// NewReporter creates a new progress reporter
func NewReporter() *Reporter {
	return &Reporter{
		listeners: make([]chan interface{}, 0),
	}
}

// Subscribe returns a channel that receives progress updates
func (r *Reporter) Subscribe() <-chan interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan interface{}, 10)
	r.listeners = append(r.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (r *Reporter) Unsubscribe(ch <-chan interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, listener := range r.listeners {
		if listener == ch {
			close(listener)
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// UpdateScanProgress stores a scan update and notifies listeners
func (r *Reporter) UpdateScanProgress(update *ScanProgress) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.scanProgress = update
	r.mu.Unlock()
	r.broadcast(update)
}

// UpdateMoveProgress stores a move update and notifies listeners
func (r *Reporter) UpdateMoveProgress(update *MoveProgress) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.moveProgress = update
	r.mu.Unlock()
	r.broadcast(update)
}

func (r *Reporter) broadcast(update interface{}) {
	r.mu.RLock()
	listeners := make([]chan interface{}, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	// Non-blocking: slow listeners miss intermediate updates
	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// GetScanProgress returns the latest scan progress
func (r *Reporter) GetScanProgress() *ScanProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scanProgress
}

// GetMoveProgress returns the latest move progress
func (r *Reporter) GetMoveProgress() *MoveProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moveProgress
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Scanning %s... Found %d files (%s) [%s]",
			p.Root,
			p.FilesFound,
			humanize.IBytes(uint64(p.TotalSize)),
			FormatDuration(elapsed))
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %d files (%s) in %s",
			p.FilesFound,
			humanize.IBytes(uint64(p.TotalSize)),
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Scan error: %v", p.Error)
	default:
		return "Scanning..."
	}
}

// FormatMoveProgress returns a human-readable move progress string
func FormatMoveProgress(p *MoveProgress) string {
	if p == nil {
		return "Preparing..."
	}

	dry := ""
	if p.DryRun {
		dry = " [DRY RUN]"
	}

	switch p.Phase {
	case PhaseMoving:
		percentage := 0
		if p.Total > 0 {
			percentage = (p.Processed * 100) / p.Total
		}
		return fmt.Sprintf("Moving... %d/%d (%d%%) - %d moved, %d failed, %d skipped%s",
			p.Processed, p.Total, percentage, p.Successful, p.Failed, p.Skipped, dry)
	case PhaseComplete:
		return fmt.Sprintf("Move complete: %d moved, %d failed, %d skipped in %s%s",
			p.Successful, p.Failed, p.Skipped, FormatDuration(time.Since(p.StartTime)), dry)
	default:
		return "Preparing move..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
