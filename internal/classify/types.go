// Package classify is the boundary to the external classification engine:
// the result types it emits, turning them into move decisions, and saved
// plans.
package classify

import (
	"github.com/fenilsonani/file-organizer/internal/mover"
)

// FileClassification is the engine's verdict for one file
type FileClassification struct {
	Index           int     `json:"index" yaml:"index"`
	Filename        string  `json:"filename" yaml:"filename"`
	Filepath        string  `json:"filepath" yaml:"filepath"`
	SuggestedFolder string  `json:"suggested_folder" yaml:"suggested_folder"`
	SuggestedName   *string `json:"suggested_name" yaml:"suggested_name"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	Selected        bool    `json:"selected" yaml:"selected"`
	IsDuplicate     bool    `json:"is_duplicate" yaml:"is_duplicate"`
	DuplicateOf     *string `json:"duplicate_of" yaml:"duplicate_of"`
}

// AnalyzeResult is the engine output for a directory
type AnalyzeResult struct {
	TotalFiles      int                  `json:"total_files" yaml:"total_files"`
	Images          int                  `json:"images" yaml:"images"`
	Documents       int                  `json:"documents" yaml:"documents"`
	OtherFiles      int                  `json:"other_files" yaml:"other_files"`
	Classifications []FileClassification `json:"classifications" yaml:"classifications"`
	ScanTime        float64              `json:"scan_time" yaml:"scan_time"`
	TotalDuplicates int                  `json:"total_duplicates" yaml:"total_duplicates"`
}

// Selected returns how many classifications are marked for moving
func (r *AnalyzeResult) Selected() int {
	n := 0
	for _, c := range r.Classifications {
		if c.Selected {
			n++
		}
	}
	return n
}

// DecisionOptions adjusts how classifications become decisions
type DecisionOptions struct {
	// SkipDuplicates leaves files flagged as duplicates in place even when selected
	SkipDuplicates bool
}

// Decisions converts classifications into move decisions, one per entry
func Decisions(cls []FileClassification, opts DecisionOptions) []mover.Decision {
	decisions := make([]mover.Decision, 0, len(cls))
	for _, c := range cls {
		apply := c.Selected
		if opts.SkipDuplicates && c.IsDuplicate {
			apply = false
		}
		decisions = append(decisions, mover.Decision{
			SourcePath:    c.Filepath,
			TargetFolder:  c.SuggestedFolder,
			SuggestedName: c.SuggestedName,
			Apply:         apply,
		})
	}
	return decisions
}
