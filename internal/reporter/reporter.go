package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/file-organizer/internal/catalog"
	"github.com/fenilsonani/file-organizer/internal/classify"
	"github.com/fenilsonani/file-organizer/internal/dedupe"
	"github.com/fenilsonani/file-organizer/internal/mover"
	"github.com/fenilsonani/file-organizer/internal/scanner"
	"github.com/fenilsonani/file-organizer/internal/stats"
	"github.com/fenilsonani/file-organizer/internal/ui/styles"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// TabSpacing is the number of spaces between tabwriter columns
const TabSpacing = 2

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Reporter renders results in one output format
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Format returns the output format
func (r *Reporter) Format() OutputFormat {
	return r.format
}

// IsStructured reports whether output is machine readable
func (r *Reporter) IsStructured() bool {
	return r.format == FormatJSON || r.format == FormatYAML
}

// emit encodes v for json/yaml and calls the matching text renderer otherwise
func (r *Reporter) emit(v any, summary, table func(w io.Writer)) error {
	switch r.format {
	case FormatJSON:
		encoder := json.NewEncoder(r.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(r.writer)
		defer encoder.Close()
		return encoder.Encode(v)
	case FormatSummary:
		w := tabwriter.NewWriter(r.writer, 0, 4, TabSpacing, ' ', 0)
		summary(w)
		return w.Flush()
	case FormatTable:
		w := tabwriter.NewWriter(r.writer, 0, 4, TabSpacing, ' ', 0)
		table(w)
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// Listing reports one directory's entries
func (r *Reporter) Listing(l *scanner.Listing) error {
	summary := func(w io.Writer) {
		heading(w, l.Path)
		fmt.Fprintf(w, "%d folders, %d files\n\n", l.TotalFolders, l.TotalFiles)
		for _, e := range l.Files {
			if e.IsDirectory {
				fmt.Fprintf(w, "  %s/\t\n", e.Name)
				continue
			}
			fmt.Fprintf(w, "  %s\t%s\n", e.Name, formatSize(e.Size))
		}
	}
	table := func(w io.Writer) {
		fmt.Fprintln(w, "#\tName\tType\tSize\tModified\tExtension")
		for _, e := range l.Files {
			kind, size := "file", formatSize(e.Size)
			if e.IsDirectory {
				kind, size = "folder", "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", e.Index, e.Name, kind, size, formatTime(e), dash(e.Extension))
		}
		fmt.Fprintf(w, "\nTotal: %d folders, %d files\n", l.TotalFolders, l.TotalFiles)
	}
	return r.emit(l, summary, table)
}

// Folders reports the subdirectories of path
func (r *Reporter) Folders(path string, nodes []scanner.FolderNode) error {
	view := struct {
		Path    string               `json:"path" yaml:"path"`
		Folders []scanner.FolderNode `json:"folders" yaml:"folders"`
	}{path, nodes}

	summary := func(w io.Writer) {
		heading(w, path)
		if len(nodes) == 0 {
			fmt.Fprintln(w, "No folders")
		}
		for _, n := range nodes {
			marker := "  "
			if n.HasChildren {
				marker = "▸ "
			}
			fmt.Fprintf(w, "%s%s\n", marker, n.Name)
		}
	}
	table := func(w io.Writer) {
		fmt.Fprintln(w, "Name\tSubfolders\tPath")
		for _, n := range nodes {
			fmt.Fprintf(w, "%s\t%s\t%s\n", n.Name, yesNo(n.HasChildren), n.Path)
		}
	}
	return r.emit(view, summary, table)
}

// Storage reports a statistics scan
func (r *Reporter) Storage(s *stats.StorageSummary) error {
	summary := func(w io.Writer) {
		heading(w, "Storage in "+s.Path)
		fmt.Fprintf(w, "Total files:\t%d\n", s.TotalFiles)
		fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", formatSize(s.TotalSize), s.TotalSize)

		fmt.Fprintln(w, "\nBy category:\t\t")
		for _, c := range s.Categories {
			fmt.Fprintf(w, "  %s\t%d files\t%s (%.1f%%)\n",
				c.Category, c.Count, formatSize(c.TotalSize), percent(c.TotalSize, s.TotalSize))
		}

		if len(s.LargestFiles) > 0 {
			fmt.Fprintln(w, "\nLargest files:\t\t")
			for i, f := range s.LargestFiles {
				fmt.Fprintf(w, "  %d) %s\t%s\t\n", i+1, f.Path, formatSize(f.Size))
			}
		}

		if s.Skipped > 0 {
			fmt.Fprintf(w, "\n%s\t\n", styles.WarningStyle.Render(fmt.Sprintf("%d entries could not be read", s.Skipped)))
		}
		fmt.Fprintf(w, "\nElapsed:\t%v\n", s.ScanTime.Round(time.Millisecond))
	}
	table := func(w io.Writer) {
		fmt.Fprintln(w, "Category\tFiles\tSize\tShare")
		for _, c := range s.Categories {
			fmt.Fprintf(w, "%s\t%d\t%s\t%.1f%%\n", c.Category, c.Count, formatSize(c.TotalSize), percent(c.TotalSize, s.TotalSize))
		}
		fmt.Fprintf(w, "Total\t%d\t%s\t\n", s.TotalFiles, formatSize(s.TotalSize))

		fmt.Fprintln(w, "\n#\tPath\tSize\tModified")
		for _, f := range s.LargestFiles {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", f.Index+1, f.Path, formatSize(f.Size), formatTime(f))
		}
	}
	return r.emit(s, summary, table)
}

// CategoryFiles reports the files found for one label
func (r *Reporter) CategoryFiles(root, label string, files []scanner.FileEntry) error {
	view := struct {
		Path     string              `json:"path" yaml:"path"`
		Category string              `json:"category" yaml:"category"`
		Files    []scanner.FileEntry `json:"files" yaml:"files"`
	}{root, label, files}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	summary := func(w io.Writer) {
		heading(w, fmt.Sprintf("%s in %s", label, root))
		fmt.Fprintf(w, "%d files, %s\n\n", len(files), formatSize(total))
		for _, f := range files {
			fmt.Fprintf(w, "  %s\t%s\n", f.Path, formatSize(f.Size))
		}
	}
	table := func(w io.Writer) {
		fmt.Fprintln(w, "#\tName\tSize\tModified\tPath")
		for _, f := range files {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", f.Index, f.Name, formatSize(f.Size), formatTime(f), f.Path)
		}
	}
	return r.emit(view, summary, table)
}

// Categories reports the category table
func (r *Reporter) Categories(c *catalog.Catalog) error {
	groups := c.Groups()

	summary := func(w io.Writer) {
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%s\n", styles.CategoryStyle.Render(g.Label), strings.Join(g.Extensions, " "))
		}
		fmt.Fprintf(w, "%s\t(everything else)\n", styles.CategoryStyle.Render(catalog.Other))
	}
	table := func(w io.Writer) {
		fmt.Fprintln(w, "Category\tExtensions")
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%d\n", g.Label, len(g.Extensions))
		}
	}
	return r.emit(groups, summary, table)
}

type failureView struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Reason      string `json:"reason" yaml:"reason"`
	Error       string `json:"error" yaml:"error"`
}

// Outcome reports a move batch
func (r *Reporter) Outcome(o mover.Outcome) error {
	view := struct {
		mover.Outcome `yaml:",inline"`
		Failures      []failureView `json:"failures" yaml:"failures"`
	}{Outcome: o, Failures: []failureView{}}
	for _, e := range o.Errors {
		view.Failures = append(view.Failures, failureView{
			Source:      e.Source,
			Destination: e.Destination,
			Reason:      e.Reason.String(),
			Error:       e.Error(),
		})
	}

	counts := func(w io.Writer) {
		title := "Move complete"
		if o.DryRun {
			title = "Dry run complete, nothing was moved"
		}
		heading(w, title)
		fmt.Fprintf(w, "Moved:\t%s\n", styles.SuccessStyle.Render(fmt.Sprint(o.Successful)))
		if o.Partial > 0 {
			fmt.Fprintf(w, "  originals kept:\t%s\n", styles.WarningStyle.Render(fmt.Sprint(o.Partial)))
		}
		fmt.Fprintf(w, "Failed:\t%s\n", failedCount(o.Failed))
		fmt.Fprintf(w, "Skipped:\t%d\n", o.Skipped)
		if summary := mover.FormatErrorSummary(o.Errors); summary != "" {
			fmt.Fprint(w, summary)
		}
	}
	table := func(w io.Writer) {
		fmt.Fprintln(w, "Source\t\tDestination\tNote")
		for _, m := range o.Moves {
			note := ""
			switch {
			case m.SourceKept:
				note = "copied, original kept"
			case m.Copied:
				note = "copied"
			case m.Source == m.Destination:
				note = "already in place"
			}
			fmt.Fprintf(w, "%s\t→\t%s\t%s\n", m.Source, m.Destination, note)
		}
		for _, e := range o.Errors {
			fmt.Fprintf(w, "%s\t✗\t%s\t%s\n", e.Source, dash(e.Destination), e.Reason)
		}
		fmt.Fprintln(w)
		counts(w)
	}
	return r.emit(view, counts, table)
}

// Duplicates reports duplicate groups
func (r *Reporter) Duplicates(root string, groups []dedupe.Group) error {
	wasted := dedupe.TotalWasted(groups)
	view := struct {
		Path        string         `json:"path" yaml:"path"`
		WastedBytes int64          `json:"wasted_bytes" yaml:"wasted_bytes"`
		Groups      []dedupe.Group `json:"groups" yaml:"groups"`
	}{root, wasted, groups}

	summary := func(w io.Writer) {
		heading(w, "Duplicates in "+root)
		if len(groups) == 0 {
			fmt.Fprintln(w, "No duplicate files found")
			return
		}
		fmt.Fprintf(w, "%d groups, %s reclaimable\n", len(groups), formatSize(wasted))
		for i, g := range groups {
			quick := ""
			if g.Quick {
				quick = " (sampled)"
			}
			fmt.Fprintf(w, "\n%d) %d copies of %s%s\t\n", i+1, len(g.Files), formatSize(g.Size), quick)
			for j, f := range g.Files {
				mark := "  "
				if j == 0 {
					mark = "* "
				}
				fmt.Fprintf(w, "   %s%s\t\n", mark, f.Path)
			}
		}
	}
	table := func(w io.Writer) {
		fmt.Fprintln(w, "Group\tHash\tSize\tKeep\tPath")
		for i, g := range groups {
			for j, f := range g.Files {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, g.Hash, formatSize(g.Size), yesNo(j == 0), f.Path)
			}
		}
		fmt.Fprintf(w, "\nReclaimable:\t%s\n", formatSize(wasted))
	}
	return r.emit(view, summary, table)
}

// Analysis reports the engine's classification of a directory
func (r *Reporter) Analysis(res *classify.AnalyzeResult) error {
	summary := func(w io.Writer) {
		heading(w, "Analysis")
		fmt.Fprintf(w, "Files:\t%d\n", res.TotalFiles)
		fmt.Fprintf(w, "Images:\t%d\n", res.Images)
		fmt.Fprintf(w, "Documents:\t%d\n", res.Documents)
		fmt.Fprintf(w, "Other:\t%d\n", res.OtherFiles)
		fmt.Fprintf(w, "Duplicates:\t%d\n", res.TotalDuplicates)
		fmt.Fprintf(w, "Selected to move:\t%d\n", res.Selected())
		fmt.Fprintf(w, "Scan time:\t%.2fs\n", res.ScanTime)
	}
	table := func(w io.Writer) {
		classificationRows(w, res.Classifications)
	}
	return r.emit(res, summary, table)
}

// SearchResults reports engine search matches
func (r *Reporter) SearchResults(query string, results []classify.FileClassification) error {
	summary := func(w io.Writer) {
		heading(w, fmt.Sprintf("%d matches for %q", len(results), query))
		for _, c := range results {
			fmt.Fprintf(w, "  %3.0f%%\t%s\n", c.Confidence*100, c.Filepath)
		}
	}
	table := func(w io.Writer) {
		classificationRows(w, results)
	}
	return r.emit(results, summary, table)
}

// Plans reports saved plans
func (r *Reporter) Plans(plans []*classify.Plan) error {
	type planView struct {
		ID        string    `json:"id" yaml:"id"`
		CreatedAt time.Time `json:"created_at" yaml:"created_at"`
		Directory string    `json:"directory" yaml:"directory"`
		Files     int       `json:"files" yaml:"files"`
		Selected  int       `json:"selected" yaml:"selected"`
		Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	}
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{p.ID, p.CreatedAt, p.Directory, len(p.Classifications), p.Selected(), p.Notes})
	}

	table := func(w io.Writer) {
		if len(views) == 0 {
			fmt.Fprintln(w, "No saved plans")
			return
		}
		fmt.Fprintln(w, "ID\tCreated\tDirectory\tFiles\tSelected")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", v.ID, humanize.Time(v.CreatedAt), dash(v.Directory), v.Files, v.Selected)
		}
	}
	return r.emit(views, table, table)
}

func classificationRows(w io.Writer, cls []classify.FileClassification) {
	fmt.Fprintln(w, "#\tMove\tFile\tFolder\tNew name\tConfidence\tDuplicate of")
	for _, c := range cls {
		box := "[ ]"
		if c.Selected {
			box = "[x]"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.0f%%\t%s\n",
			c.Index, box, c.Filename, dash(c.SuggestedFolder), deref(c.SuggestedName), c.Confidence*100, deref(c.DuplicateOf))
	}
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n", styles.HeadingStyle.Render("=== "+title+" ==="))
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatTime(e scanner.FileEntry) string {
	if !e.HasModTime() {
		return "-"
	}
	return e.ModifiedAt.Format("2006-01-02 15:04")
}

func percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func failedCount(n int) string {
	if n == 0 {
		return "0"
	}
	return styles.ErrorStyle.Render(fmt.Sprint(n))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return dash(*s)
}
