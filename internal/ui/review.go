package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/file-organizer/internal/classify"
	"github.com/fenilsonani/file-organizer/internal/ui/styles"
	"github.com/fenilsonani/file-organizer/internal/ui/utils"
)

// reviewChrome is the number of lines the review screen uses around the list
const reviewChrome = 8

// ReviewModel lets the user pick which classified files get moved
type ReviewModel struct {
	items     []classify.FileClassification
	cursor    int
	offset    int
	width     int
	height    int
	confirmed bool
	cancelled bool
}

// NewReviewModel creates a review over a copy of items
func NewReviewModel(items []classify.FileClassification) *ReviewModel {
	return &ReviewModel{
		items: append([]classify.FileClassification(nil), items...),
	}
}

// Items returns the classifications with the user's selection applied
func (m *ReviewModel) Items() []classify.FileClassification {
	return m.items
}

// Confirmed reports whether the user accepted the selection
func (m *ReviewModel) Confirmed() bool {
	return m.confirmed
}

// Selected returns how many items are selected
func (m *ReviewModel) Selected() int {
	n := 0
	for _, it := range m.items {
		if it.Selected {
			n++
		}
	}
	return n
}

// Init initializes the review
func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			if len(m.items) > 0 {
				m.cursor = len(m.items) - 1
			}
		case " ", "space":
			if m.cursor < len(m.items) {
				m.items[m.cursor].Selected = !m.items[m.cursor].Selected
			}
		case "a":
			// Select everything unless everything is already selected
			all := m.Selected() < len(m.items)
			for i := range m.items {
				m.items[i].Selected = all
			}
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
		m.scroll()
	}
	return m, nil
}

func (m *ReviewModel) pageSize() int {
	if m.height == 0 {
		return 20
	}
	return utils.PageSize(m.height, reviewChrome)
}

// scroll keeps the cursor inside the visible window
func (m *ReviewModel) scroll() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
}

// View renders the review
func (m *ReviewModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Review moves"))
	b.WriteString("\n")
	b.WriteString(utils.SizeWarningBanner(m.width, m.height))

	if len(m.items) == 0 {
		b.WriteString(styles.DimStyle.Render("Nothing to review"))
		b.WriteString("\n")
	}

	nameWidth := 40
	if m.width > 0 {
		nameWidth = m.width / 3
	}

	end := m.offset + m.pageSize()
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.offset; i < end; i++ {
		it := m.items[i]

		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("› ")
		}
		box := styles.UncheckedBox()
		if it.Selected {
			box = styles.CheckedBox()
		}

		target := it.SuggestedFolder
		if it.SuggestedName != nil && *it.SuggestedName != "" {
			target += "/" + *it.SuggestedName
		}

		line := fmt.Sprintf("%s%s %-*s → %s %s",
			cursor, box,
			nameWidth, utils.TruncateString(it.Filename, nameWidth),
			styles.CategoryStyle.Render(target),
			styles.DimStyle.Render(fmt.Sprintf("%.0f%%", it.Confidence*100)))
		if it.IsDuplicate {
			line += " " + styles.WarningStyle.Render("duplicate")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.cursor < len(m.items) {
		pathWidth := 80
		if m.width > 0 {
			pathWidth = m.width - 2
		}
		b.WriteString(styles.FilePathStyle.Render(utils.TruncatePath(m.items[m.cursor].Filepath, pathWidth)))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("%d of %d selected", m.Selected(), len(m.items)))
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ move • space toggle • a toggle all • enter confirm • q cancel"))
	return b.String()
}

// RunReview shows items full screen on out and returns them with the
// user's selection. ok is false when the user cancelled.
func RunReview(items []classify.FileClassification, out *os.File) (reviewed []classify.FileClassification, ok bool, err error) {
	m := NewReviewModel(items)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return nil, false, fmt.Errorf("error running review: %w", err)
	}
	return m.Items(), m.Confirmed(), nil
}
