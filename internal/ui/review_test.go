package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/file-organizer/internal/classify"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func reviewItems() []classify.FileClassification {
	return []classify.FileClassification{
		{Filename: "a.jpg", Filepath: "/home/me/Downloads/a.jpg", SuggestedFolder: "Imagens", Selected: true},
		{Filename: "b.pdf", SuggestedFolder: "Documentos/Logs"},
		{Filename: "c.zip", SuggestedFolder: "Arquivos Compactados", IsDuplicate: true},
	}
}

func press(m *ReviewModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func TestReviewToggleAndConfirm(t *testing.T) {
	items := reviewItems()
	m := NewReviewModel(items)

	cmd := press(m, "down", "space", "j", "space", "k", "space", "enter")
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	if !m.Confirmed() {
		t.Fatal("expected confirmation")
	}

	got := m.Items()
	want := []bool{true, false, true}
	for i := range want {
		if got[i].Selected != want[i] {
			t.Errorf("item %d selected = %v, want %v", i, got[i].Selected, want[i])
		}
	}

	// the caller's slice is untouched
	if items[2].Selected {
		t.Error("review modified the input slice")
	}
}

func TestReviewToggleAll(t *testing.T) {
	m := NewReviewModel(reviewItems())

	press(m, "a")
	if m.Selected() != 3 {
		t.Errorf("after a: %d selected, want 3", m.Selected())
	}
	press(m, "a")
	if m.Selected() != 0 {
		t.Errorf("after a twice: %d selected, want 0", m.Selected())
	}
}

func TestReviewCancel(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m := NewReviewModel(reviewItems())
		if cmd := press(m, k); cmd == nil {
			t.Errorf("%s should quit", k)
		}
		if m.Confirmed() {
			t.Errorf("%s should not confirm", k)
		}
		if m.View() != "" {
			t.Errorf("view after %s should be empty", k)
		}
	}
}

func TestReviewCursorBounds(t *testing.T) {
	m := NewReviewModel(reviewItems())
	press(m, "up", "up", "G", "down", "down")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	press(m, "g")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestReviewScrollsWithSmallTerminal(t *testing.T) {
	items := make([]classify.FileClassification, 30)
	for i := range items {
		items[i].Filename = "f.txt"
	}
	m := NewReviewModel(items)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 15}) // 7 rows visible

	press(m, "G")
	if m.offset != 23 {
		t.Errorf("offset = %d, want 23", m.offset)
	}
	press(m, "g")
	if m.offset != 0 {
		t.Errorf("offset = %d, want 0", m.offset)
	}
}

func TestReviewView(t *testing.T) {
	m := NewReviewModel(reviewItems())
	view := m.View()

	for _, want := range []string{"Review moves", "a.jpg", "Imagens", "duplicate", "/home/me/Downloads/a.jpg", "1 of 3 selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
