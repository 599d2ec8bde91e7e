package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/file-organizer/internal/ui/styles"
)

const (
	// MinTerminalWidth is the minimum recommended terminal width
	MinTerminalWidth = 80
	// MinTerminalHeight is the minimum recommended terminal height
	MinTerminalHeight = 24
)

// TruncatePath shortens path to at most maxWidth runes, keeping the file
// name and dropping directories from the middle
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) <= maxWidth {
		return path
	}
	if maxWidth < 4 {
		return "..."
	}

	sep := string(filepath.Separator)
	file := []rune(filepath.Base(path))
	if len(file)+5 > maxWidth {
		if len(file) > maxWidth-3 {
			file = file[len(file)-(maxWidth-3):]
		}
		return "..." + string(file)
	}

	// Keep whole leading directories that fit before "/.../file"
	prefix := string(runes[:maxWidth-len(file)-5])
	idx := strings.LastIndex(prefix, sep)
	if idx <= 0 {
		return "..." + sep + string(file)
	}
	return prefix[:idx] + sep + "..." + sep + string(file)
}

// TruncateString truncates a string to maxLen runes, adding an ellipsis
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

// PageSize returns how many list rows fit in a terminal of the given height
// once reserved lines are taken, never fewer than 5
func PageSize(terminalHeight, reserved int) int {
	size := terminalHeight - reserved
	if size < 5 {
		size = 5
	}
	return size
}

// IsTerminalTooSmall checks if the terminal is below minimum recommended size
func IsTerminalTooSmall(width, height int) bool {
	return width < MinTerminalWidth || height < MinTerminalHeight
}

// SizeWarningBanner returns a warning line when the terminal is too small
func SizeWarningBanner(width, height int) string {
	if width == 0 || !IsTerminalTooSmall(width, height) {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.WarningStyle.Render("⚠️  Terminal too small, 80x24 or larger recommended"))
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf(" (current: %dx%d)", width, height)))
	b.WriteString("\n\n")
	return b.String()
}
