package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Stdout and Stderr receive all command output.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Success prints a success message
func Success(format string, args ...any) {
	_, _ = fmt.Fprint(Stdout, successStyle.Render("✓ "))
	_, _ = fmt.Fprintf(Stdout, format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	_, _ = fmt.Fprint(Stdout, warningStyle.Render("⚠ "))
	_, _ = fmt.Fprintf(Stdout, format+"\n", args...)
}

// Error prints an error message to Stderr.
func Error(format string, args ...any) {
	_, _ = fmt.Fprint(Stderr, errorStyle.Render("✗ "))
	_, _ = fmt.Fprintf(Stderr, format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...any) {
	_, _ = fmt.Fprint(Stdout, infoStyle.Render("ℹ "))
	_, _ = fmt.Fprintf(Stdout, format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...any) {
	_, _ = fmt.Fprintln(Stdout, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Primary prints a primary message
func Primary(format string, args ...any) {
	_, _ = fmt.Fprintln(Stdout, primaryStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	_, _ = fmt.Fprintln(Stdout)
	_, _ = fmt.Fprintln(Stdout, primaryStyle.Render(title))
	_, _ = fmt.Fprintln(Stdout, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
	_, _ = fmt.Fprintln(Stdout)
}

// JSON writes v as indented JSON.
func JSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StatusIcon returns a colored status icon
func StatusIcon(status string) string {
	switch status {
	case "applied":
		return successStyle.Render("✓")
	case "pending":
		return warningStyle.Render("○")
	case "failed":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}

// KindIcon returns the marker shown next to a favorite target of kind.
func KindIcon(kind string) string {
	switch kind {
	case "character":
		return primaryStyle.Render("☺")
	case "planet":
		return infoStyle.Render("◍")
	case "vehicle":
		return warningStyle.Render("➤")
	default:
		return mutedStyle.Render("•")
	}
}
