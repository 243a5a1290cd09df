package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#FF9900") // S3 orange
	mutedColor   = lipgloss.Color("#949AAB")
	successColor = lipgloss.Color("#2E8B57")
	errorColor   = lipgloss.Color("#D93025")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	keyStyle     = lipgloss.NewStyle().Foreground(mutedColor).Width(12)
)

// Header prints a styled header line.
func Header(icon, text string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", icon, headerStyle.Render(text))
}

// Blank prints a blank line.
func Blank() {
	fmt.Fprintln(os.Stderr)
}

// Summary prints key/value pairs, one per line.
func Summary(pairs ...string) {
	for i := 0; i < len(pairs); i += 2 {
		key := pairs[i]
		val := ""
		if i+1 < len(pairs) {
			val = pairs[i+1]
		}
		fmt.Fprintf(os.Stderr, "  %s %s\n", keyStyle.Render(key+":"), val)
	}
}

// Step prints a progress message, with an optional elapsed duration.
func Step(icon, msg string, d ...time.Duration) {
	if len(d) > 0 {
		fmt.Fprintf(os.Stderr, "%s %s %s\n", icon, msg, mutedStyle.Render(fmt.Sprintf("(%s)", d[0].Round(time.Millisecond))))
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", icon, msg)
}

// Success prints a success message.
func Success(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", successStyle.Render("✓"), msg)
}

// Error prints an error message.
func Error(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), msg)
}
