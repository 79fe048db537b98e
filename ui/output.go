package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	warningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	infoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(10).Foreground(ColorMuted)
)

func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(SymbolSuccess+" "+msg))
}

func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(SymbolError+" "+msg))
}

func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(SymbolWarning+" "+msg))
}

func PrintInfo(w io.Writer, msg string) {
	fmt.Fprintln(w, infoStyle.Render(SymbolInfo+" "+msg))
}

func PrintMuted(w io.Writer, msg string) {
	fmt.Fprintln(w, mutedStyle.Render(msg))
}

// PrintField prints an aligned "label  value" line.
func PrintField(w io.Writer, label, value string) {
	if value == "" {
		value = Muted("(unknown)")
	}
	fmt.Fprintln(w, "  "+labelStyle.Render(label)+" "+value)
}

func Muted(s string) string {
	return mutedStyle.Render(s)
}

func Bold(s string) string {
	return boldStyle.Render(s)
}
