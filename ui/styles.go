// Package ui holds the terminal styling for command output.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	ColorSuccess = lipgloss.Color("#22c55e")
	ColorError   = lipgloss.Color("#ef4444")
	ColorWarning = lipgloss.Color("#eab308")
	ColorInfo    = lipgloss.Color("#06b6d4")
	ColorMuted   = lipgloss.Color("#6b7280")
)

var (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

func init() {
	initColorProfile()
}

// NO_COLOR (https://no-color.org/) and dumb terminals get plain text.
func initColorProfile() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		DisableColor()
	}
}

// DisableColor switches all styles to plain text.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
