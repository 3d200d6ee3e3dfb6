package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Colour palette for terminal output.
var (
	colourPrimary   = lipgloss.Color("#7C3AED") // Purple
	colourSecondary = lipgloss.Color("#06B6D4") // Cyan
	colourMuted     = lipgloss.Color("#6C7086")
	colourSuccess   = lipgloss.Color("#A6E3A1")
	colourWarning   = lipgloss.Color("#F9E2AF")
	colourError     = lipgloss.Color("#F38BA8")
)

// outputStyles renders progress and answers. The zero value prints plain text.
type outputStyles struct {
	Title   lipgloss.Style
	Tool    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func plainStyles() outputStyles {
	s := lipgloss.NewStyle()
	return outputStyles{Title: s, Tool: s, Muted: s, Success: s, Warning: s, Error: s}
}

func colourStyles() outputStyles {
	return outputStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		Tool:    lipgloss.NewStyle().Foreground(colourSecondary),
		Muted:   lipgloss.NewStyle().Foreground(colourMuted),
		Success: lipgloss.NewStyle().Foreground(colourSuccess),
		Warning: lipgloss.NewStyle().Foreground(colourWarning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(colourError),
	}
}

// stylesFor colours output only when w is a terminal.
func stylesFor(w io.Writer) outputStyles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return colourStyles()
	}
	return plainStyles()
}
