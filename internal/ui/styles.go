package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	ColorCyan     = lipgloss.Color("#00FFFF")
	ColorGreen    = lipgloss.Color("#00FF00")
	ColorYellow   = lipgloss.Color("#FFFF00")
	ColorRed      = lipgloss.Color("#FF0000")
	ColorMagenta  = lipgloss.Color("#FF00FF")
	ColorWhite    = lipgloss.Color("#FFFFFF")
	ColorDarkGray = lipgloss.Color("8") // ANSI 8
)

// EnvironmentColor picks a colour for a deployment environment name
func EnvironmentColor(environment string) lipgloss.Color {
	switch environment {
	case "dev", "development", "test":
		return ColorGreen
	case "staging", "stage", "preprod", "uat":
		return ColorYellow
	case "prod", "production", "live":
		return ColorRed
	default:
		return ColorCyan
	}
}

// ConfigureColor picks the lipgloss colour profile for output w.
// Non-terminals and NO_COLOR get plain text.
func ConfigureColor(w io.Writer) {
	// Warp is slow to answer termenv's capability queries
	if os.Getenv("TERM_PROGRAM") == "WarpTerminal" {
		os.Setenv("TERM", "dumb")
		os.Setenv("COLORTERM", "truecolor")
	}

	// EnvColorProfile already answers Ascii for non-terminals and NO_COLOR
	lipgloss.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
}
