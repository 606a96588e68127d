package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"

	"gestctl/internal/smoketest"
)

// Palette
var (
	successColor = lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#5FD787"}
	warningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FFD75F"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#B42318", Dark: "#FF5F5F"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#1F5FBF", Dark: "#87AFFF"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8A8A8A"}
)

// Styles shared by the commands.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(infoColor)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(warningColor)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	MutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// Initialize fixes the background assumption instead of querying the terminal.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// Disabled reports whether NO_COLOR asks for plain output.
func Disabled() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// GradeStyle returns the style a verdict is rendered with.
func GradeStyle(g smoketest.Grade) lipgloss.Style {
	switch g {
	case smoketest.GradeExcellent, smoketest.GradeGood:
		return SuccessStyle
	case smoketest.GradeWarning:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// Render applies style unless colors are disabled.
func Render(style lipgloss.Style, s string) string {
	if Disabled() {
		return s
	}
	return style.Render(s)
}

// StyleVerdict renders a scorecard verdict in the colour of its grade.
func StyleVerdict(g smoketest.Grade, verdict string) string {
	return Render(GradeStyle(g), verdict)
}
