// Package cli holds the terminal plumbing shared by reduzer commands:
// styled output, prompts, progress bars and interrupt handling.
package cli

import "github.com/charmbracelet/lipgloss"

// Palette. Green reads as a GWP reduction and red as an increase, so the
// same colours carry verdicts, deltas and command status.
var (
	ReductionColor = lipgloss.Color("#3FA34D")
	IncreaseColor  = lipgloss.Color("#FF6B6B")
	CautionColor   = lipgloss.Color("#FFE66D")
	NeutralColor   = lipgloss.Color("#95E1D3")
	MutedColor     = lipgloss.Color("#666666")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ReductionColor)
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	SuccessStyle = lipgloss.NewStyle().Foreground(ReductionColor)
	WarningStyle = lipgloss.NewStyle().Foreground(CautionColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(IncreaseColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(NeutralColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	PromptStyle  = lipgloss.NewStyle().Bold(true).Foreground(NeutralColor)
)

// Status icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	InfoIcon    = "i"
)

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess renders a completed action.
func FormatSuccess(message string) string { return withIcon(SuccessStyle, SuccessIcon, message) }

// FormatError renders a failure.
func FormatError(message string) string { return withIcon(ErrorStyle, ErrorIcon, message) }

// FormatWarning renders something the user should look at.
func FormatWarning(message string) string { return withIcon(WarningStyle, WarningIcon, message) }

// FormatInfo renders a neutral note.
func FormatInfo(message string) string { return withIcon(InfoStyle, InfoIcon, message) }

// FormatTitle renders a report or section heading.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt) + " "
}

// FormatVerdict colours a comparison verdict: reductions green, the rest red.
func FormatVerdict(verdict string, reduction bool) string {
	if reduction {
		return SuccessStyle.Bold(true).Render(verdict)
	}
	return ErrorStyle.Bold(true).Render(verdict)
}
