package report

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feedsight/internal/analysis"
)

// Palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Purple
	Accent  = lipgloss.Color("#F97316") // Orange
	Success = lipgloss.Color("#22C55E") // Green
	Error   = lipgloss.Color("#F43F5E") // Rose
	Warning = lipgloss.Color("#EAB308") // Amber
	TextDim = lipgloss.Color("#94A3B8") // Slate
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent)

	labelStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)
)

func sentimentStyle(s analysis.Sentiment) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case analysis.SentimentPositive:
		return base.Foreground(Success)
	case analysis.SentimentNegative:
		return base.Foreground(Error)
	case analysis.SentimentMixed:
		return base.Foreground(Warning)
	default:
		return base.Foreground(TextDim)
	}
}
