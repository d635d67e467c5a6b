package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/glimpse/internal/domain"
)

// Theme holds the styles shared by every screen. Pass, Fail and Warn color
// step marks; Warn is used for optional steps that failed.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style

	Pass lipgloss.Style
	Fail lipgloss.Style
	Warn lipgloss.Style
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("63")
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		Pass: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Fail: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Warn: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func (t Theme) stepMark(s domain.StepResult) string {
	switch {
	case s.Status == domain.StepPassed:
		return t.Pass.Render("✓")
	case s.Status == domain.StepSkipped:
		return t.Help.Render("-")
	case s.Optional:
		return t.Warn.Render("!")
	default:
		return t.Fail.Render("✗")
	}
}
