package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Header   lipgloss.Style
	Dim      lipgloss.Style
	Step     lipgloss.Style
	Off      lipgloss.Style
	Outside  lipgloss.Style
	Cursor   lipgloss.Style
	Playhead lipgloss.Style
	Param    lipgloss.Style
	Selected lipgloss.Style
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Dialog   lipgloss.Style
}

// bar glyphs from the lowest to the highest pitch
var barGlyphs = []rune("▁▂▃▄▅▆▇█")

func NewTheme() *Theme {
	return &Theme{
		Header:   lipgloss.NewStyle().Foreground(lipgloss.Color("#80deea")).Bold(true),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#555")),
		Step:     lipgloss.NewStyle().Foreground(lipgloss.Color("#fff")),
		Off:      lipgloss.NewStyle().Foreground(lipgloss.Color("#666")),
		Outside:  lipgloss.NewStyle().Foreground(lipgloss.Color("#444")),
		Cursor:   lipgloss.NewStyle().Background(lipgloss.Color("#444")),
		Playhead: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd54f")).Bold(true),
		Param:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#fff")).Reverse(true),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("#80deea")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd54f")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ef5350")),
		Dialog: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fff")).
			Background(lipgloss.Color("#37474f")).
			Padding(0, 1),
	}
}
