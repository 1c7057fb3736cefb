package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	modes  map[string]lipgloss.Style
	done   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Secondary),
		stats:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(46),
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		graph:  lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		modes: map[string]lipgloss.Style{
			"home":     lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
			"scanning": lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
			"tracking": lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		},
		done: lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

func (s styles) mode(name string) string {
	st, ok := s.modes[name]
	if !ok {
		st = s.value
	}
	return st.Render(strings.ToUpper(name))
}

// progressBar renders a fraction in [0,1] as a bar of the given width.
func progressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
