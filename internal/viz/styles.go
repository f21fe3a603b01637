package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles derives the view styles from a theme.
type styles struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	stable lipgloss.Style
	moving lipgloss.Style
	paused lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	cursor lipgloss.Style
	spark  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Graph),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(45),
		header: lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		stable: lipgloss.NewStyle().Foreground(t.Stable).Bold(true),
		moving: lipgloss.NewStyle().Foreground(t.Moving).Bold(true),
		paused: lipgloss.NewStyle().Foreground(t.Muted).Bold(true),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(2),
		cursor: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		spark:  lipgloss.NewStyle().Foreground(t.Graph),
	}
}

// Sparkline renders values as a row of block characters, sampling them to
// fit width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[min(max(idx, 0), len(chars)-1)])
	}
	return b.String()
}
