package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks are ordered from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline renders data on a fixed 0-100 scale, right aligned in width
// cells: the newest sample is the last cell and missing history is blank.
func sparkline(data []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(data)))
	for _, v := range data {
		normalized := math.Max(0, math.Min(1, v/100))
		idx := int(math.Round(normalized * float64(len(sparkBlocks)-1)))
		b.WriteRune(sparkBlocks[idx])
	}

	out := b.String()
	if color == "" {
		return out
	}
	return lipgloss.NewStyle().Foreground(color).Render(out)
}
