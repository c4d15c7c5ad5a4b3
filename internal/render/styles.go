package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	gainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))
)

// heatColors maps backend intensity buckets to background colors.
var heatColors = map[string]lipgloss.Color{
	"strong_positive": "#047857",
	"positive":        "#10B981",
	"mild_positive":   "#6EE7B7",
	"neutral":         "#6B7280",
	"mild_negative":   "#FCA5A5",
	"negative":        "#EF4444",
	"strong_negative": "#B91C1C",
}

func heatStyle(intensity string) lipgloss.Style {
	c, ok := heatColors[intensity]
	if !ok {
		c = heatColors["neutral"]
	}
	return lipgloss.NewStyle().Background(c).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
}

// signed renders v with a sign, colored by direction.
func signed(v float64, format string) string {
	s := fmt.Sprintf("%+"+format, v)
	switch {
	case v > 0:
		return gainStyle.Render(s)
	case v < 0:
		return lossStyle.Render(s)
	}
	return mutedStyle.Render(s)
}

func money(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}
