package tui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/squarehq/square/pkg/domain"
)

// renderShimmerLogo renders "S Q U A R E" as a flowing wave of blue light,
// deep navy (#11306b) to bright sky (#60a5fa).
func renderShimmerLogo(frame int) string {
	const text = "SQUARE"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// One smooth wave advancing through the text
		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Deep navy (17, 48, 107) -> bright sky (96, 165, 250)
		r := clampByte(17 + b*(96-17))
		g := clampByte(48 + b*(165-48))
		bl := clampByte(107 + b*(250-107))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b8bcc8"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa")).
			Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7284"))

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#565d6e")).
				Italic(true)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2b3244")).
			Padding(0, 1)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("#60a5fa"))

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#60a5fa")).
			Padding(1, 2)
)

// statusStyle colors a column badge the way the web app does: red for todo,
// yellow for in-progress, green for done.
func statusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusTodo:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true)
	case domain.StatusInProgress:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#facc15")).Bold(true)
	case domain.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	}
	return normalStyle
}

// helpEntry renders a key binding hint for the help line.
func helpEntry(key, desc string) string {
	return accentStyle.Render(key) + " " + dimStyle.Render(desc)
}
