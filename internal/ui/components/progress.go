package components

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

const minBarWidth = 4

// ProgressBar is a one-line bar with a label on the left and an optional
// percentage on the right.
type ProgressBar struct {
	Label       string
	Fraction    float64
	ShowPercent bool
	Width       int
	Fill        color.Color
}

// NewStepBar tracks position within a session, e.g. "Card 2/5".
// The bar fills with the items already behind the current one.
func NewStepBar(noun string, index, total, width int) ProgressBar {
	total = max(total, 1)
	index = min(max(index, 0), total-1)
	return ProgressBar{
		Label:    fmt.Sprintf("%s %d/%d", noun, index+1, total),
		Fraction: float64(index) / float64(total),
		Width:    width,
		Fill:     theme.Secondary,
	}
}

// NewScoreBar shows a 0-100 score, colored by how good it is.
func NewScoreBar(label string, score float64, width int) ProgressBar {
	score = math.Max(0, math.Min(score, 100))
	return ProgressBar{
		Label:       label,
		Fraction:    score / 100,
		ShowPercent: true,
		Width:       width,
		Fill:        theme.ScoreColor(int(math.Round(score))),
	}
}

// Filled is the number of filled cells for a bar barWidth cells wide.
func (p ProgressBar) Filled(barWidth int) int {
	return min(max(int(float64(barWidth)*p.Fraction), 0), barWidth)
}

// View renders the bar.
func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label))
		b.WriteString("  ")
	}

	suffix := ""
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3d%%", int(math.Round(p.Fraction*100))))
	}

	barWidth := max(p.Width-lipgloss.Width(b.String())-lipgloss.Width(suffix), minBarWidth)
	filled := p.Filled(barWidth)

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	b.WriteString(lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)))
	b.WriteString(lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)))
	b.WriteString(suffix)
	return b.String()
}
