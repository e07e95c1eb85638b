package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for dashboard panels.
// All panels are rendered at this width so they visually align.
func ContentWidth(frameWidth int) int {
	// Leave room for panel border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Panel wraps content in a titled rounded-border box at content width cw.
func Panel(title, content string, cw int, focused bool) string {
	border := theme.Border
	if focused {
		border = theme.Primary
	}
	heading := lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cw - 2).
		Padding(0, 1).
		Render(heading + "\n" + content)
}

// Dialog renders a centered confirmation box with the given buttons.
func Dialog(message string, buttons []Button, width, height int) string {
	row := make([]string, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, b.View())
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 3).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(message) +
			"\n\n" + lipgloss.JoinHorizontal(lipgloss.Center, row...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
