package components

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// Spinner is a loading indicator with a caption.
type Spinner struct {
	Model   spinner.Model
	Caption string
}

// NewSpinner creates a spinner showing caption.
func NewSpinner(caption string) Spinner {
	return Spinner{
		Model:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Spinner)),
		Caption: caption,
	}
}

// Tick starts the animation.
func (s Spinner) Tick() tea.Cmd {
	return s.Model.Tick
}

// Update advances the animation on spinner ticks.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	var cmd tea.Cmd
	s.Model, cmd = s.Model.Update(msg)
	return s, cmd
}

// View renders the spinner and caption centered in width x height.
func (s Spinner) View(width, height int) string {
	line := s.Model.View() + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(s.Caption)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, line)
}
