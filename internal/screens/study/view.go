package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/session"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	switch s.machine.Phase() {
	case session.StudyLoading:
		if err := s.machine.Err(); err != nil && !s.machine.Busy() {
			return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
				theme.ErrorText.Render("Could not load flashcards: "+api.Message(err)+"\n\nPress R to retry."))
		}
		return s.spinner.View(width, height)

	case session.StudyEmpty:
		text := "This set has no flashcards."
		if s.machine.Mode() == api.ReviewDue {
			text = "Nothing is due in this set today. Nice work!"
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render(text+"\n\nPress Enter to go back."))

	case session.StudyComplete:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Wrapping up..."))
	}

	return s.renderCard(width, height)
}

func (s *StudyScreen) renderCard(width, height int) string {
	card, _ := s.machine.Card()
	cw := components.ContentWidth(width)

	var b strings.Builder

	progress := components.NewStepBar("Card", s.machine.Index(), s.machine.Total(), cw)
	b.WriteString(progress.View())
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(card.Question)
	if card.Tag != "" {
		body = lipgloss.NewStyle().Foreground(theme.Secondary).Render("#"+card.Tag) + "\n\n" + body
	}
	style := theme.Card
	if s.machine.Revealed() {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw-8))
		body += "\n\n" + divider + "\n\n" + lipgloss.NewStyle().Foreground(theme.Text).Render(card.Answer)
		style = theme.RevealedCard
	} else {
		body += "\n\n" + theme.Hint.Render("Press Space to reveal the answer")
	}
	b.WriteString(style.Width(cw).Render(body))
	b.WriteString("\n\n")

	switch {
	case s.machine.Busy():
		b.WriteString(s.spinner.Model.View() + theme.Hint.Render(" Saving..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	case s.machine.Err() != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render(
			"Last grade was not saved: " + api.Message(s.machine.Err())))
	case s.machine.Revealed():
		b.WriteString(renderGradeButtons())
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

func renderGradeButtons() string {
	labels := map[api.Grade]string{api.GradeAgain: "Again", api.GradeGood: "Good", api.GradeEasy: "Easy"}
	parts := make([]string, 0, len(api.Grades))
	for i, g := range api.Grades {
		parts = append(parts, theme.ButtonInactive.Render(fmt.Sprintf("%d %s", i+1, labels[g])))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
