package arena

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/session"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

func (s *ArenaScreen) View(width, height int) string {
	place := func(content string) string {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
	}
	cw := components.ContentWidth(width)

	switch s.machine.Phase() {
	case session.ArenaLoading:
		if err := s.machine.Err(); err != nil && !s.machine.Busy() {
			return place(theme.ErrorText.Render("Could not load the challenge: " + api.Message(err) + "\n\nPress R to retry."))
		}
		return s.spinner.View(width, height)

	case session.ArenaGrading:
		return s.spinner.View(width, height)

	case session.ArenaEmpty:
		return place(theme.Hint.Render("No challenge is available for this set yet.\n\nPress N to generate one, or Enter to go back.") +
			s.renderError())

	case session.ArenaGraded:
		return place(s.renderGrade(cw))
	}

	var b strings.Builder
	b.WriteString(s.renderScenario(cw))
	b.WriteString("\n\n")
	input := s.input
	input.Resize(cw, max(height/4, 4))
	b.WriteString(components.Panel("Your response", input.View(), cw, true))
	b.WriteString(s.renderError())
	return place(b.String())
}

func (s *ArenaScreen) renderScenario(cw int) string {
	ch, _ := s.machine.Challenge()
	content := lipgloss.NewStyle().Foreground(theme.Text).Width(cw - 4).Render(ch.Scenario)
	if ch.RelatedTopicTag != "" {
		content += "\n\n" + theme.Hint.Render("Topic: "+ch.RelatedTopicTag)
	}
	return components.Panel("Scenario", content, cw, false)
}

func (s *ArenaScreen) renderGrade(cw int) string {
	g, _ := s.machine.Grade()
	ch, _ := s.machine.Challenge()
	body := lipgloss.NewStyle().Foreground(theme.Text).Width(cw - 4)

	var b strings.Builder
	b.WriteString(s.renderScenario(cw))
	b.WriteString("\n\n")

	score := theme.ScoreStyle(g.AIScore).Render(fmt.Sprintf("Score: %d/100", g.AIScore))
	b.WriteString(components.Panel("Assessment", score+"\n\n"+body.Render(g.AIFeedback), cw, true))
	b.WriteString("\n\n")
	b.WriteString(components.Panel("Ideal response", body.Render(ch.IdealResponse), cw, false))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Press N for a new challenge, or Enter to finish."))
	b.WriteString(s.renderError())
	return b.String()
}

func (s *ArenaScreen) renderError() string {
	if s.errMsg != "" {
		return "\n" + theme.ErrorText.Render(s.errMsg)
	}
	err := s.machine.Err()
	if err == nil {
		return ""
	}
	switch s.machine.Phase() {
	case session.ArenaResponding:
		return "\n" + theme.ErrorText.Render("Grading failed: "+api.Message(err)+". Your draft is kept; press Ctrl+S to retry.")
	case session.ArenaGraded, session.ArenaEmpty:
		return "\n\n" + theme.ErrorText.Render("Could not generate a new challenge: "+api.Message(err))
	}
	return ""
}
