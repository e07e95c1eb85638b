package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/session"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	place := func(content string) string {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
	}

	switch s.machine.Phase() {
	case session.QuizLoading:
		if err := s.machine.Err(); err != nil && !s.machine.Busy() {
			return place(theme.ErrorText.Render("Could not load the quiz: " + api.Message(err) + "\n\nPress R to retry."))
		}
		return s.spinner.View(width, height)

	case session.QuizSubmitting:
		if err := s.machine.Err(); err != nil && !s.machine.Busy() {
			return place(theme.ErrorText.Render(fmt.Sprintf(
				"Could not submit your %d answers: %s\n\nYour answers are kept. Press R to retry.",
				len(s.machine.Answers()), api.Message(err))))
		}
		return s.spinner.View(width, height)

	case session.QuizEmpty:
		return place(theme.Hint.Render("No quiz is available for this set yet.\n\nPress G to generate one, or Enter to go back.") +
			s.renderError())

	case session.QuizScored:
		return place(s.renderScore() + s.renderError())
	}

	return place(s.renderQuestion(width))
}

func (s *QuizScreen) renderQuestion(width int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	progress := components.NewStepBar("Question", s.machine.Index(), s.machine.Total(), cw)
	b.WriteString(progress.View())
	b.WriteString("\n\n")

	b.WriteString(theme.Card.Width(cw).Render(strings.TrimRight(s.choice.View(), "\n")))
	b.WriteString("\n\n")

	if fb, ok := s.machine.Feedback(); ok {
		if fb.Correct {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("Not quite. The answer is " + fb.CorrectAnswer + "."))
		}
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Press Enter for the next question"))
	}
	b.WriteString(s.renderError())
	return b.String()
}

func (s *QuizScreen) renderScore() string {
	res, _ := s.machine.Result()
	pct := s.machine.Percent()

	var b strings.Builder
	b.WriteString(theme.Title.Render("Quiz complete!"))
	b.WriteString("\n\n")
	b.WriteString(theme.ScoreStyle(pct).Render(fmt.Sprintf("%d%%", pct)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
		fmt.Sprintf("%d of %d correct", res.Correct, res.Answered)))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press G for new questions, or Enter to finish."))
	return b.String()
}

func (s *QuizScreen) renderError() string {
	if s.errMsg != "" {
		return "\n" + theme.ErrorText.Render(s.errMsg)
	}
	if err := s.machine.Err(); err != nil && s.machine.Phase() != session.QuizLoading && s.machine.Phase() != session.QuizSubmitting {
		return "\n\n" + theme.ErrorText.Render("Could not generate new questions: "+api.Message(err))
	}
	return ""
}
