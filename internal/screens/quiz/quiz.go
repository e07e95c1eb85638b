// Package quiz is the multiple-choice quiz screen.
package quiz

import (
	"errors"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/session"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

// QuizScreen drives a session.Quiz.
type QuizScreen struct {
	deps    screen.Deps
	set     api.StudySet
	machine *session.Quiz
	choice  components.MultiChoice
	// choiceFor is the question id the choice widget was built for.
	choiceFor api.ID
	spinner   components.Spinner
	errMsg    string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Closer = (*QuizScreen)(nil)

// New creates a quiz screen for set.
func New(deps screen.Deps, set api.StudySet) *QuizScreen {
	return &QuizScreen{
		deps:    deps,
		set:     set,
		machine: session.NewQuiz(deps.Client, set.ID, deps.SessionOptions()),
		spinner: components.NewSpinner("Loading quiz..."),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.run(s.machine.Load())
}

// run starts op, or reports err inline.
func (s *QuizScreen) run(op session.Op, err error) tea.Cmd {
	if err != nil {
		s.errMsg = api.Message(err)
		return nil
	}
	s.errMsg = ""
	if op == nil {
		s.syncChoice()
		return nil
	}
	return tea.Batch(screen.RunOp(op), s.spinner.Tick())
}

// Close ends the session. Results still in flight are discarded.
func (s *QuizScreen) Close() {
	s.machine.Close()
}

func (s *QuizScreen) Title() string {
	return "Quiz · " + s.set.Title
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.machine.Busy() {
		return []layout.KeyHint{{Key: "Esc", Description: "Leave"}}
	}
	switch s.machine.Phase() {
	case session.QuizLoading:
		return []layout.KeyHint{{Key: "R", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
	case session.QuizAnswering:
		if s.machine.Answered() {
			return []layout.KeyHint{{Key: "Enter", Description: "Next"}, {Key: "Esc", Description: "Leave"}}
		}
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "1-4", Description: "Pick"},
			{Key: "Esc", Description: "Leave"},
		}
	case session.QuizSubmitting:
		return []layout.KeyHint{{Key: "R", Description: "Retry submit"}, {Key: "Esc", Description: "Leave"}}
	case session.QuizScored, session.QuizEmpty:
		return []layout.KeyHint{{Key: "G", Description: "New questions"}, {Key: "Enter", Description: "Done"}}
	}
	return nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.OpResultMsg:
		if err := s.machine.Apply(msg.Result); err != nil {
			if !errors.Is(err, session.ErrStale) && !errors.Is(err, session.ErrClosed) {
				s.errMsg = err.Error()
			}
			return s, nil
		}
		if cmd := screen.CheckAuth(s.machine.Err()); cmd != nil {
			return s, cmd
		}
		s.syncChoice()
		return s, nil

	case spinner.TickMsg:
		if !s.machine.Busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.machine.Busy() {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.machine.Phase() {
	case session.QuizLoading:
		if key == "r" {
			return s, s.run(s.machine.Load())
		}

	case session.QuizAnswering:
		if s.machine.Answered() {
			if key == "enter" || key == "n" {
				s.spinner.Caption = "Scoring your answers..."
				return s, s.run(s.machine.Next())
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if opt, ok := s.choice.Chosen(); ok {
			if err := s.machine.Select(opt); err != nil {
				s.errMsg = api.Message(err)
				s.choice.Reset()
				return s, cmd
			}
			s.errMsg = ""
			if fb, ok := s.machine.Feedback(); ok {
				s.choice.Reveal(fb.CorrectAnswer)
			}
		}
		return s, cmd

	case session.QuizSubmitting:
		if key == "r" {
			s.spinner.Caption = "Scoring your answers..."
			return s, s.run(s.machine.Submit())
		}

	case session.QuizScored, session.QuizEmpty:
		switch key {
		case "g":
			s.spinner.Caption = "Generating new questions..."
			return s, s.run(s.machine.Regenerate())
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// syncChoice rebuilds the choice widget when the question changes.
func (s *QuizScreen) syncChoice() {
	q, ok := s.machine.Question()
	if !ok {
		s.choiceFor = ""
		return
	}
	if s.choiceFor == q.ID && s.choice.Question == q.Question {
		return
	}
	s.choiceFor = q.ID
	s.choice = components.NewMultiChoice(q.Question, q.Options)
	if fb, ok := s.machine.Feedback(); ok {
		for i, opt := range q.Options {
			if opt == fb.Selected {
				s.choice.Selected = i
				s.choice.Submitted = true
				s.choice.ChosenIndex = i
			}
		}
		s.choice.Reveal(fb.CorrectAnswer)
	}
}
