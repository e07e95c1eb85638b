// Package arena is the free-text challenge screen.
package arena

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

// ArenaScreen drives a session.Arena.
type ArenaScreen struct {
	deps    screen.Deps
	set     api.StudySet
	machine *session.Arena
	input   components.TextArea
	spinner components.Spinner
	errMsg  string
}

var _ screen.Screen = (*ArenaScreen)(nil)
var _ screen.KeyHintProvider = (*ArenaScreen)(nil)
var _ screen.Closer = (*ArenaScreen)(nil)

// New creates an arena screen for set.
func New(deps screen.Deps, set api.StudySet) *ArenaScreen {
	return &ArenaScreen{
		deps:    deps,
		set:     set,
		machine: session.NewArena(deps.Client, set.ID, deps.SessionOptions()),
		input:   components.NewTextArea("Explain your reasoning..."),
		spinner: components.NewSpinner("Loading challenge..."),
	}
}

func (s *ArenaScreen) Init() tea.Cmd {
	return tea.Batch(s.run(s.machine.Load()), s.input.Init())
}

func (s *ArenaScreen) run(op session.Op, err error) tea.Cmd {
	if err != nil {
		s.errMsg = api.Message(err)
		return nil
	}
	s.errMsg = ""
	if op == nil {
		return nil
	}
	return tea.Batch(screen.RunOp(op), s.spinner.Tick())
}

// Close ends the session.
func (s *ArenaScreen) Close() {
	s.machine.Close()
}

func (s *ArenaScreen) Title() string {
	return "Arena · " + s.set.Title
}

func (s *ArenaScreen) KeyHints() []layout.KeyHint {
	if s.machine.Busy() {
		return []layout.KeyHint{{Key: "Esc", Description: "Leave"}}
	}
	switch s.machine.Phase() {
	case session.ArenaLoading:
		return []layout.KeyHint{{Key: "R", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
	case session.ArenaResponding:
		return []layout.KeyHint{{Key: "Ctrl+S", Description: "Submit"}, {Key: "Esc", Description: "Leave"}}
	case session.ArenaGraded:
		return []layout.KeyHint{{Key: "N", Description: "New challenge"}, {Key: "Enter", Description: "Done"}}
	case session.ArenaEmpty:
		return []layout.KeyHint{{Key: "N", Description: "Generate"}, {Key: "Enter", Description: "Back"}}
	}
	return nil
}

func (s *ArenaScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
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
		if s.machine.Phase() == session.ArenaResponding && s.input.Value() != s.machine.Draft() {
			s.input.SetValue(s.machine.Draft())
		}
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

	if s.machine.Phase() == session.ArenaResponding {
		return s, s.edit(msg)
	}
	return s, nil
}

// edit forwards msg to the text area and keeps the machine's draft in step
// with what is on screen.
func (s *ArenaScreen) edit(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == s.machine.Draft() {
		return cmd
	}
	if err := s.machine.SetDraft(s.input.Value()); err != nil {
		s.errMsg = api.Message(err)
	}
	return cmd
}

func (s *ArenaScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.machine.Phase() {
	case session.ArenaLoading:
		if key == "r" {
			return s, s.run(s.machine.Load())
		}

	case session.ArenaResponding:
		if key == "ctrl+s" {
			if err := s.machine.SetDraft(s.input.Value()); err != nil {
				s.errMsg = api.Message(err)
				return s, nil
			}
			ch, _ := s.machine.Challenge()
			s.spinner.Caption = "Grading your response..."
			return s, s.run(s.machine.Submit(ch.ID))
		}
		return s, s.edit(msg)

	case session.ArenaGraded, session.ArenaEmpty:
		switch key {
		case "n", "g":
			s.spinner.Caption = "Generating a new challenge..."
			cmd := s.run(s.machine.Regenerate())
			if s.machine.Phase() == session.ArenaLoading {
				s.input.SetValue("")
			}
			return s, cmd
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}
