// Package study is the flashcard review screen.
package study

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/summary"
	"github.com/abhisek/studyhall/internal/session"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

// StudyScreen drives a session.Study.
type StudyScreen struct {
	deps    screen.Deps
	set     api.StudySet
	machine *session.Study
	spinner components.Spinner
	errMsg  string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)
var _ screen.Closer = (*StudyScreen)(nil)

// New creates a study screen for set in the given mode.
func New(deps screen.Deps, set api.StudySet, mode api.ReviewMode) *StudyScreen {
	return &StudyScreen{
		deps:    deps,
		set:     set,
		machine: session.NewStudy(deps.Client, set.ID, mode, deps.SessionOptions()),
		spinner: components.NewSpinner("Loading flashcards..."),
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return tea.Batch(s.load(), s.spinner.Tick())
}

func (s *StudyScreen) load() tea.Cmd {
	op, err := s.machine.Load()
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	return screen.RunOp(op)
}

// Close ends the session. Results still in flight are discarded.
func (s *StudyScreen) Close() {
	s.machine.Close()
}

func (s *StudyScreen) Title() string {
	if s.machine.Mode() == api.ReviewDue {
		return "Review · " + s.set.Title
	}
	return "Study · " + s.set.Title
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	switch s.machine.Phase() {
	case session.StudyLoading:
		if s.machine.Err() != nil && !s.machine.Busy() {
			return []layout.KeyHint{{Key: "R", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
		}
	case session.StudyReviewing:
		if s.machine.Revealed() {
			return []layout.KeyHint{
				{Key: "1", Description: "Again"},
				{Key: "2", Description: "Good"},
				{Key: "3", Description: "Easy"},
				{Key: "S", Description: "Skip"},
				{Key: "Esc", Description: "End"},
			}
		}
		return []layout.KeyHint{
			{Key: "Space", Description: "Reveal"},
			{Key: "S", Description: "Skip"},
			{Key: "Esc", Description: "End"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.OpResultMsg:
		return s.handleResult(msg)

	case spinner.TickMsg:
		if s.machine.Phase() != session.StudyLoading && !s.machine.Busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *StudyScreen) handleResult(msg screen.OpResultMsg) (screen.Screen, tea.Cmd) {
	if err := s.machine.Apply(msg.Result); err != nil {
		if !errors.Is(err, session.ErrStale) && !errors.Is(err, session.ErrClosed) {
			s.errMsg = err.Error()
		}
		return s, nil
	}
	if cmd := screen.CheckAuth(s.machine.Err()); cmd != nil {
		return s, cmd
	}
	if s.machine.Phase() == session.StudyComplete {
		return s, s.finish()
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.machine.Busy() {
		return s, nil
	}
	key := msg.String()
	s.errMsg = ""

	switch s.machine.Phase() {
	case session.StudyLoading:
		if key == "r" && s.machine.Err() != nil {
			return s, tea.Batch(s.load(), s.spinner.Tick())
		}

	case session.StudyReviewing:
		switch key {
		case "space", "enter":
			if !s.machine.Revealed() {
				s.report(s.machine.Reveal())
			}
		case "s":
			s.report(s.machine.Skip())
			if s.machine.Phase() == session.StudyComplete {
				return s, s.finish()
			}
		case "1", "2", "3":
			n, _ := strconv.Atoi(key)
			op, err := s.machine.Grade(api.Grades[n-1])
			if err != nil {
				s.report(err)
				return s, nil
			}
			return s, tea.Batch(screen.RunOp(op), s.spinner.Tick())
		}

	case session.StudyEmpty:
		if key == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *StudyScreen) report(err error) {
	if err != nil {
		s.errMsg = api.Message(err)
	}
}

// finish logs the time spent and swaps this screen for its summary.
func (s *StudyScreen) finish() tea.Cmd {
	stats := s.machine.Stats()
	elapsed := s.machine.Elapsed()
	client, log, setID := s.deps.Client, s.deps.Logger, s.set.ID

	logTime := func() tea.Msg {
		if err := client.LogStudyTime(context.Background(), setID, elapsed); err != nil {
			log.Warn(context.Background(), "log study time failed", zap.String("set.id", setID.String()), zap.Error(err))
		}
		return nil
	}

	sum := summary.Summary{
		Heading:  "Review complete!",
		SetTitle: s.set.Title,
		Duration: elapsed.Round(time.Second),
		Stats: []summary.Stat{
			{Label: "Again", Value: strconv.Itoa(stats.Again), Tone: summary.Bad},
			{Label: "Good", Value: strconv.Itoa(stats.Good), Tone: summary.Good},
			{Label: "Easy", Value: strconv.Itoa(stats.Easy), Tone: summary.Good},
			{Label: "Skipped", Value: strconv.Itoa(stats.Skipped)},
		},
	}
	if stats.Failed > 0 {
		sum.Note = fmt.Sprintf("%d grade(s) could not be saved and will be asked again next time.", stats.Failed)
	}
	next := summary.New(sum)
	return tea.Batch(logTime, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} })
}
