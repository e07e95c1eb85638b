package study

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/mockbackend"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/screentest"
	"github.com/abhisek/studyhall/internal/screens/summary"
	"github.com/abhisek/studyhall/internal/session"
)

func loadedStudy(t *testing.T, mode api.ReviewMode) (*StudyScreen, *screentest.Env) {
	t.Helper()
	env := screentest.LoggedIn(t, mockbackend.Options{})
	set := env.Sets(t)[0]
	s := New(env.Deps, set, mode)
	got, _ := screentest.Run(s, s.Init())
	return got.(*StudyScreen), env
}

func TestStudyScreen_Title(t *testing.T) {
	s, _ := loadedStudy(t, api.ReviewAll)
	if s.Title() != "Study · Biology Chapter 4" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestStudyScreen_LoadsFirstCard(t *testing.T) {
	s, _ := loadedStudy(t, api.ReviewAll)
	if s.machine.Phase() != session.StudyReviewing {
		t.Fatalf("phase = %v, want reviewing", s.machine.Phase())
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "What is Mitochondria?") {
		t.Error("expected first question in view")
	}
	if strings.Contains(view, "powerhouse") {
		t.Error("answer must be hidden before reveal")
	}
}

func TestStudyScreen_GradeBeforeRevealRejected(t *testing.T) {
	s, _ := loadedStudy(t, api.ReviewAll)

	got, _ := screentest.Press(s, "2")
	s = got.(*StudyScreen)
	if s.machine.Index() != 0 {
		t.Error("grading a hidden card must not advance")
	}
	if s.errMsg == "" {
		t.Error("expected an inline message")
	}
}

func TestStudyScreen_RevealAndGradeAdvances(t *testing.T) {
	s, _ := loadedStudy(t, api.ReviewAll)

	got, _ := screentest.Press(s, "space")
	s = got.(*StudyScreen)
	if !s.machine.Revealed() {
		t.Fatal("expected card revealed")
	}
	if !strings.Contains(s.View(100, 30), "powerhouse") {
		t.Error("expected answer visible after reveal")
	}

	got, _ = screentest.Press(s, "2")
	s = got.(*StudyScreen)
	if s.machine.Index() != 1 {
		t.Errorf("index = %d, want 1", s.machine.Index())
	}
	if s.machine.Stats().Good != 1 {
		t.Errorf("good = %d, want 1", s.machine.Stats().Good)
	}
}

func TestStudyScreen_CompletionReplacesWithSummary(t *testing.T) {
	s, env := loadedStudy(t, api.ReviewAll)

	var msgs []tea.Msg
	var got screen.Screen = s
	for i := 0; i < 3; i++ {
		got, _ = screentest.Press(got, "space")
		got, msgs = screentest.Press(got, "3")
	}

	var replaced bool
	for _, m := range msgs {
		if r, ok := m.(router.ReplaceScreenMsg); ok {
			_, replaced = r.Screen.(*summary.SummaryScreen)
		}
	}
	if !replaced {
		t.Fatalf("expected replace with summary, got %#v", msgs)
	}
	env.Log.AssertNotLogged(t, zapcore.WarnLevel, "log study time failed")

	due, err := env.Deps.Client.Flashcards(t.Context(), s.set.ID, api.ReviewDue)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("expected no due cards after grading all easy, got %d", len(due))
	}
}

func TestStudyScreen_SkipDoesNotGrade(t *testing.T) {
	s, env := loadedStudy(t, api.ReviewAll)

	got, _ := screentest.Press(s, "s")
	s = got.(*StudyScreen)
	if s.machine.Stats().Skipped != 1 || s.machine.Index() != 1 {
		t.Fatalf("stats = %+v index = %d", s.machine.Stats(), s.machine.Index())
	}

	due, err := env.Deps.Client.Flashcards(t.Context(), s.set.ID, api.ReviewDue)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 3 {
		t.Errorf("skip must not reach the backend, due = %d", len(due))
	}
}

func TestStudyScreen_DueModeEmpty(t *testing.T) {
	env := screentest.LoggedIn(t, mockbackend.Options{})
	set := env.Sets(t)[1]
	cards, err := env.Deps.Client.Flashcards(t.Context(), set.ID, api.ReviewAll)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cards {
		if err := env.Deps.Client.SubmitReview(t.Context(), c.ID, api.GradeEasy); err != nil {
			t.Fatal(err)
		}
	}

	s := New(env.Deps, set, api.ReviewDue)
	got, _ := screentest.Run(s, s.Init())
	s = got.(*StudyScreen)
	if s.machine.Phase() != session.StudyEmpty {
		t.Fatalf("phase = %v, want empty", s.machine.Phase())
	}
	if !strings.Contains(s.View(100, 30), "Nothing is due") {
		t.Error("expected empty-state message")
	}

	_, msgs := screentest.Press(s, "enter")
	if len(msgs) != 1 {
		t.Fatalf("expected a pop, got %#v", msgs)
	}
	if _, ok := msgs[0].(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", msgs[0])
	}
}

func TestStudyScreen_ExpiredCredentialAsksForLogin(t *testing.T) {
	env := screentest.LoggedIn(t, mockbackend.Options{})
	set := env.Sets(t)[0]
	if err := env.Deps.Auth.Logout(); err != nil {
		t.Fatal(err)
	}

	s := New(env.Deps, set, api.ReviewAll)
	_, msgs := screentest.Run(s, s.Init())
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %#v", msgs)
	}
	if _, ok := msgs[0].(screen.AuthRequiredMsg); !ok {
		t.Errorf("expected AuthRequiredMsg, got %T", msgs[0])
	}
}

func TestStudyScreen_CloseDiscardsLateResults(t *testing.T) {
	env := screentest.LoggedIn(t, mockbackend.Options{})
	s := New(env.Deps, env.Sets(t)[0], api.ReviewAll)

	cmd := s.Init()
	s.Close()
	got, _ := screentest.Run(s, cmd)
	s = got.(*StudyScreen)
	if s.machine.Phase() != session.StudyLoading {
		t.Errorf("phase = %v, closed session must not move", s.machine.Phase())
	}
}
