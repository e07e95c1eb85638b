package quiz

import (
	"strings"
	"testing"

	"github.com/abhisek/studyhall/internal/mockbackend"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/screentest"
	"github.com/abhisek/studyhall/internal/session"
)

func loadedQuiz(t *testing.T) *QuizScreen {
	t.Helper()
	env := screentest.LoggedIn(t, mockbackend.Options{})
	s := New(env.Deps, env.Sets(t)[0])
	got, _ := screentest.Run(s, s.Init())
	return got.(*QuizScreen)
}

func answer(t *testing.T, s *QuizScreen, keys ...string) *QuizScreen {
	t.Helper()
	var got screen.Screen = s
	for _, k := range keys {
		got, _ = screentest.Press(got, k)
		got, _ = screentest.Press(got, "enter")
	}
	return got.(*QuizScreen)
}

func TestQuizScreen_LoadsFirstQuestion(t *testing.T) {
	s := loadedQuiz(t)
	if s.machine.Phase() != session.QuizAnswering {
		t.Fatalf("phase = %v, want answering", s.machine.Phase())
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "primary function of Mitochondria") {
		t.Error("expected first question in view")
	}
	if !strings.Contains(view, "Question 1/3") {
		t.Error("expected progress label")
	}
}

func TestQuizScreen_AnswerShowsFeedback(t *testing.T) {
	s := loadedQuiz(t)

	got, _ := screentest.Press(s, "1")
	s = got.(*QuizScreen)
	if !s.machine.Answered() {
		t.Fatal("expected question answered")
	}
	if !strings.Contains(s.View(100, 30), "Cellular Respiration.") {
		t.Error("expected the correct answer in feedback")
	}

	// A second pick on an answered question is ignored.
	got, _ = screentest.Press(s, "2")
	s = got.(*QuizScreen)
	if s.machine.Answers()[0].Selected != "Photosynthesis" {
		t.Errorf("selected = %q", s.machine.Answers()[0].Selected)
	}
	if s.machine.Index() != 0 {
		t.Error("picking must not advance")
	}
}

func TestQuizScreen_EnterBeforeAnsweringPicksHighlighted(t *testing.T) {
	s := loadedQuiz(t)

	got, _ := screentest.Press(s, "down")
	got, _ = screentest.Press(got, "enter")
	s = got.(*QuizScreen)
	if fb, ok := s.machine.Feedback(); !ok || !fb.Correct {
		t.Errorf("feedback = %+v, %v", fb, ok)
	}
}

func TestQuizScreen_LastAnswerSubmitsBatch(t *testing.T) {
	s := loadedQuiz(t)

	s = answer(t, s, "2", "1", "1")
	if s.machine.Phase() != session.QuizScored {
		t.Fatalf("phase = %v, want scored (err %v)", s.machine.Phase(), s.machine.Err())
	}
	res, _ := s.machine.Result()
	if res.Correct != 2 || res.Answered != 3 {
		t.Errorf("result = %+v", res)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "67%") || !strings.Contains(view, "2 of 3 correct") {
		t.Errorf("score missing from view:\n%s", view)
	}

	_, msgs := screentest.Press(s, "enter")
	if len(msgs) != 1 {
		t.Fatalf("expected a pop, got %#v", msgs)
	}
	if _, ok := msgs[0].(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", msgs[0])
	}
}

func TestQuizScreen_RegenerateLoadsNewQuestions(t *testing.T) {
	s := loadedQuiz(t)
	s = answer(t, s, "2", "1", "3")

	got, _ := screentest.Press(s, "g")
	s = got.(*QuizScreen)
	if s.machine.Phase() != session.QuizAnswering {
		t.Fatalf("phase = %v, want answering (err %v)", s.machine.Phase(), s.machine.Err())
	}
	if s.machine.Total() != 2 || s.machine.Index() != 0 {
		t.Errorf("total = %d index = %d", s.machine.Total(), s.machine.Index())
	}
	if !strings.Contains(s.View(100, 30), "carries genetic information") {
		t.Error("expected regenerated question in view")
	}
	if s.machine.Answered() {
		t.Error("regenerated quiz must start unanswered")
	}
}

func TestQuizScreen_ExpiredCredentialAsksForLogin(t *testing.T) {
	env := screentest.LoggedIn(t, mockbackend.Options{})
	set := env.Sets(t)[0]
	if err := env.Deps.Auth.Logout(); err != nil {
		t.Fatal(err)
	}

	s := New(env.Deps, set)
	_, msgs := screentest.Run(s, s.Init())
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %#v", msgs)
	}
	if _, ok := msgs[0].(screen.AuthRequiredMsg); !ok {
		t.Errorf("expected AuthRequiredMsg, got %T", msgs[0])
	}
}
