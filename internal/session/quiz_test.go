package session

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/studyhall/internal/api"
)

func twoQuestions() []api.QuizQuestion {
	return []api.QuizQuestion{
		{ID: "q1", Question: "Primary function of mitochondria?", Options: []string{"A", "B", "C"}, CorrectAnswer: "B"},
		{ID: "q2", Question: "Where does glycolysis happen?", Options: []string{"A", "B", "C"}, CorrectAnswer: "B"},
	}
}

func loadedQuiz(t *testing.T, fb *fakeBackend) *Quiz {
	t.Helper()
	q := NewQuiz(fb, "1", Options{})
	op, err := q.Load()
	run(t, q, op, err)
	if q.Phase() != QuizAnswering {
		t.Fatalf("phase = %v, want answering", q.Phase())
	}
	return q
}

func answerAll(t *testing.T, q *Quiz, picks ...string) {
	t.Helper()
	for i, pick := range picks {
		if err := q.Select(pick); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		op, err := q.Next()
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if op != nil {
			if err := q.Apply(op(context.Background())); err != nil {
				t.Fatalf("apply: %v", err)
			}
		}
	}
}

func TestQuiz_TwoQuestionsHalfRight(t *testing.T) {
	fb := &fakeBackend{
		questions: [][]api.QuizQuestion{twoQuestions()},
		completeFn: func(answers []api.QuizAnswer) (*api.QuizResult, error) {
			return &api.QuizResult{Correct: 1, Answered: 2}, nil
		},
	}
	q := loadedQuiz(t, fb)

	if err := q.Select("B"); err != nil {
		t.Fatal(err)
	}
	fb1, _ := q.Feedback()
	if !fb1.Correct {
		t.Error("B should highlight as correct")
	}
	op, err := q.Next()
	if err != nil || op != nil {
		t.Fatalf("next after q1: op=%v err=%v", op != nil, err)
	}

	if err := q.Select("A"); err != nil {
		t.Fatal(err)
	}
	fb2, _ := q.Feedback()
	if fb2.Correct || fb2.CorrectAnswer != "B" {
		t.Errorf("feedback = %+v", fb2)
	}

	op, err = q.Next()
	if err != nil {
		t.Fatal(err)
	}
	if q.Phase() != QuizSubmitting {
		t.Fatalf("phase = %v, want submitting", q.Phase())
	}
	run(t, q, op, nil)

	if q.Phase() != QuizScored {
		t.Fatalf("phase = %v, want scored", q.Phase())
	}
	if q.Percent() != 50 {
		t.Errorf("percent = %d, want 50", q.Percent())
	}
	if len(fb.submitted) != 1 {
		t.Fatalf("submitted %d batches, want 1", len(fb.submitted))
	}
	got := fb.submitted[0]
	want := []api.QuizAnswer{{QuestionID: "q1", Selected: "B"}, {QuestionID: "q2", Selected: "A"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("batch = %v, want %v", got, want)
	}
}

func TestQuiz_ReselectIsNoOp(t *testing.T) {
	q := loadedQuiz(t, &fakeBackend{questions: [][]api.QuizQuestion{twoQuestions()}})

	if err := q.Select("A"); err != nil {
		t.Fatal(err)
	}
	if err := q.Select("B"); err != nil {
		t.Fatalf("reselect err = %v, want nil", err)
	}
	answers := q.Answers()
	if len(answers) != 1 || answers[0].Selected != "A" {
		t.Errorf("answers = %v, want single A", answers)
	}
}

func TestQuiz_UnknownOptionRejected(t *testing.T) {
	q := loadedQuiz(t, &fakeBackend{questions: [][]api.QuizQuestion{twoQuestions()}})

	err := q.Select("Z")
	if !api.IsKind(err, api.KindValidationFailed) {
		t.Fatalf("err = %v, want validation failed", err)
	}
	if q.Answered() || len(q.Answers()) != 0 {
		t.Error("unknown option must not be recorded")
	}
}

func TestQuiz_NextRequiresAnswer(t *testing.T) {
	q := loadedQuiz(t, &fakeBackend{questions: [][]api.QuizQuestion{twoQuestions()}})
	if _, err := q.Next(); !api.IsKind(err, api.KindValidationFailed) {
		t.Errorf("err = %v, want validation failed", err)
	}
	if q.Index() != 0 {
		t.Errorf("index = %d", q.Index())
	}
}

func TestQuiz_AnswerCountTracksIndex(t *testing.T) {
	qs := append(twoQuestions(), api.QuizQuestion{ID: "q3", Question: "?", Options: []string{"A", "B"}, CorrectAnswer: "A"})
	q := loadedQuiz(t, &fakeBackend{questions: [][]api.QuizQuestion{qs}})

	for i := 0; i < len(qs); i++ {
		if len(q.Answers()) != q.Index() {
			t.Fatalf("unanswered: answers = %d, index = %d", len(q.Answers()), q.Index())
		}
		_ = q.Select("A")
		if len(q.Answers()) != q.Index()+1 {
			t.Fatalf("answered: answers = %d, index = %d", len(q.Answers()), q.Index())
		}
		op, err := q.Next()
		if err != nil {
			t.Fatal(err)
		}
		if op != nil {
			run(t, q, op, nil)
		}
	}
	if q.Phase() != QuizScored {
		t.Errorf("phase = %v", q.Phase())
	}
}

func TestQuiz_SubmitFailureKeepsAnswers(t *testing.T) {
	fail := true
	fb := &fakeBackend{
		questions: [][]api.QuizQuestion{twoQuestions()},
		completeFn: func(answers []api.QuizAnswer) (*api.QuizResult, error) {
			if fail {
				return nil, &api.Error{Kind: api.KindServerRejected, Status: 500, Detail: "db down"}
			}
			return &api.QuizResult{Correct: 2, Answered: 2}, nil
		},
	}
	q := loadedQuiz(t, fb)
	answerAll(t, q, "B", "B")

	if q.Phase() != QuizSubmitting {
		t.Fatalf("phase = %v, want submitting", q.Phase())
	}
	if !api.IsKind(q.Err(), api.KindServerRejected) {
		t.Errorf("Err() = %v", q.Err())
	}
	if len(q.Answers()) != 2 {
		t.Errorf("answers dropped: %v", q.Answers())
	}
	if _, err := q.Regenerate(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("regenerate while submitting err = %v", err)
	}

	fail = false
	op, err := q.Submit()
	run(t, q, op, err)

	if q.Phase() != QuizScored || q.Percent() != 100 || q.Err() != nil {
		t.Errorf("phase = %v percent = %d err = %v", q.Phase(), q.Percent(), q.Err())
	}
	if len(fb.submitted) != 2 || len(fb.submitted[1]) != 2 {
		t.Errorf("submissions = %v", fb.submitted)
	}
}

func TestQuiz_EmptyResultIsTransportFailure(t *testing.T) {
	fb := &fakeBackend{
		questions: [][]api.QuizQuestion{twoQuestions()},
		completeFn: func([]api.QuizAnswer) (*api.QuizResult, error) {
			return nil, nil
		},
	}
	q := loadedQuiz(t, fb)
	answerAll(t, q, "B", "A")

	if q.Phase() != QuizSubmitting {
		t.Fatalf("phase = %v, want submitting", q.Phase())
	}
	if !api.IsKind(q.Err(), api.KindTransport) {
		t.Errorf("Err() = %v, want transport", q.Err())
	}
	if _, ok := q.Result(); ok {
		t.Error("no result expected")
	}
	if len(q.Answers()) != 2 {
		t.Errorf("answers dropped: %v", q.Answers())
	}
}

func TestQuiz_SubmitOnlyWhileSubmitting(t *testing.T) {
	q := loadedQuiz(t, &fakeBackend{questions: [][]api.QuizQuestion{twoQuestions()}})
	if _, err := q.Submit(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("err = %v", err)
	}
}

func TestQuiz_RegenerateFromScored(t *testing.T) {
	fresh := []api.QuizQuestion{{ID: "q9", Question: "New?", Options: []string{"X", "Y"}, CorrectAnswer: "Y"}}
	fb := &fakeBackend{questions: [][]api.QuizQuestion{twoQuestions(), fresh}}
	q := loadedQuiz(t, fb)
	answerAll(t, q, "B", "A")

	op, err := q.Regenerate()
	if err != nil {
		t.Fatal(err)
	}
	// Answers are gone the moment Loading is entered.
	if q.Phase() != QuizLoading || len(q.Answers()) != 0 {
		t.Fatalf("phase = %v answers = %v", q.Phase(), q.Answers())
	}
	if _, ok := q.Result(); ok {
		t.Error("result survived regeneration")
	}
	run(t, q, op, nil)

	if q.Phase() != QuizAnswering || q.Total() != 1 || q.Index() != 0 {
		t.Fatalf("phase = %v total = %d index = %d", q.Phase(), q.Total(), q.Index())
	}
	cur, _ := q.Question()
	if cur.ID != "q9" {
		t.Errorf("question = %v", cur.ID)
	}
	if fb.regenQuizCalls != 1 {
		t.Errorf("regenerate calls = %d", fb.regenQuizCalls)
	}
}

func TestQuiz_RegenerateFailureRestores(t *testing.T) {
	fb := &fakeBackend{
		questions: [][]api.QuizQuestion{twoQuestions()},
		completeFn: func([]api.QuizAnswer) (*api.QuizResult, error) {
			return &api.QuizResult{Correct: 1, Answered: 2}, nil
		},
	}
	q := loadedQuiz(t, fb)
	answerAll(t, q, "B", "A")

	fb.regenQuizErr = errNetwork
	op, err := q.Regenerate()
	run(t, q, op, err)

	if q.Phase() != QuizScored || q.Percent() != 50 {
		t.Errorf("phase = %v percent = %d", q.Phase(), q.Percent())
	}
	if len(q.Answers()) != 2 {
		t.Errorf("answers = %v", q.Answers())
	}
	if q.Err() == nil {
		t.Error("expected Err() after failed regeneration")
	}
}

func TestQuiz_EmptyThenRegenerate(t *testing.T) {
	fb := &fakeBackend{quizErr: &api.Error{Kind: api.KindNotFound, Status: 404}}
	q := NewQuiz(fb, "1", Options{})
	op, err := q.Load()
	run(t, q, op, err)
	if q.Phase() != QuizEmpty {
		t.Fatalf("phase = %v, want empty", q.Phase())
	}

	// Failure from Empty goes back to Empty.
	fb.regenQuizErr = errNetwork
	op, err = q.Regenerate()
	run(t, q, op, err)
	if q.Phase() != QuizEmpty {
		t.Fatalf("phase = %v, want empty", q.Phase())
	}

	fb.regenQuizErr = nil
	fb.quizErr = nil
	fb.questions = [][]api.QuizQuestion{twoQuestions()}
	op, err = q.Regenerate()
	run(t, q, op, err)
	if q.Phase() != QuizAnswering {
		t.Errorf("phase = %v, want answering", q.Phase())
	}
}

func TestQuiz_RegenerateBusy(t *testing.T) {
	q := NewQuiz(&fakeBackend{}, "1", Options{})
	op, _ := q.Load()
	run(t, q, op, nil)
	if q.Phase() != QuizEmpty {
		t.Fatalf("phase = %v", q.Phase())
	}

	if _, err := q.Regenerate(); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Regenerate(); !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}
}

func TestQuiz_StaleResultAfterClose(t *testing.T) {
	q := loadedQuiz(t, &fakeBackend{questions: [][]api.QuizQuestion{twoQuestions()}})
	_ = q.Select("B")
	_, _ = q.Next()
	_ = q.Select("B")
	op, err := q.Next()
	if err != nil {
		t.Fatal(err)
	}
	q.Close()
	if err := q.Apply(op(context.Background())); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v", err)
	}
	if q.Phase() != QuizSubmitting {
		t.Errorf("phase = %v", q.Phase())
	}
	if err := q.Select("A"); !errors.Is(err, ErrClosed) {
		t.Errorf("select after close err = %v", err)
	}
}
