package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/abhisek/studyhall/internal/api"
)

var errNetwork = &api.Error{Kind: api.KindTransport, Op: "test", Err: errors.New("connection reset")}

type reviewCall struct {
	CardID api.ID
	Grade  api.Grade
}

// fakeBackend implements every machine backend. Each hook defaults to a
// successful canned response when nil.
type fakeBackend struct {
	mu sync.Mutex

	cards     []api.Flashcard
	cardsErr  error
	reviewErr error
	reviews   []reviewCall
	modes     []api.ReviewMode

	questions      [][]api.QuizQuestion // served in order, last one repeats
	quizErr        error
	completeFn     func(answers []api.QuizAnswer) (*api.QuizResult, error)
	submitted      [][]api.QuizAnswer
	regenQuizErr   error
	regenQuizCalls int

	challenges     []*api.ArenaChallenge // served in order, last one repeats
	challengeErr   error
	gradeFn        func(challengeID api.ID, response string) (*api.ArenaGrade, error)
	arenaSubmits   []api.ID
	regenArenaErr  error
	regenArenaCall int

	calls int
}

func (f *fakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBackend) Flashcards(ctx context.Context, setID api.ID, mode api.ReviewMode) ([]api.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.modes = append(f.modes, mode)
	return f.cards, f.cardsErr
}

func (f *fakeBackend) SubmitReview(ctx context.Context, cardID api.ID, grade api.Grade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.reviews = append(f.reviews, reviewCall{CardID: cardID, Grade: grade})
	return f.reviewErr
}

func (f *fakeBackend) Quiz(ctx context.Context, setID api.ID) ([]api.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.quizErr != nil {
		return nil, f.quizErr
	}
	if len(f.questions) == 0 {
		return nil, nil
	}
	qs := f.questions[0]
	if len(f.questions) > 1 {
		f.questions = f.questions[1:]
	}
	return qs, nil
}

func (f *fakeBackend) CompleteQuiz(ctx context.Context, setID api.ID, answers []api.QuizAnswer) (*api.QuizResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.submitted = append(f.submitted, answers)
	if f.completeFn != nil {
		return f.completeFn(answers)
	}
	return &api.QuizResult{Correct: len(answers), Answered: len(answers)}, nil
}

func (f *fakeBackend) RegenerateQuiz(ctx context.Context, setID api.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.regenQuizCalls++
	return f.regenQuizErr
}

func (f *fakeBackend) ArenaChallenge(ctx context.Context, setID api.ID) (*api.ArenaChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.challengeErr != nil {
		return nil, f.challengeErr
	}
	if len(f.challenges) == 0 {
		return nil, nil
	}
	ch := f.challenges[0]
	if len(f.challenges) > 1 {
		f.challenges = f.challenges[1:]
	}
	return ch, nil
}

func (f *fakeBackend) SubmitArena(ctx context.Context, setID, challengeID api.ID, response string) (*api.ArenaGrade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.arenaSubmits = append(f.arenaSubmits, challengeID)
	if f.gradeFn != nil {
		return f.gradeFn(challengeID, response)
	}
	return &api.ArenaGrade{AIScore: 70, AIFeedback: "Solid."}, nil
}

func (f *fakeBackend) RegenerateArena(ctx context.Context, setID api.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.regenArenaCall++
	return f.regenArenaErr
}

// memJournal collects events in memory.
type memJournal struct {
	events []Event
	err    error
}

func (j *memJournal) Record(ctx context.Context, e Event) error {
	if j.err != nil {
		return j.err
	}
	j.events = append(j.events, e)
	return nil
}

func (j *memJournal) actions() []string {
	out := make([]string, len(j.events))
	for i, e := range j.events {
		out[i] = e.Action
	}
	return out
}

// run executes op inline and applies it, failing the test on discard.
func run(t testing.TB, m interface{ Apply(Result) error }, op Op, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if op == nil {
		t.Fatalf("expected an op")
	}
	if err := m.Apply(op(context.Background())); err != nil {
		t.Fatalf("apply: %v", err)
	}
}
