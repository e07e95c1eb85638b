package session

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
)

// QuizBackend is the part of the gateway a Quiz session needs.
type QuizBackend interface {
	Quiz(ctx context.Context, setID api.ID) ([]api.QuizQuestion, error)
	CompleteQuiz(ctx context.Context, setID api.ID, answers []api.QuizAnswer) (*api.QuizResult, error)
	RegenerateQuiz(ctx context.Context, setID api.ID) error
}

type QuizPhase int

const (
	QuizLoading QuizPhase = iota
	QuizAnswering
	QuizSubmitting
	QuizScored
	QuizEmpty
)

func (p QuizPhase) String() string {
	switch p {
	case QuizLoading:
		return "loading"
	case QuizAnswering:
		return "answering"
	case QuizSubmitting:
		return "submitting"
	case QuizScored:
		return "scored"
	case QuizEmpty:
		return "empty"
	}
	return fmt.Sprintf("QuizPhase(%d)", int(p))
}

// Feedback is the local highlight shown right after an answer. It is never
// used for scoring.
type Feedback struct {
	Selected      string
	CorrectAnswer string
	Correct       bool
}

// Quiz asks each question once, collects the answers, and submits them as
// a single batch when the last one is answered.
type Quiz struct {
	core
	backend QuizBackend

	phase     QuizPhase
	questions []api.QuizQuestion
	index     int
	answers   []api.QuizAnswer
	result    *api.QuizResult

	// restore holds the state to return to if a regeneration fails.
	restore *quizSnapshot
}

type quizSnapshot struct {
	phase     QuizPhase
	questions []api.QuizQuestion
	index     int
	answers   []api.QuizAnswer
	result    *api.QuizResult
}

type quizLoaded struct {
	questions []api.QuizQuestion
	err       error
}

type quizScored struct {
	result *api.QuizResult
	err    error
}

// NewQuiz returns a Quiz in the loading phase.
func NewQuiz(backend QuizBackend, setID api.ID, opts Options) *Quiz {
	q := &Quiz{backend: backend}
	q.init("quiz", setID, opts)
	return q
}

func (q *Quiz) Phase() QuizPhase { return q.phase }
func (q *Quiz) Index() int { return q.index }
func (q *Quiz) Total() int { return len(q.questions) }

// Answers returns a copy of the answers given so far, in order.
func (q *Quiz) Answers() []api.QuizAnswer { return slices.Clone(q.answers) }

// Question returns the question being answered.
func (q *Quiz) Question() (api.QuizQuestion, bool) {
	if q.phase != QuizAnswering || q.index >= len(q.questions) {
		return api.QuizQuestion{}, false
	}
	return q.questions[q.index], true
}

// Answered reports whether the current question has an answer.
func (q *Quiz) Answered() bool {
	return q.phase == QuizAnswering && len(q.answers) > q.index
}

// Feedback returns the highlight for the current question once answered.
func (q *Quiz) Feedback() (Feedback, bool) {
	if !q.Answered() {
		return Feedback{}, false
	}
	question := q.questions[q.index]
	selected := q.answers[q.index].Selected
	return Feedback{
		Selected:      selected,
		CorrectAnswer: question.CorrectAnswer,
		Correct:       selected == question.CorrectAnswer,
	}, true
}

// Result is the server's score, available once Scored.
func (q *Quiz) Result() (api.QuizResult, bool) {
	if q.phase != QuizScored || q.result == nil {
		return api.QuizResult{}, false
	}
	return *q.result, true
}

// Percent is the displayed score, 0 until Scored.
func (q *Quiz) Percent() int {
	r, ok := q.Result()
	if !ok {
		return 0
	}
	return r.Percent()
}

// Load fetches the questions. It may be issued again after a failed load.
func (q *Quiz) Load() (Op, error) {
	if err := q.guard(); err != nil {
		return nil, err
	}
	if q.phase != QuizLoading {
		return nil, ErrWrongPhase
	}
	backend, setID := q.backend, q.setID
	return q.begin(func(ctx context.Context) any {
		qs, err := backend.Quiz(ctx, setID)
		return quizLoaded{questions: qs, err: err}
	}), nil
}

// Select answers the current question. Selecting again once answered does
// nothing: each question takes exactly one answer.
func (q *Quiz) Select(option string) error {
	if err := q.guard(); err != nil {
		return err
	}
	if q.phase != QuizAnswering {
		return ErrWrongPhase
	}
	if q.Answered() {
		return nil
	}
	question := q.questions[q.index]
	if !question.HasOption(option) {
		return validationError("select", fmt.Sprintf("%q is not an option for this question", option))
	}
	q.answers = append(q.answers, api.QuizAnswer{QuestionID: question.ID, Selected: option})
	q.record("answer", question.ID.String()+":"+option, nil)
	return nil
}

// Next moves to the following question. After the last question it enters
// Submitting and returns the batch submission Op; otherwise the Op is nil.
func (q *Quiz) Next() (Op, error) {
	if err := q.guard(); err != nil {
		return nil, err
	}
	if q.phase != QuizAnswering {
		return nil, ErrWrongPhase
	}
	if !q.Answered() {
		return nil, validationError("next", "answer the question first")
	}
	if q.index+1 < len(q.questions) {
		q.index++
		return nil, nil
	}
	q.phase = QuizSubmitting
	return q.submitOp(), nil
}

// Submit retries the batch submission after a failure.
func (q *Quiz) Submit() (Op, error) {
	if err := q.guard(); err != nil {
		return nil, err
	}
	if q.phase != QuizSubmitting {
		return nil, ErrWrongPhase
	}
	return q.submitOp(), nil
}

func (q *Quiz) submitOp() Op {
	backend, setID := q.backend, q.setID
	answers := slices.Clone(q.answers)
	return q.begin(func(ctx context.Context) any {
		res, err := backend.CompleteQuiz(ctx, setID, answers)
		return quizScored{result: res, err: err}
	})
}

// Regenerate asks the backend for fresh questions and reloads. Local answers
// and the score are dropped immediately; a failed regeneration puts them
// back.
func (q *Quiz) Regenerate() (Op, error) {
	if err := q.guard(); err != nil {
		return nil, err
	}
	if q.phase != QuizEmpty && q.phase != QuizScored {
		return nil, ErrWrongPhase
	}

	q.restore = &quizSnapshot{
		phase:     q.phase,
		questions: q.questions,
		index:     q.index,
		answers:   q.answers,
		result:    q.result,
	}
	q.questions, q.answers, q.result, q.index = nil, nil, nil, 0
	q.phase = QuizLoading
	q.err = nil

	backend, setID := q.backend, q.setID
	return q.begin(func(ctx context.Context) any {
		if err := backend.RegenerateQuiz(ctx, setID); err != nil {
			return quizLoaded{err: err}
		}
		qs, err := backend.Quiz(ctx, setID)
		return quizLoaded{questions: qs, err: err}
	}), nil
}

// Apply folds an Op's Result into the machine.
func (q *Quiz) Apply(r Result) error {
	payload, err := q.accept(r)
	if err != nil {
		return err
	}
	switch p := payload.(type) {
	case quizLoaded:
		q.applyLoaded(p)
	case quizScored:
		q.applyScored(p)
	default:
		return fmt.Errorf("session: unexpected quiz result %T", payload)
	}
	return nil
}

func (q *Quiz) applyLoaded(p quizLoaded) {
	restore := q.restore
	q.restore = nil
	regenerating := restore != nil

	switch {
	case api.IsKind(p.err, api.KindNotFound), p.err == nil && len(p.questions) == 0:
		q.err = nil
		q.phase = QuizEmpty
	case p.err != nil && regenerating:
		q.phase = restore.phase
		q.questions = restore.questions
		q.index = restore.index
		q.answers = restore.answers
		q.result = restore.result
		q.err = p.err
		q.log.Warn(q.ctx, "quiz regeneration failed", zap.Error(p.err))
		return
	case p.err != nil:
		q.err = p.err
		q.log.Warn(q.ctx, "load quiz failed", zap.Error(p.err))
		return
	default:
		q.err = nil
		q.questions = p.questions
		q.index = 0
		q.answers = nil
		q.phase = QuizAnswering
	}

	action := "load"
	if regenerating {
		action = "regenerate"
	}
	q.record(action, fmt.Sprintf("questions=%d", len(q.questions)), nil)
}

func (q *Quiz) applyScored(p quizScored) {
	if p.err != nil || p.result == nil {
		q.err = p.err
		if q.err == nil {
			q.err = &api.Error{Kind: api.KindTransport, Op: "complete_quiz", Detail: "empty quiz result"}
		}
		q.log.Warn(q.ctx, "quiz submission failed", zap.Int("answers", len(q.answers)), zap.Error(q.err))
		return
	}
	q.err = nil
	q.result = p.result
	q.phase = QuizScored
	pct := p.result.Percent()
	q.record("score", fmt.Sprintf("correct=%d answered=%d", p.result.Correct, p.result.Answered), &pct)
}
