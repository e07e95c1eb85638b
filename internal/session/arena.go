package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
)

// ArenaBackend is the part of the gateway an Arena session needs.
type ArenaBackend interface {
	ArenaChallenge(ctx context.Context, setID api.ID) (*api.ArenaChallenge, error)
	SubmitArena(ctx context.Context, setID, challengeID api.ID, response string) (*api.ArenaGrade, error)
	RegenerateArena(ctx context.Context, setID api.ID) error
}

type ArenaPhase int

const (
	ArenaLoading ArenaPhase = iota
	ArenaResponding
	ArenaGrading
	ArenaGraded
	ArenaEmpty
)

func (p ArenaPhase) String() string {
	switch p {
	case ArenaLoading:
		return "loading"
	case ArenaResponding:
		return "responding"
	case ArenaGrading:
		return "grading"
	case ArenaGraded:
		return "graded"
	case ArenaEmpty:
		return "empty"
	}
	return fmt.Sprintf("ArenaPhase(%d)", int(p))
}

// Arena presents one scenario, takes a free-text response and has the
// backend grade it.
type Arena struct {
	core
	backend ArenaBackend

	phase     ArenaPhase
	challenge *api.ArenaChallenge
	draft     string
	grade     *api.ArenaGrade

	restore *arenaSnapshot
}

type arenaSnapshot struct {
	phase     ArenaPhase
	challenge *api.ArenaChallenge
	draft     string
	grade     *api.ArenaGrade
}

type arenaLoaded struct {
	challenge *api.ArenaChallenge
	err       error
}

type arenaGraded struct {
	grade *api.ArenaGrade
	err   error
}

// NewArena returns an Arena in the loading phase.
func NewArena(backend ArenaBackend, setID api.ID, opts Options) *Arena {
	a := &Arena{backend: backend}
	a.init("arena", setID, opts)
	return a
}

func (a *Arena) Phase() ArenaPhase { return a.phase }
func (a *Arena) Draft() string { return a.draft }

// Challenge returns the loaded challenge.
func (a *Arena) Challenge() (api.ArenaChallenge, bool) {
	if a.challenge == nil {
		return api.ArenaChallenge{}, false
	}
	return *a.challenge, true
}

// Grade returns the grade, available once Graded.
func (a *Arena) Grade() (api.ArenaGrade, bool) {
	if a.phase != ArenaGraded || a.grade == nil {
		return api.ArenaGrade{}, false
	}
	return *a.grade, true
}

// Load fetches the challenge. It may be issued again after a failed load.
func (a *Arena) Load() (Op, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	if a.phase != ArenaLoading {
		return nil, ErrWrongPhase
	}
	backend, setID := a.backend, a.setID
	return a.begin(func(ctx context.Context) any {
		ch, err := backend.ArenaChallenge(ctx, setID)
		return arenaLoaded{challenge: ch, err: err}
	}), nil
}

// SetDraft replaces the response being written.
func (a *Arena) SetDraft(text string) error {
	if err := a.guard(); err != nil {
		return err
	}
	if a.phase != ArenaResponding {
		return ErrWrongPhase
	}
	a.draft = text
	return nil
}

// Submit sends the draft for grading against challengeID, which must be
// the loaded challenge. The machine shows Grading until the result arrives;
// a failure puts it back in Responding with the draft intact.
func (a *Arena) Submit(challengeID api.ID) (Op, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	if a.phase != ArenaResponding {
		return nil, ErrWrongPhase
	}
	if strings.TrimSpace(a.draft) == "" {
		return nil, validationError("submit_arena", "write a response before submitting")
	}
	if a.challenge == nil || challengeID != a.challenge.ID {
		return nil, validationError("submit_arena", fmt.Sprintf("challenge %q is not the current challenge", challengeID))
	}

	a.restore = &arenaSnapshot{phase: a.phase, challenge: a.challenge, draft: a.draft}
	a.phase = ArenaGrading
	a.err = nil

	backend, setID, draft := a.backend, a.setID, a.draft
	return a.begin(func(ctx context.Context) any {
		g, err := backend.SubmitArena(ctx, setID, challengeID, draft)
		return arenaGraded{grade: g, err: err}
	}), nil
}

// Regenerate asks the backend for a new scenario and loads it. On failure
// the machine returns to where it was.
func (a *Arena) Regenerate() (Op, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	if a.phase != ArenaGraded && a.phase != ArenaEmpty {
		return nil, ErrWrongPhase
	}

	a.restore = &arenaSnapshot{phase: a.phase, challenge: a.challenge, draft: a.draft, grade: a.grade}
	a.challenge, a.grade, a.draft = nil, nil, ""
	a.phase = ArenaLoading
	a.err = nil

	backend, setID := a.backend, a.setID
	return a.begin(func(ctx context.Context) any {
		if err := backend.RegenerateArena(ctx, setID); err != nil {
			return arenaLoaded{err: err}
		}
		ch, err := backend.ArenaChallenge(ctx, setID)
		return arenaLoaded{challenge: ch, err: err}
	}), nil
}

// Apply folds an Op's Result into the machine.
func (a *Arena) Apply(r Result) error {
	payload, err := a.accept(r)
	if err != nil {
		return err
	}
	switch p := payload.(type) {
	case arenaLoaded:
		a.applyLoaded(p)
	case arenaGraded:
		a.applyGraded(p)
	default:
		return fmt.Errorf("session: unexpected arena result %T", payload)
	}
	return nil
}

func (a *Arena) restoreSnapshot() {
	snap := a.restore
	a.restore = nil
	if snap == nil {
		return
	}
	a.phase = snap.phase
	a.challenge = snap.challenge
	a.draft = snap.draft
	a.grade = snap.grade
}

func (a *Arena) applyLoaded(p arenaLoaded) {
	regenerating := a.restore != nil

	switch {
	case api.IsKind(p.err, api.KindNotFound), p.err == nil && p.challenge == nil:
		a.restore = nil
		a.err = nil
		a.phase = ArenaEmpty
	case p.err != nil && regenerating:
		a.restoreSnapshot()
		a.err = p.err
		a.log.Warn(a.ctx, "arena regeneration failed", zap.Error(p.err))
		return
	case p.err != nil:
		a.err = p.err
		a.log.Warn(a.ctx, "load arena challenge failed", zap.Error(p.err))
		return
	default:
		a.restore = nil
		a.err = nil
		a.challenge = p.challenge
		a.draft = ""
		a.grade = nil
		a.phase = ArenaResponding
	}

	action := "load"
	if regenerating {
		action = "regenerate"
	}
	detail := ""
	if a.challenge != nil {
		detail = "challenge=" + a.challenge.ID.String()
	}
	a.record(action, detail, nil)
}

func (a *Arena) applyGraded(p arenaGraded) {
	if p.err != nil || p.grade == nil {
		a.restoreSnapshot()
		a.err = p.err
		if a.err == nil {
			a.err = &api.Error{Kind: api.KindTransport, Op: "submit_arena", Detail: "empty grading result"}
		}
		a.log.Warn(a.ctx, "arena grading failed", zap.Error(a.err))
		return
	}

	a.restore = nil
	a.err = nil
	grade := *p.grade
	grade.ChallengeID = a.challenge.ID
	a.grade = &grade
	a.phase = ArenaGraded
	score := grade.AIScore
	a.record("grade", "challenge="+grade.ChallengeID.String(), &score)
}
