package session

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
)

// StudyBackend is the part of the gateway a Study session needs.
type StudyBackend interface {
	Flashcards(ctx context.Context, setID api.ID, mode api.ReviewMode) ([]api.Flashcard, error)
	SubmitReview(ctx context.Context, cardID api.ID, grade api.Grade) error
}

// StudyPhase is where a flashcard review session is.
type StudyPhase int

const (
	StudyLoading StudyPhase = iota
	StudyReviewing
	StudyComplete
	StudyEmpty
)

func (p StudyPhase) String() string {
	switch p {
	case StudyLoading:
		return "loading"
	case StudyReviewing:
		return "reviewing"
	case StudyComplete:
		return "complete"
	case StudyEmpty:
		return "empty"
	}
	return fmt.Sprintf("StudyPhase(%d)", int(p))
}

// StudyStats counts what happened to each card.
type StudyStats struct {
	Again   int
	Good    int
	Easy    int
	Skipped int
	// Failed counts grades the backend did not accept.
	Failed int
}

// Graded is the number of cards that received a grade, accepted or not.
func (s StudyStats) Graded() int { return s.Again + s.Good + s.Easy + s.Failed }

// Study walks a deck of flashcards: reveal, then grade or skip, one card at
// a time. Grades are sent to the backend as they happen; a failed grade is
// logged and the session moves on.
type Study struct {
	core
	backend StudyBackend
	mode    api.ReviewMode

	phase    StudyPhase
	cards    []api.Flashcard
	index    int
	revealed bool
	stats    StudyStats
}

type studyLoaded struct {
	cards []api.Flashcard
	err   error
}

type studyGraded struct {
	card  api.Flashcard
	grade api.Grade
	err   error
}

// NewStudy returns a Study in the loading phase. Call Load to fetch cards.
func NewStudy(backend StudyBackend, setID api.ID, mode api.ReviewMode, opts Options) *Study {
	if mode == "" {
		mode = api.ReviewAll
	}
	s := &Study{backend: backend, mode: mode}
	s.init("study", setID, opts)
	return s
}

func (s *Study) Phase() StudyPhase { return s.phase }
func (s *Study) Mode() api.ReviewMode { return s.mode }
func (s *Study) Index() int { return s.index }
func (s *Study) Total() int { return len(s.cards) }
func (s *Study) Revealed() bool { return s.phase == StudyReviewing && s.revealed }
func (s *Study) Stats() StudyStats { return s.stats }
func (s *Study) Cards() []api.Flashcard { return slices.Clone(s.cards) }

// Card returns the card under review.
func (s *Study) Card() (api.Flashcard, bool) {
	if s.phase != StudyReviewing || s.index >= len(s.cards) {
		return api.Flashcard{}, false
	}
	return s.cards[s.index], true
}

// Load fetches the deck. It may be issued again after a failed load.
func (s *Study) Load() (Op, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.phase != StudyLoading {
		return nil, ErrWrongPhase
	}
	backend, setID, mode := s.backend, s.setID, s.mode
	return s.begin(func(ctx context.Context) any {
		cards, err := backend.Flashcards(ctx, setID, mode)
		return studyLoaded{cards: cards, err: err}
	}), nil
}

// Reveal shows the answer of the current card.
func (s *Study) Reveal() error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.phase != StudyReviewing || s.revealed {
		return ErrWrongPhase
	}
	s.revealed = true
	return nil
}

// Grade submits g for the current card. The session advances once the
// submission has finished, whatever its outcome.
func (s *Study) Grade(g api.Grade) (Op, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.phase != StudyReviewing {
		return nil, ErrWrongPhase
	}
	if !s.revealed {
		return nil, ErrNotRevealed
	}
	if !slices.Contains(api.Grades, g) {
		return nil, validationError("grade", fmt.Sprintf("unknown grade %q", g))
	}

	card := s.cards[s.index]
	backend := s.backend
	return s.begin(func(ctx context.Context) any {
		return studyGraded{card: card, grade: g, err: backend.SubmitReview(ctx, card.ID, g)}
	}), nil
}

// Skip moves past the current card without telling the backend.
func (s *Study) Skip() error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.phase != StudyReviewing {
		return ErrWrongPhase
	}
	s.stats.Skipped++
	s.record("skip", s.cards[s.index].ID.String(), nil)
	s.advance()
	return nil
}

// Apply folds an Op's Result into the machine.
func (s *Study) Apply(r Result) error {
	payload, err := s.accept(r)
	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case studyLoaded:
		s.applyLoaded(p)
	case studyGraded:
		s.applyGraded(p)
	default:
		return fmt.Errorf("session: unexpected study result %T", payload)
	}
	return nil
}

func (s *Study) applyLoaded(p studyLoaded) {
	switch {
	case api.IsKind(p.err, api.KindNotFound):
		s.err = nil
		s.phase = StudyEmpty
	case p.err != nil:
		s.err = p.err
		s.log.Warn(s.ctx, "load flashcards failed", zap.Error(p.err))
	case len(p.cards) == 0:
		s.err = nil
		s.phase = StudyEmpty
	default:
		s.err = nil
		s.cards = p.cards
		s.index = 0
		s.revealed = false
		s.phase = StudyReviewing
	}
	if s.phase != StudyLoading {
		s.record("load", fmt.Sprintf("mode=%s cards=%d", s.mode, len(s.cards)), nil)
	}
}

func (s *Study) applyGraded(p studyGraded) {
	if p.err != nil {
		s.err = p.err
		s.stats.Failed++
		s.log.Warn(s.ctx, "review submission failed",
			zap.String("card.id", p.card.ID.String()),
			zap.String("grade", string(p.grade)),
			zap.Error(p.err),
		)
		s.record("review_failed", p.card.ID.String()+":"+string(p.grade), nil)
	} else {
		s.err = nil
		switch p.grade {
		case api.GradeAgain:
			s.stats.Again++
		case api.GradeGood:
			s.stats.Good++
		case api.GradeEasy:
			s.stats.Easy++
		}
		s.record("review", p.card.ID.String()+":"+string(p.grade), nil)
	}
	s.advance()
}

func (s *Study) advance() {
	s.index++
	s.revealed = false
	if s.index >= len(s.cards) {
		s.phase = StudyComplete
		s.record("complete", fmt.Sprintf("again=%d good=%d easy=%d skipped=%d failed=%d",
			s.stats.Again, s.stats.Good, s.stats.Easy, s.stats.Skipped, s.stats.Failed), nil)
	}
}
