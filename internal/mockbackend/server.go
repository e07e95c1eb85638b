// Package mockbackend is an in-memory implementation of the study backend's
// HTTP contract. It backs `studyhall mock` for offline demos and the
// gateway's integration tests.
package mockbackend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/logging"
)

// Options configures a Server.
type Options struct {
	Logger *logging.Logger
	// Secret signs issued tokens. A fixed default is used when empty.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens. Default one hour.
	TokenTTL time.Duration
	// Latency delays every response, to make loading states visible.
	Latency time.Duration
	// Empty starts the server with only the demo user and no study sets.
	Empty bool
	Now   func() time.Time
}

// Server holds all backend state in memory.
type Server struct {
	mu     sync.Mutex
	users  map[string]*user // by email
	sets   map[string]*studySet
	order  []string // set ids in creation order
	nextID int

	secret  []byte
	ttl     time.Duration
	latency time.Duration
	now     func() time.Time
	log     *logging.Logger
}

type user struct {
	id       int
	email    string
	password string
}

type studySet struct {
	id      api.ID
	owner   string
	title   string
	mastery *float64
	timeMs  int64

	cards []api.Flashcard
	// grades holds the latest grade per card id.
	grades map[api.ID]api.Grade

	quizzes [][]api.QuizQuestion
	quizIdx int

	challenges   []api.ArenaChallenge
	challengeIdx int
}

// New returns a Server seeded with the demo user and, unless opts.Empty,
// the demo study sets.
func New(opts Options) *Server {
	s := &Server{
		users:   map[string]*user{},
		sets:    map[string]*studySet{},
		secret:  opts.Secret,
		ttl:     opts.TokenTTL,
		latency: opts.Latency,
		now:     opts.Now,
		log:     opts.Logger,
	}
	if len(s.secret) == 0 {
		s.secret = []byte("studyhall-mock-secret")
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}
	s.log = s.log.Named("mock")

	s.addUser(DemoEmail, DemoPassword)
	if !opts.Empty {
		for _, f := range demoSets {
			s.addSet(DemoEmail, f)
		}
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.latency > 0 {
		r.Use(s.delay)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/users/me", s.handleMe)
			r.Get("/study-sets", s.handleStudySets)
			r.Get("/reviews/today", s.handleTodaysReview)
			r.Post("/generate", s.handleGenerate)
			r.Delete("/study-set/{setID}", s.handleDeleteSet)
			r.Get("/study-set/{setID}/flashcards", s.handleFlashcards)
			r.Post("/flashcards/review", s.handleReview)
			r.Get("/quiz/{setID}", s.handleQuiz)
			r.Post("/quiz/complete", s.handleCompleteQuiz)
			r.Post("/quiz/regenerate/{setID}", s.handleRegenerateQuiz)
			r.Get("/arena/{setID}", s.handleArena)
			r.Post("/arena/submit", s.handleSubmitArena)
			r.Post("/arena/regenerate/{setID}", s.handleRegenerateArena)
			r.Post("/study/log-time", s.handleLogTime)
		})
	})
	return r
}

// ListenAndServe serves the mock backend on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) addUser(email, password string) *user {
	s.nextID++
	u := &user{id: s.nextID, email: email, password: password}
	s.users[email] = u
	return u
}

func (s *Server) newID() api.ID {
	s.nextID++
	return api.ID(strconv.Itoa(s.nextID))
}

func (s *Server) addSet(owner string, f setFixture) *studySet {
	set := &studySet{
		id:     s.newID(),
		owner:  owner,
		title:  f.title,
		grades: map[api.ID]api.Grade{},
	}
	for _, c := range f.cards {
		set.cards = append(set.cards, api.Flashcard{ID: s.newID(), Question: c.question, Answer: c.answer, Tag: c.tag})
	}
	for _, quiz := range f.quizzes {
		var qs []api.QuizQuestion
		for _, q := range quiz {
			qs = append(qs, q.toAPI(s.newID()))
		}
		set.quizzes = append(set.quizzes, qs)
	}
	for _, ch := range f.challenges {
		set.challenges = append(set.challenges, api.ArenaChallenge{
			ID:              s.newID(),
			Scenario:        ch.scenario,
			IdealResponse:   ch.ideal,
			RelatedTopicTag: ch.tag,
		})
	}
	s.sets[set.id.String()] = set
	s.order = append(s.order, set.id.String())
	return set
}

type ctxKey struct{}

// requireAuth validates the bearer token and stores the caller's email in
// the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		_, known := s.users[claims.Subject]
		s.mu.Unlock()
		if !known {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims.Subject)))
	})
}

func callerEmail(r *http.Request) string {
	email, _ := r.Context().Value(ctxKey{}).(string)
	return email
}

func (s *Server) issueToken(email string) (string, error) {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	return tok.SignedString(s.secret)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info(r.Context(), "request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body"}, "msg": "invalid JSON body", "type": "value_error"}},
		})
		return false
	}
	return true
}
