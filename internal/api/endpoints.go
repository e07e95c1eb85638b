package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Login exchanges email and password for a bearer token. The backend reads
// an OAuth2 password form, so the email travels as "username".
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	if err := checkRequest("login", loginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}
	var tok Token
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/login",
		form:   url.Values{"username": {email}, "password": {password}},
		schema: tokenSchema,
		out:    &tok,
	})
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	req := registerRequest{Email: email, Password: password}
	if err := checkRequest("register", req); err != nil {
		return nil, err
	}
	var u User
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/api/register",
		json:   req,
		schema: userSchema,
		out:    &u,
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Me returns the user the current credential belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	err := c.do(ctx, call{op: "me", method: http.MethodGet, path: "/api/users/me", auth: true, schema: userSchema, out: &u})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) StudySets(ctx context.Context) ([]StudySet, error) {
	var sets []StudySet
	err := c.do(ctx, call{op: "study_sets", method: http.MethodGet, path: "/api/study-sets", auth: true, schema: studySetsSchema, out: &sets})
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *Client) TodaysReview(ctx context.Context) ([]DueReview, error) {
	var due []DueReview
	err := c.do(ctx, call{op: "todays_review", method: http.MethodGet, path: "/api/reviews/today", auth: true, schema: dueReviewsSchema, out: &due})
	if err != nil {
		return nil, err
	}
	return due, nil
}

// Generate uploads a notes file and returns the study set the backend built
// from it. Generation can take a while; the caller's context bounds it.
func (c *Client) Generate(ctx context.Context, filename string, content io.Reader) (*StudySet, error) {
	if err := checkRequest("generate", generateParams{Filename: filename}); err != nil {
		return nil, err
	}
	var set StudySet
	err := c.do(ctx, call{
		op:     "generate",
		method: http.MethodPost,
		path:   "/api/generate",
		auth:   true,
		upload: &upload{field: "file", filename: filename, body: content},
		schema: studySetSchema,
		out:    &set,
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *Client) DeleteStudySet(ctx context.Context, setID ID) error {
	if err := checkRequest("delete_study_set", idParam{ID: setID}); err != nil {
		return err
	}
	return c.do(ctx, call{op: "delete_study_set", method: http.MethodDelete, path: setPath("/api/study-set/", setID, ""), auth: true})
}

// Flashcards fetches the cards of a set, in backend order.
func (c *Client) Flashcards(ctx context.Context, setID ID, mode ReviewMode) ([]Flashcard, error) {
	if mode == "" {
		mode = ReviewAll
	}
	if err := checkRequest("flashcards", flashcardsParams{SetID: setID, Mode: mode}); err != nil {
		return nil, err
	}
	var cards []Flashcard
	err := c.do(ctx, call{
		op:     "flashcards",
		method: http.MethodGet,
		path:   setPath("/api/study-set/", setID, "/flashcards"),
		query:  url.Values{"mode": {string(mode)}},
		auth:   true,
		schema: flashcardsSchema,
		out:    &cards,
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// SubmitReview records a grade for one card. The response is an ack.
func (c *Client) SubmitReview(ctx context.Context, cardID ID, grade Grade) error {
	req := reviewRequest{CardID: cardID, Difficulty: grade}
	if err := checkRequest("submit_review", req); err != nil {
		return err
	}
	return c.do(ctx, call{op: "submit_review", method: http.MethodPost, path: "/api/flashcards/review", auth: true, json: req})
}

func (c *Client) Quiz(ctx context.Context, setID ID) ([]QuizQuestion, error) {
	if err := checkRequest("quiz", idParam{ID: setID}); err != nil {
		return nil, err
	}
	var qs []QuizQuestion
	err := c.do(ctx, call{op: "quiz", method: http.MethodGet, path: setPath("/api/quiz/", setID, ""), auth: true, schema: quizSchema, out: &qs})
	if err != nil {
		return nil, err
	}
	return qs, nil
}

// CompleteQuiz submits the whole answer batch and returns the server's score.
func (c *Client) CompleteQuiz(ctx context.Context, setID ID, answers []QuizAnswer) (*QuizResult, error) {
	req := completeQuizRequest{SetID: setID, Answers: answers}
	if err := checkRequest("complete_quiz", req); err != nil {
		return nil, err
	}
	var res QuizResult
	err := c.do(ctx, call{
		op:     "complete_quiz",
		method: http.MethodPost,
		path:   "/api/quiz/complete",
		auth:   true,
		json:   req,
		schema: quizResultSchema,
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RegenerateQuiz(ctx context.Context, setID ID) error {
	if err := checkRequest("regenerate_quiz", idParam{ID: setID}); err != nil {
		return err
	}
	return c.do(ctx, call{op: "regenerate_quiz", method: http.MethodPost, path: setPath("/api/quiz/regenerate/", setID, ""), auth: true})
}

func (c *Client) ArenaChallenge(ctx context.Context, setID ID) (*ArenaChallenge, error) {
	if err := checkRequest("arena_challenge", idParam{ID: setID}); err != nil {
		return nil, err
	}
	var ch ArenaChallenge
	err := c.do(ctx, call{op: "arena_challenge", method: http.MethodGet, path: setPath("/api/arena/", setID, ""), auth: true, schema: arenaChallengeSchema, out: &ch})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// SubmitArena sends a free-text response for grading. The returned grade is
// bound to challengeID.
func (c *Client) SubmitArena(ctx context.Context, setID, challengeID ID, response string) (*ArenaGrade, error) {
	req := arenaSubmitRequest{SetID: setID, ChallengeID: challengeID, UserResponse: response}
	if err := checkRequest("submit_arena", req); err != nil {
		return nil, err
	}
	var g ArenaGrade
	err := c.do(ctx, call{
		op:     "submit_arena",
		method: http.MethodPost,
		path:   "/api/arena/submit",
		auth:   true,
		json:   req,
		schema: arenaGradeSchema,
		out:    &g,
	})
	if err != nil {
		return nil, err
	}
	g.ChallengeID = challengeID
	return &g, nil
}

func (c *Client) RegenerateArena(ctx context.Context, setID ID) error {
	if err := checkRequest("regenerate_arena", idParam{ID: setID}); err != nil {
		return err
	}
	return c.do(ctx, call{op: "regenerate_arena", method: http.MethodPost, path: setPath("/api/arena/regenerate/", setID, ""), auth: true})
}

// LogStudyTime reports how long the learner spent on a set.
func (c *Client) LogStudyTime(ctx context.Context, setID ID, spent time.Duration) error {
	req := logTimeRequest{SetID: setID, TimeSpentMs: spent.Milliseconds()}
	if err := checkRequest("log_study_time", req); err != nil {
		return err
	}
	return c.do(ctx, call{op: "log_study_time", method: http.MethodPost, path: "/api/study/log-time", auth: true, json: req})
}
