package mockbackend

import (
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/studyhall/internal/api"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !strings.Contains(req.Email, "@") || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "A valid email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := s.addUser(req.Email, req.Password)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.id, "email": u.email, "is_active": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid login form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok || u.password != password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := s.issueToken(email)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, api.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[callerEmail(r)]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"id": u.id, "email": u.email, "is_active": true})
}

func (s *Server) handleStudySets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []api.StudySet{}
	for _, id := range s.order {
		set := s.sets[id]
		if set.owner == callerEmail(r) {
			out = append(out, set.summary())
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTodaysReview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The backend sends setId as a string on this route only.
	type dueReview struct {
		SetID        string `json:"setId"`
		Title        string `json:"title"`
		DueCardCount int    `json:"dueCardCount"`
	}
	out := []dueReview{}
	for _, id := range s.order {
		set := s.sets[id]
		if set.owner != callerEmail(r) {
			continue
		}
		if due := len(set.dueCards()); due > 0 {
			out = append(out, dueReview{SetID: set.id.String(), Title: set.title, DueCardCount: due})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if hdr.Header.Get("Content-Type") != "application/pdf" {
		writeDetail(w, http.StatusBadRequest, "Invalid file type. Please upload a PDF.")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeDetail(w, http.StatusBadRequest, "Could not extract text from PDF.")
		return
	}

	title := strings.TrimSuffix(filepath.Base(hdr.Filename), filepath.Ext(hdr.Filename))
	s.mu.Lock()
	set := s.addSet(callerEmail(r), generatedSet(title))
	summary := set.summary()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, summary)
}

// lookupSet returns the caller's set named by the {setID} URL param or
// writes a 404. The caller must hold s.mu.
func (s *Server) lookupSet(w http.ResponseWriter, r *http.Request, id string) (*studySet, bool) {
	set, ok := s.sets[id]
	if !ok || set.owner != callerEmail(r) {
		writeDetail(w, http.StatusNotFound, "Study set not found")
		return nil, false
	}
	return set, true
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "setID")
	if _, ok := s.lookupSet(w, r, id); !ok {
		return
	}
	delete(s.sets, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.lookupSet(w, r, chi.URLParam(r, "setID"))
	if !ok {
		return
	}
	mode, err := api.ParseReviewMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	cards := set.cards
	if mode == api.ReviewDue {
		cards = set.dueCards()
	}
	if len(cards) == 0 && mode == api.ReviewAll {
		writeDetail(w, http.StatusNotFound, "No flashcards found for this set")
		return
	}
	if cards == nil {
		cards = []api.Flashcard{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardID     api.ID    `json:"card_id"`
		Difficulty api.Grade `json:"difficulty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Difficulty {
	case api.GradeAgain, api.GradeGood, api.GradeEasy:
	default:
		writeDetail(w, http.StatusBadRequest, "difficulty must be again, good or easy")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		set := s.sets[id]
		if set.owner != callerEmail(r) {
			continue
		}
		for _, c := range set.cards {
			if c.ID == req.CardID {
				set.grades[c.ID] = req.Difficulty
				set.recomputeMastery()
				writeJSON(w, http.StatusOK, map[string]bool{"success": true})
				return
			}
		}
	}
	writeDetail(w, http.StatusNotFound, "Flashcard not found")
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.lookupSet(w, r, chi.URLParam(r, "setID"))
	if !ok {
		return
	}
	if len(set.quizzes) == 0 {
		writeDetail(w, http.StatusNotFound, "No quiz found for this set")
		return
	}
	writeJSON(w, http.StatusOK, set.quizzes[set.quizIdx])
}

func (s *Server) handleCompleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SetID   api.ID           `json:"set_id"`
		Answers []api.QuizAnswer `json:"answers"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.lookupSet(w, r, req.SetID.String())
	if !ok {
		return
	}
	if len(set.quizzes) == 0 {
		writeDetail(w, http.StatusNotFound, "No quiz found for this set")
		return
	}

	byID := map[api.ID]api.QuizQuestion{}
	for _, q := range set.quizzes[set.quizIdx] {
		byID[q.ID] = q
	}
	res := api.QuizResult{}
	for _, a := range req.Answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			writeDetail(w, http.StatusBadRequest, "Answer for unknown question "+a.QuestionID.String())
			return
		}
		res.Answered++
		if a.Selected == q.CorrectAnswer {
			res.Correct++
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRegenerateQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.lookupSet(w, r, chi.URLParam(r, "setID"))
	if !ok {
		return
	}
	if len(set.quizzes) == 0 {
		writeDetail(w, http.StatusNotFound, "No quiz found for this set")
		return
	}
	set.quizIdx = (set.quizIdx + 1) % len(set.quizzes)
	// Fresh ids so answers to the old questions can't be replayed.
	for i := range set.quizzes[set.quizIdx] {
		set.quizzes[set.quizIdx][i].ID = s.newID()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleArena(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.lookupSet(w, r, chi.URLParam(r, "setID"))
	if !ok {
		return
	}
	if len(set.challenges) == 0 {
		writeDetail(w, http.StatusNotFound, "No arena challenge found")
		return
	}
	writeJSON(w, http.StatusOK, set.challenges[set.challengeIdx])
}

func (s *Server) handleSubmitArena(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SetID        api.ID `json:"set_id"`
		ChallengeID  api.ID `json:"challenge_id"`
		UserResponse string `json:"user_response"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserResponse) == "" {
		writeDetail(w, http.StatusBadRequest, "Response must not be empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.lookupSet(w, r, req.SetID.String())
	if !ok {
		return
	}
	if len(set.challenges) == 0 || set.challenges[set.challengeIdx].ID != req.ChallengeID {
		writeDetail(w, http.StatusNotFound, "Challenge not found")
		return
	}

	ch := set.challenges[set.challengeIdx]
	score := overlapScore(req.UserResponse, ch.IdealResponse)
	writeJSON(w, http.StatusOK, api.ArenaGrade{AIScore: score, AIFeedback: feedbackFor(score)})
}

func (s *Server) handleRegenerateArena(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.lookupSet(w, r, chi.URLParam(r, "setID"))
	if !ok {
		return
	}
	if len(set.challenges) == 0 {
		writeDetail(w, http.StatusNotFound, "No arena challenge found")
		return
	}
	set.challengeIdx = (set.challengeIdx + 1) % len(set.challenges)
	set.challenges[set.challengeIdx].ID = s.newID()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLogTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SetID       api.ID `json:"set_id"`
		TimeSpentMs int64  `json:"time_spent_ms"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TimeSpentMs < 0 {
		writeDetail(w, http.StatusBadRequest, "time_spent_ms must not be negative")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.lookupSet(w, r, req.SetID.String())
	if !ok {
		return
	}
	set.timeMs += req.TimeSpentMs
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (set *studySet) summary() api.StudySet {
	return api.StudySet{ID: set.id, Title: set.title, CardCount: len(set.cards), MasteryScore: set.mastery}
}

// dueCards are cards never graded or last graded "again".
func (set *studySet) dueCards() []api.Flashcard {
	var due []api.Flashcard
	for _, c := range set.cards {
		if g, ok := set.grades[c.ID]; !ok || g == api.GradeAgain {
			due = append(due, c)
		}
	}
	return due
}

func (set *studySet) recomputeMastery() {
	if len(set.cards) == 0 {
		return
	}
	var points float64
	for _, g := range set.grades {
		switch g {
		case api.GradeGood:
			points += 0.75
		case api.GradeEasy:
			points += 1
		}
	}
	m := math.Round(100 * points / float64(len(set.cards)))
	set.mastery = &m
}

// overlapScore grades a response by the share of the ideal response's
// significant words it mentions.
func overlapScore(response, ideal string) int {
	words := significantWords(ideal)
	if len(words) == 0 {
		return 0
	}
	got := significantWords(response)
	hit := 0
	for w := range words {
		if got[w] {
			hit++
		}
	}
	return int(math.Round(100 * float64(hit) / float64(len(words))))
}

func significantWords(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	}) {
		if len(w) > 4 {
			out[w] = true
		}
	}
	return out
}

func feedbackFor(score int) string {
	switch {
	case score >= 80:
		return "Excellent. Your answer covers the key mechanisms and consequences."
	case score >= 50:
		return "Good start. Some important consequences or causes are missing."
	case score >= 20:
		return "Partially correct. Revisit the underlying process in your notes."
	}
	return "This misses the core idea. Review the related topic and try again."
}
