package api

import (
	"fmt"
	"math"
)

// ReviewMode selects which flashcards of a set are fetched.
type ReviewMode string

const (
	ReviewAll ReviewMode = "all"
	ReviewDue ReviewMode = "due"
)

// ParseReviewMode accepts "all" or "due". Empty means all.
func ParseReviewMode(s string) (ReviewMode, error) {
	switch ReviewMode(s) {
	case "", ReviewAll:
		return ReviewAll, nil
	case ReviewDue:
		return ReviewDue, nil
	}
	return "", fmt.Errorf("unknown review mode %q (want all or due)", s)
}

// Grade is the learner's self-assessed difficulty for a flashcard. The
// backend turns it into the next due date.
type Grade string

const (
	GradeAgain Grade = "again"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// Grades lists the valid grades in display order.
var Grades = []Grade{GradeAgain, GradeGood, GradeEasy}

// StudySet identifies a body of generated material.
type StudySet struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	CardCount int    `json:"card_count"`
	// MasteryScore is 0-100 and absent until the backend has computed one.
	MasteryScore *float64 `json:"mastery_score,omitempty"`
}

// DueReview is one entry of today's review list.
type DueReview struct {
	SetID        ID     `json:"setId"`
	Title        string `json:"title"`
	DueCardCount int    `json:"dueCardCount"`
}

type Flashcard struct {
	ID       ID     `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Tag      string `json:"tag,omitempty"`
}

type QuizQuestion struct {
	ID       ID       `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// CorrectAnswer drives the immediate highlight only. The score always
	// comes from the backend.
	CorrectAnswer string `json:"correct_answer"`
	Tag           string `json:"tag,omitempty"`
}

// HasOption reports whether opt is one of q's options.
func (q QuizQuestion) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

type QuizAnswer struct {
	QuestionID ID     `json:"question_id" validate:"required"`
	Selected   string `json:"selected" validate:"required"`
}

// QuizResult is the backend's verdict on a submitted batch.
type QuizResult struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
}

// Percent is round(100*correct/answered), or 0 when nothing was answered.
func (r QuizResult) Percent() int {
	if r.Answered <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.Correct) / float64(r.Answered)))
}

type ArenaChallenge struct {
	ID              ID     `json:"id"`
	Scenario        string `json:"scenario"`
	IdealResponse   string `json:"ideal_response"`
	RelatedTopicTag string `json:"related_topic_tag,omitempty"`
}

// ArenaGrade is the backend's assessment of one response. ChallengeID is
// filled in by the client from the submission that produced it.
type ArenaGrade struct {
	ChallengeID ID     `json:"-"`
	AIScore     int    `json:"ai_score"`
	AIFeedback  string `json:"ai_feedback"`
}

type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
