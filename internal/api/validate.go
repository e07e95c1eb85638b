package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank rejects strings that are empty after trimming whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

type loginRequest struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type reviewRequest struct {
	CardID     ID    `json:"card_id" validate:"required"`
	Difficulty Grade `json:"difficulty" validate:"oneof=again good easy"`
}

type completeQuizRequest struct {
	SetID   ID           `json:"set_id" validate:"required"`
	Answers []QuizAnswer `json:"answers" validate:"required,min=1,dive"`
}

type arenaSubmitRequest struct {
	SetID        ID     `json:"set_id" validate:"required"`
	ChallengeID  ID     `json:"challenge_id" validate:"required"`
	UserResponse string `json:"user_response" validate:"notblank"`
}

type logTimeRequest struct {
	SetID       ID    `json:"set_id" validate:"required"`
	TimeSpentMs int64 `json:"time_spent_ms" validate:"gte=0"`
}

type idParam struct {
	ID ID `validate:"required"`
}

type flashcardsParams struct {
	SetID ID         `validate:"required"`
	Mode  ReviewMode `validate:"oneof=all due"`
}

type generateParams struct {
	Filename string `validate:"notblank"`
}

// checkRequest runs struct validation and reports the first few failures
// as a single ValidationFailed error.
func checkRequest(op string, req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: KindValidationFailed, Op: op, Err: err}
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
	}
	return &Error{Kind: KindValidationFailed, Op: op, Detail: strings.Join(parts, "; ")}
}
