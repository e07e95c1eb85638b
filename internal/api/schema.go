package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// responseSchema names a JSON schema for a backend response body.
type responseSchema struct {
	Name       string
	Definition map[string]any
}

var idSchema = map[string]any{"type": []any{"integer", "string"}}

func object(required []string, props map[string]any) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{"type": "object", "required": req, "properties": props}
}

func arrayOf(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}

var (
	studySetItem = object([]string{"id", "title"}, map[string]any{
		"id":            idSchema,
		"title":         map[string]any{"type": "string"},
		"card_count":    map[string]any{"type": "integer", "minimum": 0},
		"mastery_score": map[string]any{"type": []any{"number", "null"}},
	})
	flashcardItem = object([]string{"id", "question", "answer"}, map[string]any{
		"id":       idSchema,
		"question": map[string]any{"type": "string"},
		"answer":   map[string]any{"type": "string"},
	})
	quizQuestionItem = object([]string{"id", "question", "options", "correct_answer"}, map[string]any{
		"id":             idSchema,
		"question":       map[string]any{"type": "string"},
		"options":        arrayOf(map[string]any{"type": "string"}),
		"correct_answer": map[string]any{"type": "string"},
	})
	dueReviewItem = object([]string{"setId", "title"}, map[string]any{
		"setId":        idSchema,
		"title":        map[string]any{"type": "string"},
		"dueCardCount": map[string]any{"type": "integer", "minimum": 0},
	})

	studySetSchema   = &responseSchema{Name: "study_set", Definition: studySetItem}
	studySetsSchema  = &responseSchema{Name: "study_sets", Definition: arrayOf(studySetItem)}
	dueReviewsSchema = &responseSchema{Name: "due_reviews", Definition: arrayOf(dueReviewItem)}
	flashcardsSchema = &responseSchema{Name: "flashcards", Definition: arrayOf(flashcardItem)}
	quizSchema       = &responseSchema{Name: "quiz", Definition: arrayOf(quizQuestionItem)}

	quizResultSchema = &responseSchema{Name: "quiz_result", Definition: object([]string{"correct", "answered"}, map[string]any{
		"correct":  map[string]any{"type": "integer", "minimum": 0},
		"answered": map[string]any{"type": "integer", "minimum": 0},
	})}

	arenaChallengeSchema = &responseSchema{Name: "arena_challenge", Definition: object([]string{"id", "scenario"}, map[string]any{
		"id":                idSchema,
		"scenario":          map[string]any{"type": "string"},
		"ideal_response":    map[string]any{"type": "string"},
		"related_topic_tag": map[string]any{"type": []any{"string", "null"}},
	})}

	arenaGradeSchema = &responseSchema{Name: "arena_grade", Definition: object([]string{"ai_score", "ai_feedback"}, map[string]any{
		"ai_score":    map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"ai_feedback": map[string]any{"type": "string"},
	})}

	userSchema = &responseSchema{Name: "user", Definition: object([]string{"id", "email"}, map[string]any{
		"id":    idSchema,
		"email": map[string]any{"type": "string"},
	})}

	tokenSchema = &responseSchema{Name: "token", Definition: object([]string{"access_token"}, map[string]any{
		"access_token": map[string]any{"type": "string", "minLength": 1},
		"token_type":   map[string]any{"type": "string"},
	})}
)

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against schema. A nil schema accepts anything.
func validateBody(schema *responseSchema, raw []byte) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("unexpected %s body: %w", schema.Name, err)
	}
	return nil
}

func compiledSchema(schema *responseSchema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a plain decoded JSON value, so round-trip the
	// Go definition through encoding/json.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
