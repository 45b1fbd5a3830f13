package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quizdrop/internal/models"
)

var (
	// ErrMalformedResponse means the completion text was not valid JSON.
	ErrMalformedResponse = errors.New("invalid JSON response from Groq API")

	// ErrInvalidStructure means the JSON parsed but lacked a top-level
	// questions array.
	ErrInvalidStructure = errors.New("invalid response structure from Groq API")

	// ErrNoValidQuestions means no element survived the schema check.
	ErrNoValidQuestions = errors.New("no valid questions received from Groq API")
)

// optionCount is the required number of answer options per question.
const optionCount = 4

// ValidQuestion reports whether a candidate from the model satisfies the
// question schema: non-empty text, exactly four options, a correct-answer
// index inside the options, and a non-empty explanation. It is a pure
// predicate so it can be tested against hand-crafted payloads.
func ValidQuestion(q models.QuizQuestion) bool {
	return q.Question != "" &&
		len(q.Options) == optionCount &&
		q.CorrectAnswer >= 0 &&
		q.CorrectAnswer < optionCount &&
		q.Explanation != ""
}

// stripCodeFences removes markdown code-fence wrapping that the model
// sometimes adds despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseResponse validates raw completion text into at most requestedCount
// questions. Individual elements failing the schema check are dropped
// silently to tolerate partial model imperfection; fewer survivors than
// requested is not an error and the result is never padded.
func ParseResponse(raw string, requestedCount int) ([]models.QuizQuestion, error) {
	clean := stripCodeFences(raw)

	if !json.Valid([]byte(clean)) {
		return nil, fmt.Errorf("%w: not parseable as JSON", ErrMalformedResponse)
	}

	var envelope struct {
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(clean), &envelope); err != nil {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrInvalidStructure)
	}
	if envelope.Questions == nil {
		return nil, fmt.Errorf("%w: missing questions field", ErrInvalidStructure)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(envelope.Questions, &elements); err != nil {
		return nil, fmt.Errorf("%w: questions is not an array", ErrInvalidStructure)
	}

	valid := make([]models.QuizQuestion, 0, len(elements))
	for _, element := range elements {
		var q models.QuizQuestion
		if err := json.Unmarshal(element, &q); err != nil {
			continue
		}
		if !ValidQuestion(q) {
			continue
		}
		valid = append(valid, q)
	}

	if len(valid) == 0 {
		return nil, ErrNoValidQuestions
	}
	if requestedCount > 0 && len(valid) > requestedCount {
		valid = valid[:requestedCount]
	}
	return valid, nil
}
