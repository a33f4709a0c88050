package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wikiquiz/backend/internal/models"
)

// ValidationError lists the semantic defects found in a schema-valid quiz.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse turns a raw model response into a quiz. The response may be
// wrapped in a markdown code fence.
func ParseResponse(responseBody string) (*models.Quiz, error) {
	cleaned := []byte(stripCodeFences(responseBody))

	if err := validateSchema(cleaned); err != nil {
		return nil, err
	}

	var quiz models.Quiz
	if err := json.Unmarshal(cleaned, &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	quiz.Normalize()

	if err := validateQuiz(&quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateQuiz(quiz *models.Quiz) error {
	var errs []string

	for i, q := range quiz.Questions {
		qNum := i + 1

		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if seen[opt] {
				errs = append(errs, fmt.Sprintf("question %d: duplicate option %q", qNum, opt))
			}
			seen[opt] = true
		}

		if !seen[q.CorrectAnswer] {
			errs = append(errs, fmt.Sprintf("question %d: answer %q is not one of the options", qNum, q.CorrectAnswer))
		}

		if !models.ValidDifficulties[q.Difficulty] {
			errs = append(errs, fmt.Sprintf("question %d: invalid difficulty %q", qNum, q.Difficulty))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
