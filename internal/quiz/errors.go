package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrGenerationFailed  = errors.New("quiz generation failed")
	ErrNotFound          = errors.New("not found")
	ErrIncompleteAttempt = errors.New("every question must be answered before submitting")
	ErrInvalidOption     = errors.New("option does not belong to the current question")
	ErrAttemptCompleted  = errors.New("attempt already submitted")
	ErrNotCompleted      = errors.New("attempt has not been submitted")
	ErrMalformedQuiz     = errors.New("malformed quiz")
)

// GenerationFailedError wraps the reason the generation service gave up on
// an article. It matches ErrGenerationFailed with errors.Is.
type GenerationFailedError struct {
	URL string
	Err error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generate quiz for %s: %v", e.URL, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

func (e *GenerationFailedError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// MalformedQuizError reports the first structural defect found in a quiz
// handed to NewSession. Index is -1 when the defect is not tied to a question.
type MalformedQuizError struct {
	Index  int
	Reason string
}

func (e *MalformedQuizError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed quiz: %s", e.Reason)
	}
	return fmt.Sprintf("malformed quiz: question %d: %s", e.Index+1, e.Reason)
}

func (e *MalformedQuizError) Is(target error) bool {
	return target == ErrMalformedQuiz
}
