package models

import "time"

type GenerateQuizRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}

// GenerateQuizResponse flattens the quiz next to the request metadata, the
// shape existing web clients expect.
type GenerateQuizResponse struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Cached        bool      `json:"cached"`
	Message       string    `json:"message,omitempty"`
	DateGenerated time.Time `json:"date_generated"`
	Quiz
}

type CreateAttemptResponse struct {
	AttemptID string       `json:"attempt_id"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	State     AttemptState `json:"state"`
}

type SelectAnswerRequest struct {
	Option string `json:"option"`
}

// AttemptState is the client view of a quiz-taking session. The correct
// answers are withheld until the attempt is completed.
type AttemptState struct {
	AttemptID    string          `json:"attempt_id"`
	QuizID       int64           `json:"quiz_id"`
	Phase        string          `json:"phase"`
	CurrentIndex int             `json:"current_index"`
	Total        int             `json:"total"`
	Question     AttemptQuestion `json:"question"`
	Answers      map[int]string  `json:"answers"`
	CanSubmit    bool            `json:"can_submit"`
	// ExpiresAt is when the attempt is dropped unless it is used again.
	ExpiresAt    time.Time       `json:"expires_at"`
	Result       *AttemptResult  `json:"result,omitempty"`
}

type AttemptQuestion struct {
	Text       string     `json:"question"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
}

type AttemptResult struct {
	Score       int               `json:"score"`
	Total       int               `json:"total"`
	Percentage  int               `json:"percentage"`
	PerQuestion []QuestionOutcome `json:"per_question"`
}

// QuestionOutcome reports a single graded question. Selected is nil when the
// question was left unanswered.
type QuestionOutcome struct {
	Question      string  `json:"question"`
	Selected      *string `json:"selected"`
	CorrectAnswer string  `json:"correct_answer"`
	Correct       bool    `json:"correct"`
	Explanation   string  `json:"explanation"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
