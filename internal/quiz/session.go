package quiz

import (
	"fmt"

	"github.com/wikiquiz/backend/internal/models"
)

type Phase int

const (
	PhaseInProgress Phase = iota
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Session is the state of one attempt at a quiz. It is not safe for
// concurrent use; callers sharing a Session must serialize access.
type Session struct {
	quiz    models.Quiz
	index   int
	answers map[int]string
	phase   Phase
	score   int
}

// NewSession starts an attempt at q. The quiz is rejected up front when a
// question has no options, repeats an option, or names a correct answer
// that is not one of its options.
func NewSession(q models.Quiz) (*Session, error) {
	if err := checkQuiz(q); err != nil {
		return nil, err
	}
	return &Session{
		quiz:    q,
		answers: make(map[int]string),
		phase:   PhaseInProgress,
	}, nil
}

func checkQuiz(q models.Quiz) error {
	if len(q.Questions) == 0 {
		return &MalformedQuizError{Index: -1, Reason: "quiz has no questions"}
	}
	for i, question := range q.Questions {
		if len(question.Options) == 0 {
			return &MalformedQuizError{Index: i, Reason: "no options"}
		}
		seen := make(map[string]bool, len(question.Options))
		for _, opt := range question.Options {
			if seen[opt] {
				return &MalformedQuizError{Index: i, Reason: fmt.Sprintf("duplicate option %q", opt)}
			}
			seen[opt] = true
		}
		if !seen[question.CorrectAnswer] {
			return &MalformedQuizError{Index: i, Reason: fmt.Sprintf("correct answer %q is not an option", question.CorrectAnswer)}
		}
	}
	return nil
}

func (s *Session) Quiz() models.Quiz { return s.quiz }

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Len() int { return len(s.quiz.Questions) }

func (s *Session) CurrentIndex() int { return s.index }

func (s *Session) Current() models.Question {
	return s.quiz.Questions[s.index]
}

// Answer returns the option recorded for question i, if any.
func (s *Session) Answer(i int) (string, bool) {
	a, ok := s.answers[i]
	return a, ok
}

// Answers returns a copy of the recorded answers keyed by question index.
func (s *Session) Answers() map[int]string {
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// SelectAnswer records option for the current question, replacing any
// earlier choice. The current question does not change.
func (s *Session) SelectAnswer(option string) error {
	if s.phase != PhaseInProgress {
		return ErrAttemptCompleted
	}
	for _, opt := range s.Current().Options {
		if opt == option {
			s.answers[s.index] = option
			return nil
		}
	}
	return ErrInvalidOption
}

// Next moves to the following question. It is a no-op on the last one.
func (s *Session) Next() error {
	if s.phase != PhaseInProgress {
		return ErrAttemptCompleted
	}
	s.index = min(s.index+1, len(s.quiz.Questions)-1)
	return nil
}

// Previous moves to the preceding question. It is a no-op on the first one.
func (s *Session) Previous() error {
	if s.phase != PhaseInProgress {
		return ErrAttemptCompleted
	}
	s.index = max(s.index-1, 0)
	return nil
}

// CanSubmit reports whether every question has an answer.
func (s *Session) CanSubmit() bool {
	for i := range s.quiz.Questions {
		if _, ok := s.answers[i]; !ok {
			return false
		}
	}
	return true
}

// Submit grades the attempt and freezes the answers until Reset.
func (s *Session) Submit() (int, error) {
	if s.phase != PhaseInProgress {
		return 0, ErrAttemptCompleted
	}
	if !s.CanSubmit() {
		return 0, ErrIncompleteAttempt
	}
	s.score = Grade(s.quiz.Questions, s.answers)
	s.phase = PhaseCompleted
	return s.score, nil
}

// Score returns the graded score once the attempt is completed.
func (s *Session) Score() (int, bool) {
	if s.phase != PhaseCompleted {
		return 0, false
	}
	return s.score, true
}

// Reset discards answers and score and starts over from the first question.
// It is valid in any phase.
func (s *Session) Reset() {
	s.answers = make(map[int]string)
	s.index = 0
	s.phase = PhaseInProgress
	s.score = 0
}

func (s *Session) Result() (models.AttemptResult, error) {
	if s.phase != PhaseCompleted {
		return models.AttemptResult{}, ErrNotCompleted
	}
	total := len(s.quiz.Questions)
	per := make([]models.QuestionOutcome, total)
	for i, q := range s.quiz.Questions {
		out := models.QuestionOutcome{
			Question:      q.Text,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if a, ok := s.answers[i]; ok {
			out.Selected = &a
			out.Correct = a == q.CorrectAnswer
		}
		per[i] = out
	}
	return models.AttemptResult{
		Score:       s.score,
		Total:       total,
		Percentage:  Percentage(s.score, total),
		PerQuestion: per,
	}, nil
}
