package quiz

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wikiquiz/backend/internal/models"
)

// Attempt is one user's Session over a stored quiz. Each attempt has its own
// lock so slow clients never block each other.
type Attempt struct {
	ID     string
	QuizID int64

	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
}

// Attempts holds the live attempts served over HTTP. Attempts idle for
// longer than the TTL are dropped by Sweep.
type Attempts struct {
	mu     sync.Mutex
	byID   map[string]*Attempt
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewAttempts(ttl time.Duration, logger *slog.Logger) *Attempts {
	return &Attempts{
		byID:   make(map[string]*Attempt),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Start opens a new attempt over q. A malformed quiz is rejected here.
func (a *Attempts) Start(quizID int64, q models.Quiz) (*Attempt, models.AttemptState, error) {
	session, err := NewSession(q)
	if err != nil {
		return nil, models.AttemptState{}, err
	}

	attempt := &Attempt{
		ID:       uuid.NewString(),
		QuizID:   quizID,
		session:  session,
		lastUsed: a.now(),
	}

	state := a.state(attempt)

	a.mu.Lock()
	a.byID[attempt.ID] = attempt
	a.mu.Unlock()

	a.logger.Debug("attempt started", "attempt_id", attempt.ID, "quiz_id", quizID)
	return attempt, state, nil
}

// ExpiresAt is when an attempt last used at t becomes eligible for removal.
func (a *Attempts) ExpiresAt(t time.Time) time.Time {
	return t.Add(a.ttl)
}

// Do runs fn against the attempt's session under its lock and returns the
// state afterwards. The state is returned even when fn fails so callers can
// show where the attempt stands.
func (a *Attempts) Do(id string, fn func(s *Session) error) (models.AttemptState, error) {
	a.mu.Lock()
	attempt, ok := a.byID[id]
	a.mu.Unlock()
	if !ok {
		return models.AttemptState{}, ErrNotFound
	}

	attempt.mu.Lock()
	defer attempt.mu.Unlock()

	attempt.lastUsed = a.now()
	err := fn(attempt.session)
	return a.state(attempt), err
}

// Result returns the graded breakdown of a completed attempt.
func (a *Attempts) Result(id string) (models.AttemptResult, error) {
	var result models.AttemptResult
	_, err := a.Do(id, func(s *Session) error {
		var err error
		result, err = s.Result()
		return err
	})
	return result, err
}

func (a *Attempts) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byID)
}

// Sweep removes attempts idle for longer than the TTL and returns how many
// were removed.
func (a *Attempts) Sweep() int {
	cutoff := a.now().Add(-a.ttl)

	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	for id, attempt := range a.byID {
		attempt.mu.Lock()
		idle := attempt.lastUsed.Before(cutoff)
		attempt.mu.Unlock()
		if idle {
			delete(a.byID, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired attempts every interval until ctx is done.
func (a *Attempts) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("attempt janitor started", "ttl", a.ttl, "interval", interval)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("attempt janitor stopped")
			return
		case <-ticker.C:
			if n := a.Sweep(); n > 0 {
				a.logger.Info("expired idle attempts", "count", n, "remaining", a.Len())
			}
		}
	}
}

// state must be called with attempt.mu held.
func (a *Attempts) state(attempt *Attempt) models.AttemptState {
	s := attempt.session
	current := s.Current()
	state := models.AttemptState{
		AttemptID:    attempt.ID,
		QuizID:       attempt.QuizID,
		Phase:        s.Phase().String(),
		CurrentIndex: s.CurrentIndex(),
		Total:        s.Len(),
		Question: models.AttemptQuestion{
			Text:       current.Text,
			Options:    append([]string(nil), current.Options...),
			Difficulty: current.Difficulty,
		},
		Answers:   s.Answers(),
		CanSubmit: s.CanSubmit() && s.Phase() == PhaseInProgress,
		ExpiresAt: a.ExpiresAt(attempt.lastUsed),
	}
	if result, err := s.Result(); err == nil {
		state.Result = &result
	}
	return state
}
