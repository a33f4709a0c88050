package quiz

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/testhelpers"
)

func newTestAttempts(ttl time.Duration) (*Attempts, *time.Time) {
	a := NewAttempts(ttl, testhelpers.NewLogger(io.Discard))
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	return a, &now
}

func TestAttempts_StartAndDo(t *testing.T) {
	a, _ := newTestAttempts(time.Hour)

	attempt, state, err := a.Start(42, twoQuestionQuiz())
	require.NoError(t, err)
	assert.NotEmpty(t, attempt.ID)
	assert.Equal(t, attempt.ID, state.AttemptID)
	assert.EqualValues(t, 42, state.QuizID)
	assert.Equal(t, "in_progress", state.Phase)
	assert.Equal(t, 2, state.Total)
	assert.Equal(t, "Q1", state.Question.Text)
	assert.Nil(t, state.Result)

	state, err = a.Do(attempt.ID, func(s *Session) error { return s.SelectAnswer("B") })
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "B"}, state.Answers)

	state, err = a.Do(attempt.ID, (*Session).Next)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.False(t, state.CanSubmit)

	state, err = a.Do(attempt.ID, func(s *Session) error { return s.SelectAnswer("Y") })
	require.NoError(t, err)
	assert.True(t, state.CanSubmit)

	state, err = a.Do(attempt.ID, func(s *Session) error {
		_, err := s.Submit()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", state.Phase)
	assert.False(t, state.CanSubmit)
	require.NotNil(t, state.Result)
	assert.Equal(t, 1, state.Result.Score)
	assert.Equal(t, 50, state.Result.Percentage)

	result, err := a.Result(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, *state.Result, result)
}

func TestAttempts_ErrorsKeepState(t *testing.T) {
	a, _ := newTestAttempts(time.Hour)
	attempt, _, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)

	state, err := a.Do(attempt.ID, func(s *Session) error { return s.SelectAnswer("nope") })
	require.ErrorIs(t, err, ErrInvalidOption)
	assert.Empty(t, state.Answers)
	assert.Equal(t, attempt.ID, state.AttemptID)

	_, err = a.Result(attempt.ID)
	require.ErrorIs(t, err, ErrNotCompleted)
}

func TestAttempts_Unknown(t *testing.T) {
	a, _ := newTestAttempts(time.Hour)
	_, err := a.Do("missing", func(*Session) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAttempts_StartRejectsMalformedQuiz(t *testing.T) {
	a, _ := newTestAttempts(time.Hour)
	q := twoQuestionQuiz()
	q.Questions[1].CorrectAnswer = "Q"

	_, _, err := a.Start(1, q)
	require.ErrorIs(t, err, ErrMalformedQuiz)
	assert.Zero(t, a.Len())
}

func TestAttempts_StateReportsIdleExpiry(t *testing.T) {
	a, now := newTestAttempts(time.Hour)

	attempt, state, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), state.ExpiresAt)

	*now = now.Add(30 * time.Minute)
	state, err = a.Do(attempt.ID, (*Session).Next)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), state.ExpiresAt)
}

func TestAttempts_SweepRemovesIdle(t *testing.T) {
	a, now := newTestAttempts(time.Hour)

	idle, _, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)
	busy, _, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)

	*now = now.Add(50 * time.Minute)
	_, err = a.Do(busy.ID, (*Session).Next)
	require.NoError(t, err)

	*now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, a.Sweep())
	assert.Equal(t, 1, a.Len())

	_, err = a.Do(idle.ID, (*Session).Next)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = a.Do(busy.ID, (*Session).Previous)
	require.NoError(t, err)
}

func TestAttempts_IndependentSessions(t *testing.T) {
	a := NewAttempts(time.Hour, testhelpers.NewLogger(io.Discard))
	first, _, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)
	second, _, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.Do(first.ID, func(s *Session) error { return s.SelectAnswer("A") })
		}()
		go func() {
			defer wg.Done()
			a.Do(second.ID, (*Session).Next)
		}()
	}
	wg.Wait()

	s1, err := a.Do(first.ID, func(*Session) error { return nil })
	require.NoError(t, err)
	s2, err := a.Do(second.ID, func(*Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "A"}, s1.Answers)
	assert.Equal(t, 0, s1.CurrentIndex)
	assert.Empty(t, s2.Answers)
	assert.Equal(t, 1, s2.CurrentIndex)
}

func TestAttempts_RunStopsWithContext(t *testing.T) {
	a := NewAttempts(time.Millisecond, testhelpers.NewLogger(io.Discard))
	_, _, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return a.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestAttemptState_WithholdsAnswers(t *testing.T) {
	a, _ := newTestAttempts(time.Hour)
	_, state, err := a.Start(1, twoQuestionQuiz())
	require.NoError(t, err)

	// The client view carries the options but never the correct answer.
	assert.Equal(t, models.AttemptQuestion{
		Text:       "Q1",
		Options:    []string{"A", "B", "C", "D"},
		Difficulty: models.DifficultyEasy,
	}, state.Question)
}
