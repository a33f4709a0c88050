package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/quiz"
)

// Store persists generated quizzes in the quizzes table. One row exists per
// article URL; regenerating replaces the row's content and timestamp.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type quizRow struct {
	ID            int64     `db:"id"`
	URL           string    `db:"url"`
	Title         string    `db:"title"`
	Data          string    `db:"full_quiz_data"`
	DateGenerated time.Time `db:"date_generated"`
}

func (r quizRow) toStored() (*models.StoredQuiz, error) {
	var q models.Quiz
	if err := json.Unmarshal([]byte(r.Data), &q); err != nil {
		return nil, fmt.Errorf("decode quiz %d: %w", r.ID, err)
	}
	q.Normalize()
	return &models.StoredQuiz{
		ID:            r.ID,
		URL:           r.URL,
		DateGenerated: r.DateGenerated,
		Quiz:          q,
	}, nil
}

// List returns every stored quiz, most recently generated first.
func (s *Store) List(ctx context.Context) ([]models.QuizSummary, error) {
	summaries := []models.QuizSummary{}
	err := s.db.SelectContext(ctx, &summaries,
		`SELECT id, url, title, date_generated
		 FROM quizzes
		 ORDER BY date_generated DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return summaries, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*models.StoredQuiz, error) {
	var row quizRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, url, title, full_quiz_data, date_generated FROM quizzes WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, quiz.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %d: %w", id, err)
	}
	return row.toStored()
}

func (s *Store) FindByURL(ctx context.Context, url string) (*models.StoredQuiz, error) {
	var row quizRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, url, title, full_quiz_data, date_generated FROM quizzes WHERE url = ?`), url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, quiz.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find quiz by url: %w", err)
	}
	return row.toStored()
}

// Put inserts the quiz for url or replaces the existing one, keeping its id.
func (s *Store) Put(ctx context.Context, url string, q *models.Quiz) (*models.StoredQuiz, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode quiz: %w", err)
	}
	now := time.Now().UTC()

	var id int64
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO quizzes (url, title, full_quiz_data, date_generated)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET
		     title = excluded.title,
		     full_quiz_data = excluded.full_quiz_data,
		     date_generated = excluded.date_generated
		 RETURNING id`),
		url, q.Title, string(data), now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upsert quiz: %w", err)
	}

	return &models.StoredQuiz{
		ID:            id,
		URL:           url,
		DateGenerated: now,
		Quiz:          *q,
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
