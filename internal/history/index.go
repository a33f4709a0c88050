package history

import (
	"context"

	"github.com/wikiquiz/backend/internal/models"
)

// Reader is the read side of the quiz history.
type Reader interface {
	List(ctx context.Context) ([]models.QuizSummary, error)
	Get(ctx context.Context, id int64) (*models.StoredQuiz, error)
}

// Index exposes previously generated quizzes for browsing. It never
// writes; new entries only appear through generation.
type Index struct {
	reader Reader
}

func NewIndex(reader Reader) *Index {
	return &Index{reader: reader}
}

// List returns summaries ordered most recent first.
func (i *Index) List(ctx context.Context) ([]models.QuizSummary, error) {
	return i.reader.List(ctx)
}

// Get returns the stored quiz or quiz.ErrNotFound.
func (i *Index) Get(ctx context.Context, id int64) (*models.StoredQuiz, error) {
	return i.reader.Get(ctx, id)
}
