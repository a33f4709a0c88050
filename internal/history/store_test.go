package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikiquiz/backend/internal/config"
	"github.com/wikiquiz/backend/internal/database"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/quiz"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(config.Database{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewStore(db)
}

func sampleQuiz(title string) *models.Quiz {
	q := &models.Quiz{
		Title:   title,
		Summary: "A summary of " + title,
		KeyEntities: models.KeyEntities{
			People:    []string{"Alan Turing"},
			Locations: []string{"Bletchley Park"},
		},
		Sections: []string{"Early life", "Career"},
		Questions: []models.Question{
			{
				Text:          "Where did Turing work during the war?",
				Options:       []string{"Bletchley Park", "Cambridge", "Manchester", "Princeton"},
				CorrectAnswer: "Bletchley Park",
				Difficulty:    models.DifficultyEasy,
				Explanation:   "He worked at Bletchley Park.",
			},
		},
		RelatedTopics: []string{"Enigma machine"},
	}
	return q
}

func TestStore_PutAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	url := "https://en.wikipedia.org/wiki/Alan_Turing"

	stored, err := s.Put(ctx, url, sampleQuiz("Alan Turing"))
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)

	found, err := s.FindByURL(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, found.ID)
	assert.Equal(t, url, found.URL)
	assert.Equal(t, "Alan Turing", found.Quiz.Title)
	require.Len(t, found.Quiz.Questions, 1)
	assert.Equal(t, "Bletchley Park", found.Quiz.Questions[0].CorrectAnswer)
	assert.Equal(t, []string{}, found.Quiz.KeyEntities.Organizations, "absent groups load as empty")
	assert.WithinDuration(t, stored.DateGenerated, found.DateGenerated, time.Second)

	byID, err := s.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, found.Quiz, byID.Quiz)
}

func TestStore_PutReplacesExistingURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	url := "https://en.wikipedia.org/wiki/Alan_Turing"

	first, err := s.Put(ctx, url, sampleQuiz("first"))
	require.NoError(t, err)
	second, err := s.Put(ctx, url, sampleQuiz("second"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	found, err := s.FindByURL(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "second", found.Quiz.Title)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 42)
	require.ErrorIs(t, err, quiz.ErrNotFound)

	_, err = s.FindByURL(ctx, "https://en.wikipedia.org/wiki/Nothing")
	require.ErrorIs(t, err, quiz.ErrNotFound)
}

func TestStore_ListMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	urls := []string{
		"https://en.wikipedia.org/wiki/A",
		"https://en.wikipedia.org/wiki/B",
		"https://en.wikipedia.org/wiki/C",
	}
	for _, u := range urls {
		_, err := s.Put(ctx, u, sampleQuiz(u))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	// Regenerating A moves it to the top.
	_, err = s.Put(ctx, urls[0], sampleQuiz("A again"))
	require.NoError(t, err)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, urls[0], list[0].URL)
	assert.Equal(t, "A again", list[0].Title)
	assert.Equal(t, urls[2], list[1].URL)
	assert.Equal(t, urls[1], list[2].URL)
}
