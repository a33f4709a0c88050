package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// Quiz is the content generated for one article. JSON names match the
// payload the generation service returns and the API serves.
type Quiz struct {
	Title         string      `json:"title"`
	Summary       string      `json:"summary"`
	KeyEntities   KeyEntities `json:"key_entities"`
	Sections      []string    `json:"sections"`
	Questions     []Question  `json:"quiz"`
	RelatedTopics []string    `json:"related_topics"`
}

type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

type Question struct {
	Text          string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"answer"`
	Difficulty    Difficulty `json:"difficulty"`
	Explanation   string     `json:"explanation"`
}

// Normalize replaces absent groups with empty sequences so callers never
// have to distinguish nil from empty.
func (q *Quiz) Normalize() {
	if q.KeyEntities.People == nil {
		q.KeyEntities.People = []string{}
	}
	if q.KeyEntities.Organizations == nil {
		q.KeyEntities.Organizations = []string{}
	}
	if q.KeyEntities.Locations == nil {
		q.KeyEntities.Locations = []string{}
	}
	if q.Sections == nil {
		q.Sections = []string{}
	}
	if q.Questions == nil {
		q.Questions = []Question{}
	}
	if q.RelatedTopics == nil {
		q.RelatedTopics = []string{}
	}
	for i := range q.Questions {
		if q.Questions[i].Options == nil {
			q.Questions[i].Options = []string{}
		}
	}
}

// StoredQuiz is a quiz as persisted in the history store.
type StoredQuiz struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	DateGenerated time.Time `json:"date_generated"`
	Quiz          Quiz      `json:"full_quiz_data"`
}

// QuizSummary is one row of the history listing.
type QuizSummary struct {
	ID            int64     `json:"id" db:"id"`
	URL           string    `json:"url" db:"url"`
	Title         string    `json:"title" db:"title"`
	DateGenerated time.Time `json:"date_generated" db:"date_generated"`
}

// GenerationOutcome is what a generation request resolves to.
type GenerationOutcome struct {
	Quiz            *StoredQuiz
	ServedFromCache bool
	CacheNote       string
	// Shared is set when the request joined a generation another caller started.
	Shared bool
}
