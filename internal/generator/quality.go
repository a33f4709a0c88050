package generator

import (
	"strings"

	"github.com/wikiquiz/backend/internal/models"
)

// StructuralScore holds the individual structural checks run on a parsed quiz.
type StructuralScore struct {
	SummaryPresent         bool
	AllExplanationsPresent bool
	DifficultyMixOK        bool
	AnswerPositionsOK      bool
	QuestionsDistinct      bool
}

// Total is the fraction of checks that passed, 0.0-1.0.
func (s StructuralScore) Total() float64 {
	checks := []bool{
		s.SummaryPresent,
		s.AllExplanationsPresent,
		s.DifficultyMixOK,
		s.AnswerPositionsOK,
		s.QuestionsDistinct,
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(checks))
}

// ComputeStructuralScore evaluates a quiz that already passed validation.
func ComputeStructuralScore(q *models.Quiz) StructuralScore {
	explOK := true
	difficulties := make(map[models.Difficulty]bool)
	positions := make(map[int]int)
	for _, question := range q.Questions {
		if strings.TrimSpace(question.Explanation) == "" {
			explOK = false
		}
		difficulties[question.Difficulty] = true
		for i, opt := range question.Options {
			if opt == question.CorrectAnswer {
				positions[i]++
				break
			}
		}
	}

	// More than half the answers in one slot is easy to game.
	positionsOK := true
	for _, count := range positions {
		if len(q.Questions) >= 4 && count*2 > len(q.Questions) {
			positionsOK = false
		}
	}

	return StructuralScore{
		SummaryPresent:         strings.TrimSpace(q.Summary) != "",
		AllExplanationsPresent: explOK,
		DifficultyMixOK:        len(difficulties) >= 2,
		AnswerPositionsOK:      positionsOK,
		QuestionsDistinct:      questionsDistinct(q.Questions),
	}
}

// questionsDistinct reports false if any two questions share more than 60%
// of their keywords.
func questionsDistinct(questions []models.Question) bool {
	tokenSets := make([]map[string]bool, len(questions))
	for i, q := range questions {
		tokenSets[i] = tokenize(q.Text)
	}

	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			if jaccardSimilarity(tokenSets[i], tokenSets[j]) > 0.60 {
				return false
			}
		}
	}
	return true
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		// Skip very short words (articles, prepositions)
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// ClassifyQuality returns a classification based on the quality score.
// Returns: "reject" (< 0.50), "flagged" (0.50-0.70), "passed" (> 0.70)
func ClassifyQuality(score float64) string {
	if score < 0.50 {
		return "reject"
	}
	if score <= 0.70 {
		return "flagged"
	}
	return "passed"
}
