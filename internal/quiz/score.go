package quiz

import "github.com/wikiquiz/backend/internal/models"

// Grade counts the answers that exactly match the correct answer of their
// question. Comparison is case-sensitive and untrimmed; missing answers score
// nothing.
func Grade(questions []models.Question, answers map[int]string) int {
	score := 0
	for i, q := range questions {
		if selected, ok := answers[i]; ok && selected == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// Percentage returns 100*score/total rounded half up, or 0 for an empty quiz.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}
