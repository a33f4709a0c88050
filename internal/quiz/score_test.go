package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wikiquiz/backend/internal/models"
)

func TestGrade(t *testing.T) {
	questions := twoQuestionQuiz().Questions

	tests := []struct {
		name    string
		answers map[int]string
		want    int
	}{
		{"none", map[int]string{}, 0},
		{"one of two", map[int]string{0: "B", 1: "Y"}, 1},
		{"all", map[int]string{0: "B", 1: "Z"}, 2},
		{"partial answers", map[int]string{1: "Z"}, 1},
		{"case sensitive", map[int]string{0: "b", 1: "z"}, 0},
		{"untrimmed", map[int]string{0: " B"}, 0},
		{"out of range index ignored", map[int]string{7: "B"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(questions, tt.answers))
		})
	}
}

func TestGrade_Empty(t *testing.T) {
	assert.Equal(t, 0, Grade([]models.Question{}, map[int]string{0: "A"}))
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 2, 50},
		{2, 2, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{3, 8, 38},
		{7, 10, 70},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.score, tt.total), "%d/%d", tt.score, tt.total)
	}
}
