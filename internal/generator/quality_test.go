package generator

import (
	"math"
	"testing"

	"github.com/wikiquiz/backend/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeStructuralScore_AllPerfect(t *testing.T) {
	q := validQuiz(6)
	q.Questions[0].Text = "When was Turing born in Maida Vale?"
	q.Questions[1].Text = "Where did Turing work during the war?"
	q.Questions[2].Text = "Which machine did the codebreakers attack?"
	q.Questions[3].Text = "What test bears his name today?"
	q.Questions[4].Text = "Which university awarded his doctorate?"
	q.Questions[5].Text = "What honour did the government grant posthumously?"

	score := ComputeStructuralScore(&q)
	if !almostEqual(score.Total(), 1.0) {
		t.Errorf("expected 1.0, got %f (%+v)", score.Total(), score)
	}
	if ClassifyQuality(score.Total()) != "passed" {
		t.Error("perfect quiz should pass")
	}
}

func TestComputeStructuralScore_Checks(t *testing.T) {
	q := validQuiz(6)
	q.Summary = " "
	q.Questions[0].Explanation = ""
	for i := range q.Questions {
		q.Questions[i].Difficulty = models.DifficultyEasy
		q.Questions[i].CorrectAnswer = q.Questions[i].Options[0]
	}

	score := ComputeStructuralScore(&q)
	if score.SummaryPresent {
		t.Error("blank summary should fail")
	}
	if score.AllExplanationsPresent {
		t.Error("missing explanation should fail")
	}
	if score.DifficultyMixOK {
		t.Error("single difficulty should fail the mix check")
	}
	if score.AnswerPositionsOK {
		t.Error("all answers in one slot should fail")
	}
	// "Question number N?" texts share every keyword.
	if score.QuestionsDistinct {
		t.Error("near-identical questions should fail the distinct check")
	}
	if !almostEqual(score.Total(), 0) {
		t.Errorf("expected 0, got %f", score.Total())
	}
}

func TestClassifyQuality(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, "passed"},
		{0.8, "passed"},
		{0.70, "flagged"},
		{0.6, "flagged"},
		{0.50, "flagged"},
		{0.4, "reject"},
		{0, "reject"},
	}
	for _, tt := range tests {
		if got := ClassifyQuality(tt.score); got != tt.want {
			t.Errorf("ClassifyQuality(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := tokenize("the quick brown foxes jumped")
	b := tokenize("the quick brown foxes slept")
	// quick brown foxes shared; jumped/slept differ.
	if got := jaccardSimilarity(a, b); !almostEqual(got, 3.0/5.0) {
		t.Errorf("got %f, want 0.6", got)
	}
	if jaccardSimilarity(map[string]bool{}, map[string]bool{}) != 0 {
		t.Error("empty sets should have zero similarity")
	}
}
