package generator

import (
	"fmt"
	"strings"

	"github.com/wikiquiz/backend/internal/scraper"
)

const (
	// MaxArticleChars bounds the article text sent to the model.
	MaxArticleChars  = 15000
	truncationMarker = "\n\n[Article truncated for processing]"
	titleLinePrefix  = "ARTICLE TITLE: "
)

func QuizSystemPrompt() string {
	return `You are an expert educational content creator. You write multiple-choice quizzes based STRICTLY on a Wikipedia article supplied by the user.

STRICT RULES:
- Use ONLY information from the article text provided
- Do NOT use external knowledge
- Every question must be answerable from the article
- Reference the relevant article section in each explanation
- Use a mix of difficulty levels: easy, medium and hard

QUESTIONS:
- Between 5 and 10 questions; aim for 7-10
- Roughly 40% easy, 40% medium, 20% hard
- Exactly 4 options per question
- All options must be plausible but clearly distinguishable, and no two options may be identical
- The "answer" field must repeat one of the options exactly, character for character

EXTRAS:
- "summary": 2-3 sentences summarising the article
- "key_entities": people, organizations and locations mentioned in the article
- "sections": the main section names of the article
- "related_topics": 3 to 5 real Wikipedia article names related to this one

You must respond with valid JSON only. No markdown, no explanation outside the JSON.`
}

// BuildQuizUserPrompt embeds the article into the generation request.
func BuildQuizUserPrompt(article *scraper.Article) string {
	var sections string
	if len(article.Sections) > 0 {
		sections = fmt.Sprintf("ARTICLE SECTIONS: %s\n", strings.Join(article.Sections, ", "))
	}

	return fmt.Sprintf(`%s%s
%s
ARTICLE TEXT:
%s

Respond with this exact JSON structure:
{
  "title": "Article Title",
  "summary": "Brief 2-3 sentence summary of the article",
  "key_entities": {
    "people": ["Person 1", "Person 2"],
    "organizations": ["Organization 1"],
    "locations": ["Location 1"]
  },
  "sections": ["Section 1", "Section 2", "Section 3"],
  "quiz": [
    {
      "question": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "Option B",
      "difficulty": "easy",
      "explanation": "Brief explanation with reference to the article section"
    }
  ],
  "related_topics": ["Topic 1", "Topic 2", "Topic 3"]
}`,
		titleLinePrefix, article.Title, sections, TruncateArticle(article.Text))
}

// TruncateArticle cuts text to MaxArticleChars runes and marks the cut.
func TruncateArticle(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxArticleChars {
		return text
	}
	return string(runes[:MaxArticleChars]) + truncationMarker
}
