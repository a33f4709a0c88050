package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/wikiquiz/backend/internal/models"
)

// MockResponse is a canned reply for MockClient.
type MockResponse struct {
	Content string
	Err     error
}

// MockCall records the prompts of one Generate call.
type MockCall struct {
	SystemPrompt string
	UserPrompt   string
}

// MockClient replays canned responses in FIFO order. Once the queue is
// empty it builds a plausible quiz about the prompted article.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []MockCall
}

func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})

	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		if resp.Err != nil {
			return nil, resp.Err
		}
		return &LLMResponse{Content: resp.Content}, nil
	}

	return &LLMResponse{
		Content:      buildMockJSON(promptTitle(userPrompt)),
		PromptTokens: len(userPrompt) / 4,
		OutputTokens: 1200,
	}, nil
}

func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

func promptTitle(userPrompt string) string {
	for _, line := range strings.Split(userPrompt, "\n") {
		if rest, ok := strings.CutPrefix(line, titleLinePrefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return "Unknown article"
}

func buildMockJSON(title string) string {
	difficulties := []models.Difficulty{
		models.DifficultyEasy, models.DifficultyEasy, models.DifficultyMedium,
		models.DifficultyMedium, models.DifficultyMedium, models.DifficultyHard,
	}

	q := models.Quiz{
		Title:   title,
		Summary: fmt.Sprintf("[Mock] %s is the subject of this article. The summary is generated locally without calling a model.", title),
		KeyEntities: models.KeyEntities{
			People:        []string{"[Mock] Person"},
			Organizations: []string{"[Mock] Organization"},
			Locations:     []string{"[Mock] Location"},
		},
		Sections:      []string{"Overview", "History", "Legacy"},
		RelatedTopics: []string{"Mock topic A", "Mock topic B", "Mock topic C"},
	}

	for i, d := range difficulties {
		options := make([]string, 4)
		for j := range options {
			options[j] = fmt.Sprintf("[Mock] Option %c for question %d", 'A'+j, i+1)
		}
		q.Questions = append(q.Questions, models.Question{
			Text:          fmt.Sprintf("[Mock] Question %d about %s?", i+1, title),
			Options:       options,
			CorrectAnswer: options[i%4],
			Difficulty:    d,
			Explanation:   fmt.Sprintf("[Mock] Option %c is correct according to the History section.", 'A'+i%4),
		})
	}

	data, _ := json.Marshal(q)
	return string(data)
}
