package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wikiquiz/backend/internal/config"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/scraper"
)

// LLMClient is the interface every provider implementation satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// ArticleFetcher returns the cleaned text of a Wikipedia article.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*scraper.Article, error)
}

// Generator turns an article URL into quiz content: scrape, prompt, parse.
type Generator struct {
	llm     LLMClient
	fetcher ArticleFetcher
	model   string
	logger  *slog.Logger
}

func NewGenerator(llm LLMClient, model string, fetcher ArticleFetcher, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, model: model, fetcher: fetcher, logger: logger}
}

// NewClient builds the LLM client selected by cfg.Provider, wrapped with
// retries for transient provider errors.
func NewClient(ctx context.Context, cfg config.LLM, logger *slog.Logger) (LLMClient, string, error) {
	opts := clientOptions{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	var (
		llm   LLMClient
		model string
		err   error
	)
	switch cfg.Provider {
	case "gemini":
		model = resolveModel(cfg.Model, "gemini-2.5-flash")
		llm, err = NewGeminiClient(ctx, cfg.GeminiAPIKey, model, opts)
	case "anthropic":
		model = resolveModel(cfg.Model, "claude-sonnet-4-5")
		llm, err = NewAPIClient(cfg.AnthropicAPIKey, model, opts)
	case "openai":
		model = resolveModel(cfg.Model, "gpt-4o-mini")
		llm, err = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model, opts)
	case "cli":
		model = "claude-cli"
		llm = NewCLIClient(cfg.CLIPath)
	case "mock":
		model = "mock"
		llm = NewMockClient()
	default:
		return nil, "", fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, "", err
	}

	logger.Info("generator configured", "provider", cfg.Provider, "model", model)

	retry := RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		InitialWait: 5 * time.Second,
		MaxWait:     30 * time.Second,
		Multiplier:  2,
	}
	return WithRetry(llm, retry, logger), model, nil
}

func resolveModel(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func (g *Generator) ModelName() string {
	return g.model
}

// Generate scrapes url and asks the model for a quiz about it. A response
// that does not parse is asked for once more before giving up.
func (g *Generator) Generate(ctx context.Context, url string, force bool) (*models.Quiz, error) {
	article, err := g.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("scrape article: %w", err)
	}
	g.logger.InfoContext(ctx, "scraped article", "title", article.Title, "chars", len(article.Text), "force", force)

	systemPrompt := QuizSystemPrompt()
	userPrompt := BuildQuizUserPrompt(article)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		start := time.Now()
		resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return nil, fmt.Errorf("generate quiz: %w", err)
		}
		g.logger.InfoContext(ctx, "model responded",
			"model", g.model, "duration", time.Since(start),
			"prompt_tokens", resp.PromptTokens, "output_tokens", resp.OutputTokens)

		quiz, err := ParseResponse(resp.Content)
		if err != nil {
			lastErr = err
			g.logger.WarnContext(ctx, "unusable quiz response", "attempt", attempt+1, "error", err)
			continue
		}

		fillFromArticle(quiz, article)
		g.checkQuality(ctx, quiz)
		return quiz, nil
	}
	return nil, fmt.Errorf("parse quiz response: %w", lastErr)
}

func fillFromArticle(q *models.Quiz, article *scraper.Article) {
	if len(q.Sections) == 0 && len(article.Sections) > 0 {
		q.Sections = append([]string(nil), article.Sections...)
	}
}

func (g *Generator) checkQuality(ctx context.Context, q *models.Quiz) {
	score := ComputeStructuralScore(q)
	switch ClassifyQuality(score.Total()) {
	case "passed":
	case "flagged":
		g.logger.WarnContext(ctx, "quiz quality flagged", "score", score.Total(), "checks", score)
	default:
		g.logger.WarnContext(ctx, "quiz quality poor", "score", score.Total(), "checks", score)
	}
}

// IsTransient reports whether err is a provider failure worth retrying later.
func IsTransient(err error) bool {
	var rl *ErrRateLimit
	var unavail *ErrProviderUnavailable
	return errors.As(err, &rl) || errors.As(err, &unavail)
}
