// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   Server
	Database Database
	LLM      LLM
	Scraper  Scraper
	LogLevel string
}

type Server struct {
	Port           string
	AllowedOrigins []string
	// AttemptSecret signs the bearer tokens handed out for quiz attempts.
	AttemptSecret string
	AttemptTTL    time.Duration
}

type Database struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type LLM struct {
	Provider string // gemini, anthropic, openai, cli or mock
	Model    string

	GeminiAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	CLIPath         string

	Temperature       float64
	MaxTokens         int
	MaxAttempts       int
	GenerationTimeout time.Duration
}

type Scraper struct {
	Timeout   time.Duration
	UserAgent string
	MaxWords  int
}

type LookupFunc func(key string) (string, bool)

// Load builds a Config from lookup, falling back to defaults for unset keys.
func Load(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	p := parser{lookup: lookup}

	cfg := &Config{
		Server: Server{
			Port:           p.str("PORT", "8080"),
			AllowedOrigins: p.list("ALLOWED_ORIGINS", []string{"*"}),
			AttemptSecret:  p.str("ATTEMPT_TOKEN_SECRET", ""),
			AttemptTTL:     p.duration("ATTEMPT_TTL", 2*time.Hour),
		},
		Database: Database{
			Driver:     p.str("DB_DRIVER", "sqlite"),
			Host:       p.str("DB_HOST", "localhost"),
			Port:       p.str("DB_PORT", "5432"),
			User:       p.str("DB_USER", "wikiquiz"),
			Password:   p.str("DB_PASSWORD", "wikiquiz"),
			Name:       p.str("DB_NAME", "wikiquiz"),
			SSLMode:    p.str("DB_SSLMODE", "disable"),
			SQLitePath: p.str("SQLITE_PATH", "wikiquiz.db"),
		},
		LLM: LLM{
			Provider:          strings.ToLower(p.str("LLM_PROVIDER", "gemini")),
			Model:             p.str("LLM_MODEL", ""),
			GeminiAPIKey:      p.str("GEMINI_API_KEY", ""),
			AnthropicAPIKey:   p.str("ANTHROPIC_API_KEY", ""),
			OpenAIAPIKey:      p.str("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     p.str("OPENAI_BASE_URL", ""),
			CLIPath:           p.str("CLAUDE_CLI_PATH", "claude"),
			Temperature:       p.number("LLM_TEMPERATURE", 0.3),
			MaxTokens:         p.integer("LLM_MAX_TOKENS", 8192),
			MaxAttempts:       p.integer("LLM_MAX_ATTEMPTS", 3),
			GenerationTimeout: p.duration("GENERATION_TIMEOUT", 2*time.Minute),
		},
		Scraper: Scraper{
			Timeout:   p.duration("SCRAPER_TIMEOUT", 10*time.Second),
			UserAgent: p.str("SCRAPER_USER_AGENT", "Mozilla/5.0 (compatible; WikiQuizBot/1.0)"),
			MaxWords:  p.integer("SCRAPER_MAX_WORDS", 3000),
		},
		LogLevel: p.str("LOG_LEVEL", "info"),
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return cfg, nil
}

// Validate reports settings that are required by the selected backends.
func (c *Config) Validate() error {
	return errors.Join(c.Server.Validate(), c.Database.Validate(), c.LLM.Validate())
}

func (s Server) Validate() error {
	var errs []error
	if s.AttemptSecret == "" {
		errs = append(errs, errors.New("ATTEMPT_TOKEN_SECRET is required"))
	}
	if s.AttemptTTL <= 0 {
		errs = append(errs, errors.New("ATTEMPT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (d Database) Validate() error {
	switch d.Driver {
	case "postgres":
		if d.Host == "" || d.Name == "" {
			return errors.New("DB_HOST and DB_NAME are required for postgres")
		}
	case "sqlite":
		if d.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
	return nil
}

func (l LLM) Validate() error {
	var errs []error

	switch l.Provider {
	case "gemini":
		if l.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	case "anthropic":
		if l.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	case "openai":
		if l.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case "cli", "mock":
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", l.Provider))
	}

	if l.Temperature < 0 || l.Temperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE %v out of range [0, 2]", l.Temperature))
	}
	if l.MaxAttempts < 1 {
		errs = append(errs, errors.New("LLM_MAX_ATTEMPTS must be at least 1"))
	}

	return errors.Join(errs...)
}

type parser struct {
	lookup LookupFunc
	errs   []error
}

func (p *parser) str(key, fallback string) string {
	if value, ok := p.lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (p *parser) list(key string, fallback []string) []string {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *parser) integer(key string, fallback int) int {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("parse %s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) number(key string, fallback float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("parse %s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("parse %s: %w", key, err))
		return fallback
	}
	return v
}
