package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wikiquiz/backend/internal/article"
	"github.com/wikiquiz/backend/internal/logging"
	"github.com/wikiquiz/backend/internal/models"
	"golang.org/x/sync/singleflight"
)

const CachedNote = "Using cached quiz. Set force=true to regenerate."

// QuizGenerator produces quiz content for an article. Calls are slow and
// may take tens of seconds.
type QuizGenerator interface {
	Generate(ctx context.Context, url string, force bool) (*models.Quiz, error)
}

// QuizStore persists generated quizzes keyed by article URL. FindByURL
// returns ErrNotFound when no quiz exists for the URL.
type QuizStore interface {
	FindByURL(ctx context.Context, url string) (*models.StoredQuiz, error)
	Put(ctx context.Context, url string, q *models.Quiz) (*models.StoredQuiz, error)
}

type CoordinatorConfig struct {
	// GenerationTimeout bounds a single generation, independent of the
	// callers waiting on it.
	GenerationTimeout time.Duration
}

// Coordinator decides between serving a cached quiz and generating a new
// one. At most one generation per article runs at a time; concurrent
// requests for the same article share it.
type Coordinator struct {
	generator QuizGenerator
	store     QuizStore
	logger    *slog.Logger
	timeout   time.Duration

	group singleflight.Group

	mu       sync.Mutex
	cache    map[string]*models.StoredQuiz
	inflight map[string]bool
}

func NewCoordinator(generator QuizGenerator, store QuizStore, logger *slog.Logger, cfg CoordinatorConfig) *Coordinator {
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Coordinator{
		generator: generator,
		store:     store,
		logger:    logger,
		timeout:   timeout,
		cache:     make(map[string]*models.StoredQuiz),
		inflight:  make(map[string]bool),
	}
}

// Request resolves ref to a quiz. Without force a cached quiz is returned
// immediately. Once a generation for the article is running, every request
// for it joins that generation, forced or not, so callers observe results
// in request order.
//
// Cancelling ctx abandons the wait only. The generation keeps running and
// its result is still cached.
func (c *Coordinator) Request(ctx context.Context, ref article.Reference, force bool) (*models.GenerationOutcome, error) {
	key := ref.CacheKey()
	ctx = logging.WithAttrs(ctx, slog.String("url", key))

	if !force {
		if stored, ok := c.cached(key); ok {
			c.logger.DebugContext(ctx, "serving cached quiz", "id", stored.ID)
			return cachedOutcome(stored), nil
		}
		if !c.running(key) {
			stored, err := c.store.FindByURL(ctx, key)
			switch {
			case err == nil:
				c.remember(key, stored)
				c.logger.DebugContext(ctx, "serving stored quiz", "id", stored.ID)
				return cachedOutcome(stored), nil
			case !errors.Is(err, ErrNotFound):
				return nil, fmt.Errorf("look up stored quiz: %w", err)
			}
		}
	}

	c.mu.Lock()
	joined := c.inflight[key]
	if !joined && !force {
		// A generation may have finished while the store was consulted.
		if stored, ok := c.cache[key]; ok {
			c.mu.Unlock()
			return cachedOutcome(stored), nil
		}
	}
	c.inflight[key] = true
	ch := c.group.DoChan(key, func() (any, error) {
		return c.generate(ctx, key, force)
	})
	c.mu.Unlock()

	if joined {
		c.logger.InfoContext(ctx, "joining in-flight generation")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return &models.GenerationOutcome{
			Quiz:   res.Val.(*models.StoredQuiz),
			Shared: joined,
		}, nil
	}
}

// generate runs once per flight. The caller's context only contributes
// values; its cancellation does not reach the generation.
func (c *Coordinator) generate(parent context.Context, key string, force bool) (*models.StoredQuiz, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.timeout)
	defer cancel()

	var stored *models.StoredQuiz
	defer func() {
		c.mu.Lock()
		if stored != nil {
			c.cache[key] = stored
		}
		delete(c.inflight, key)
		c.group.Forget(key)
		c.mu.Unlock()
	}()

	start := time.Now()
	c.logger.InfoContext(ctx, "generating quiz", "force", force)

	q, err := c.generator.Generate(ctx, key, force)
	if err != nil {
		c.logger.ErrorContext(ctx, "quiz generation failed", "error", err, "duration", time.Since(start))
		return nil, &GenerationFailedError{URL: key, Err: err}
	}
	q.Normalize()

	saved, err := c.store.Put(ctx, key, q)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to store quiz", "error", err)
		return nil, fmt.Errorf("store quiz: %w", err)
	}
	stored = saved

	c.logger.InfoContext(ctx, "quiz generated",
		"id", stored.ID, "questions", len(q.Questions), "duration", time.Since(start))
	return stored, nil
}

// cached returns the in-memory entry for key unless a generation for it is
// running, in which case the caller must join that generation instead.
func (c *Coordinator) cached(key string) (*models.StoredQuiz, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] {
		return nil, false
	}
	stored, ok := c.cache[key]
	return stored, ok
}

func (c *Coordinator) running(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[key]
}

// remember fills the cache from the store unless a fresher entry or a
// running generation already owns the key.
func (c *Coordinator) remember(key string, stored *models.StoredQuiz) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] {
		return
	}
	if _, ok := c.cache[key]; !ok {
		c.cache[key] = stored
	}
}

func cachedOutcome(stored *models.StoredQuiz) *models.GenerationOutcome {
	return &models.GenerationOutcome{
		Quiz:            stored,
		ServedFromCache: true,
		CacheNote:       CachedNote,
	}
}
