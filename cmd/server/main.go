package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/wikiquiz/backend/internal/config"
	"github.com/wikiquiz/backend/internal/database"
	"github.com/wikiquiz/backend/internal/generator"
	"github.com/wikiquiz/backend/internal/history"
	"github.com/wikiquiz/backend/internal/logging"
	"github.com/wikiquiz/backend/internal/middleware"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/quiz"
	"github.com/wikiquiz/backend/internal/scraper"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load(nil)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database ready", "driver", cfg.Database.Driver)

	store := history.NewStore(db)

	llm, model, err := generator.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("configure generator: %w", err)
	}
	gen := generator.NewGenerator(llm, model, scraper.New(cfg.Scraper, logger), logger)

	coordinator := quiz.NewCoordinator(gen, store, logger, quiz.CoordinatorConfig{
		GenerationTimeout: cfg.LLM.GenerationTimeout,
	})

	attempts := quiz.NewAttempts(cfg.Server.AttemptTTL, logger)
	go attempts.Run(ctx, time.Minute)

	quizHandler := quiz.NewHandler(coordinator, store, attempts, middleware.NewAttemptTokens(cfg.Server.AttemptSecret), logger)
	historyHandler := history.NewHandler(history.NewIndex(store), logger)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	quizHandler.RegisterRoutes(api)
	historyHandler.RegisterRoutes(api)
	r.HandleFunc("/health", healthHandler(store, logger)).Methods("GET")

	c := cors.New(corsOptions(cfg.Server.AllowedOrigins))

	chain := alice.New(
		middleware.RecoverPanic(logger),
		middleware.LogRequest(logger),
		middleware.SecureHeaders,
		c.Handler,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           chain.Then(r),
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		// Generation can take as long as the generation timeout.
		WriteTimeout: cfg.LLM.GenerationTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// corsOptions leaves credentials off. Attempt tokens travel in the
// Authorization header, so no cookies are needed across origins.
func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
}

func healthHandler(db pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := models.HealthResponse{Status: "healthy", Database: "connected"}
		status := http.StatusOK
		if err := db.Ping(r.Context()); err != nil {
			logger.ErrorContext(r.Context(), "health check failed", "error", err)
			resp = models.HealthResponse{Status: "unhealthy", Database: "disconnected"}
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
