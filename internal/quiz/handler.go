package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wikiquiz/backend/internal/article"
	"github.com/wikiquiz/backend/internal/generator"
	"github.com/wikiquiz/backend/internal/middleware"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/scraper"
)

// AttemptTokenLifetime bounds how long an attempt token is accepted. The
// attempt itself may expire sooner when left idle.
const AttemptTokenLifetime = 24 * time.Hour

// QuizReader loads stored quizzes by id.
type QuizReader interface {
	Get(ctx context.Context, id int64) (*models.StoredQuiz, error)
}

type Handler struct {
	coordinator *Coordinator
	quizzes     QuizReader
	attempts    *Attempts
	tokens      *middleware.AttemptTokens
	logger      *slog.Logger
}

func NewHandler(coordinator *Coordinator, quizzes QuizReader, attempts *Attempts, tokens *middleware.AttemptTokens, logger *slog.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		quizzes:     quizzes,
		attempts:    attempts,
		tokens:      tokens,
		logger:      logger,
	}
}

// RegisterRoutes registers generation and attempt endpoints on the api
// subrouter. Attempt endpoints require the attempt's bearer token.
func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/generate_quiz", h.GenerateQuiz).Methods("POST")
	api.HandleFunc("/quiz/{id:[0-9]+}/attempts", h.CreateAttempt).Methods("POST")

	protected := api.PathPrefix("/attempts/{aid}").Subrouter()
	protected.Use(h.tokens.Require)
	protected.HandleFunc("", h.GetAttempt).Methods("GET")
	protected.HandleFunc("/answer", h.SelectAnswer).Methods("POST")
	protected.HandleFunc("/next", h.Next).Methods("POST")
	protected.HandleFunc("/previous", h.Previous).Methods("POST")
	protected.HandleFunc("/submit", h.Submit).Methods("POST")
	protected.HandleFunc("/reset", h.Reset).Methods("POST")
	protected.HandleFunc("/result", h.GetResult).Methods("GET")
}

func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ref, err := article.Parse(req.URL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid Wikipedia URL. Please provide a valid English Wikipedia article URL.",
		})
		return
	}

	outcome, err := h.coordinator.Request(r.Context(), ref, req.Force)
	if err != nil {
		status, msg := generationError(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "generate quiz", "url", ref.URL(), "error", err)
		}
		writeJSON(w, status, models.ErrorResponse{Error: msg})
		return
	}

	stored := outcome.Quiz
	resp := models.GenerateQuizResponse{
		ID:            stored.ID,
		URL:           stored.URL,
		Cached:        outcome.ServedFromCache,
		Message:       outcome.CacheNote,
		DateGenerated: stored.DateGenerated,
		Quiz:          stored.Quiz,
	}
	status := http.StatusCreated
	if outcome.ServedFromCache {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func generationError(err error) (int, string) {
	switch {
	case errors.Is(err, generator.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "LLM quota exceeded. Please wait a minute and try again."
	case errors.Is(err, scraper.ErrArticleNotFound):
		return http.StatusNotFound, "Wikipedia article not found"
	case scraper.IsContentError(err):
		return http.StatusUnprocessableEntity, "Could not build a quiz from this page: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Quiz generation timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Request cancelled"
	}
	var gfe *GenerationFailedError
	if errors.As(err, &gfe) {
		return http.StatusBadGateway, "Quiz generation failed: " + gfe.Err.Error()
	}
	return http.StatusInternalServerError, "Failed to generate quiz"
}

func (h *Handler) CreateAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	stored, err := h.quizzes.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz with ID " + strconv.FormatInt(id, 10) + " not found"})
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load quiz for attempt", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get quiz"})
		return
	}

	attempt, state, err := h.attempts.Start(stored.ID, stored.Quiz)
	if err != nil {
		h.logger.WarnContext(r.Context(), "refusing malformed quiz", "id", id, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: err.Error()})
		return
	}

	expiresAt := time.Now().Add(AttemptTokenLifetime)
	token, err := h.tokens.Issue(attempt.ID, expiresAt)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "issue attempt token", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start attempt"})
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateAttemptResponse{
		AttemptID: attempt.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		State:     state,
	})
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(*Session) error { return nil })
}

func (h *Handler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SelectAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	h.apply(w, r, func(s *Session) error { return s.SelectAnswer(req.Option) })
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*Session).Next)
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, (*Session).Previous)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *Session) error {
		_, err := s.Submit()
		return err
	})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *Session) error {
		s.Reset()
		return nil
	})
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := h.authorizedAttempt(w, r)
	if !ok {
		return
	}

	result, err := h.attempts.Result(attemptID)
	if err != nil {
		status, msg := attemptError(err)
		writeJSON(w, status, models.ErrorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// apply runs op on the attempt named in the path and writes its new state.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, op func(*Session) error) {
	attemptID, ok := h.authorizedAttempt(w, r)
	if !ok {
		return
	}

	state, err := h.attempts.Do(attemptID, op)
	if err != nil {
		status, msg := attemptError(err)
		writeJSON(w, status, models.ErrorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// authorizedAttempt checks that the bearer token was issued for the attempt
// in the path.
func (h *Handler) authorizedAttempt(w http.ResponseWriter, r *http.Request) (string, bool) {
	attemptID := mux.Vars(r)["aid"]
	claimed, ok := middleware.AttemptID(r.Context())
	if !ok || claimed != attemptID {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Token does not grant access to this attempt"})
		return "", false
	}
	return attemptID, true
}

func attemptError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Attempt not found or expired"
	case errors.Is(err, ErrInvalidOption):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrIncompleteAttempt),
		errors.Is(err, ErrAttemptCompleted),
		errors.Is(err, ErrNotCompleted):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
