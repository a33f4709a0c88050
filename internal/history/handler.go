package history

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/wikiquiz/backend/internal/models"
	"github.com/wikiquiz/backend/internal/quiz"
)

type Handler struct {
	index  *Index
	logger *slog.Logger
}

func NewHandler(index *Index, logger *slog.Logger) *Handler {
	return &Handler{index: index, logger: logger}
}

// RegisterRoutes registers the read-only history endpoints on the api subrouter.
func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/history", h.GetHistory).Methods("GET")
	api.HandleFunc("/quiz/{id:[0-9]+}", h.GetQuiz).Methods("GET")
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.index.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list history", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get history"})
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	stored, err := h.index.Get(r.Context(), id)
	if errors.Is(err, quiz.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz with ID " + strconv.FormatInt(id, 10) + " not found"})
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get quiz", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get quiz"})
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
