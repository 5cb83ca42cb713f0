package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"Structura/internal/auth"
	"Structura/internal/logger"
	"Structura/internal/repo"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	Svc *Service
}

type BatchInput struct {
	Items []Request `json:"items"`
}

type BatchResult struct {
	Results []Response `json:"results"`
}

type HistoryResult struct {
	Count int                   `json:"count"`
	Items []repo.AnalysisRecord `json:"items"`
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var input Request
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Svc.Analyze(input))
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Svc.Batch(input.Items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, BatchResult{Results: res})
}

// Record analyses the payload and stores it in the caller's history.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var input Request
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	rec, res, err := h.Svc.Record(r.Context(), userID, input)
	if err != nil {
		logger.Error("save analysis failed", "user_id", userID, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Location", "/api/user/history/"+rec.ID)
	writeJSON(w, http.StatusCreated, struct {
		ID string `json:"id"`
		Response
	}{ID: rec.ID, Response: res})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	items, err := h.Svc.History(r.Context(), userID, limit)
	if err != nil {
		logger.Error("list analyses failed", "user_id", userID, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []repo.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, HistoryResult{Count: len(items), Items: items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Analysis not found", http.StatusNotFound)
		return
	}
	rec, err := h.Svc.Get(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Analysis not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("get analysis failed", "user_id", userID, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response failed", "error", err)
	}
}
