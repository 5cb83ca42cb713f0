package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"Structura/internal/auth"
	"Structura/internal/logger"
	"Structura/internal/repo"
)

type ProfileHandler struct {
	Repo repo.Repository
}

type Profile struct {
	repo.User
	Analyses int `json:"analyses"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := auth.UserFromContext(r.Context())
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Repo.GetUser(r.Context(), userID)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("get profile failed", "user_id", userID, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	n, err := h.Repo.CountAnalyses(r.Context(), userID)
	if err != nil {
		logger.Error("count analyses failed", "user_id", userID, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Profile{User: user, Analyses: n})
}
