package importer

import (
	"encoding/json"
	"net/http"

	"Structura/internal/logger"
)

type Handler struct {
	MaxUpload int64
}

func (h *Handler) Components(w http.ResponseWriter, r *http.Request) {
	if h.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := Import(file)
	if err != nil {
		logger.Debug("component import rejected", "error", err)
		http.Error(w, "Invalid file: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
