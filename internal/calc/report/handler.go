package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"Structura/internal/auth"
	"Structura/internal/calc/analysis"
	"Structura/internal/logger"
)

type Handler struct {
	Svc *analysis.Service
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	_, login, _ := auth.UserFromContext(r.Context())

	var buf bytes.Buffer
	meta := Meta{Title: input.Title, Author: login, Date: time.Now()}
	if err := Render(&buf, meta, input, h.Svc.Analyze(input)); err != nil {
		logger.Error("render report failed", "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
