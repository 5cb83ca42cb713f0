package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"Structura/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsMaxFrame  = 64 << 10

	defaultMaxUpload = 10 << 20
)

type Handler struct {
	Responder *Responder
	MaxUpload int64
}

type Reply struct {
	Response string `json:"response"`
}

type wsInbound struct {
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

// Chat accepts a form with `message` and an optional `file` upload. Only the
// file name is used.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxUpload
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "File too big or malformed form", http.StatusBadRequest)
		return
	}

	filename := ""
	if file, header, err := r.FormFile("file"); err == nil {
		filename = header.Filename
		file.Close()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Reply{Response: h.Responder.Respond(r.FormValue("message"), filename)})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WS serves the same responder over a websocket, one reply per inbound frame.
func (h *Handler) WS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxFrame)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("chat ws read failed", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		out := Reply{Response: h.Responder.Respond(in.Message, in.Filename)}
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(out); err != nil {
			logger.Warn("chat ws write failed", "error", err)
			return
		}
	}
}
