package chat

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondKeywordOrder(t *testing.T) {
	r := NewResponder(rand.NewPCG(1, 2))

	cases := []struct {
		msg  string
		want string
	}{
		{"Is this beam SAFE?", topics[0].reply},
		{"how much ENERGY will it use", topics[1].reply},
		{"which standards do you follow", topics[2].reply},
		{"hello there", topics[3].reply},
		{"check my slab", topics[4].reply},
		// safety wins over components for "beam"
		{"beam and column", topics[0].reply},
	}
	for _, c := range cases {
		t.Run(c.msg, func(t *testing.T) {
			assert.Equal(t, c.want, r.Respond(c.msg, ""))
		})
	}
}

func TestRespondFallback(t *testing.T) {
	r := NewResponder(rand.NewPCG(7, 7))
	for range 20 {
		assert.Contains(t, fallbacks, r.Respond("xyz", ""))
	}

	a := NewResponder(rand.NewPCG(3, 4))
	b := NewResponder(rand.NewPCG(3, 4))
	for range 5 {
		assert.Equal(t, a.Respond("", ""), b.Respond("", ""))
	}
}

func TestRespondFile(t *testing.T) {
	r := NewResponder(nil)

	out := r.Respond("hello", "Plan.DWG")
	assert.True(t, strings.HasPrefix(out, "### AI Agent Analysis of Plan.DWG\n"))
	assert.Contains(t, out, "Safety Rating**: 85%")

	out = r.Respond("", "notes.txt")
	assert.Contains(t, out, "File received.")
	assert.NotContains(t, out, "Beam Spans")
}

func TestChatHandlerMultipart(t *testing.T) {
	h := &Handler{Responder: NewResponder(nil), MaxUpload: 1 << 20}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("message", "hi"))
	fw, err := mw.CreateFormFile("file", "floor.pdf")
	require.NoError(t, err)
	fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Contains(t, reply.Response, "floor.pdf")
}

func TestChatHandlerURLEncoded(t *testing.T) {
	h := &Handler{Responder: NewResponder(nil)}

	form := url.Values{"message": {"solar panels?"}}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, topics[1].reply, reply.Response)
}

func TestChatHandlerTooLarge(t *testing.T) {
	h := &Handler{Responder: NewResponder(nil), MaxUpload: 16}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "big.dwg")
	fw.Write(bytes.Repeat([]byte("x"), 1024))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatWebsocket(t *testing.T) {
	h := &Handler{Responder: NewResponder(nil)}
	srv := httptest.NewServer(http.HandlerFunc(h.WS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsInbound{Message: "what about RCC?"}))
	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, topics[2].reply, reply.Response)

	require.NoError(t, conn.WriteJSON(wsInbound{Filename: "site.png"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Contains(t, reply.Response, "site.png")
}
