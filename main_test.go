package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Structura/internal/config"
	"Structura/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db, store, err := repo.Open(context.Background(), repo.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		TokenKey:    []byte("test-key"),
		RateLimit:   1000,
		RateBurst:   1000,
		CacheSize:   16,
		UploadMaxMB: 1,
	}
	h, err := HandleList(cfg, db, store)
	require.NoError(t, err)
	return h
}

func do(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, "GET", "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(h, "POST", "/api/safety", `{"span": 20, "depth": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Warning")

	rec = do(h, "POST", "/api/energy", `{"area": 100, "insulation": "high"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sap_rating":52.5`)

	rec = do(h, "POST", "/api/components", `{"stair": {"riser": 170, "tread": 280}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "RCC72")

	rec = do(h, "POST", "/api/analyze", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusNoContent, do(h, "OPTIONS", "/api/analyze", "").Code)
}

func TestUserFlow(t *testing.T) {
	h := newTestHandler(t)

	assert.Equal(t, http.StatusUnauthorized, do(h, "GET", "/api/user/profile", "").Code)

	rec := do(h, "POST", "/api/register", `{"login": "ada", "email": "ada@example.com", "password": "secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, "POST", "/api/login", `{"login": "ada", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			session = c
		}
	}
	require.NotNil(t, session)

	rec = do(h, "POST", "/api/user/analyze", `{"title": "house", "safety": {"span": 4, "depth": 0.5}}`, session)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, "GET", "/api/user/history", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = do(h, "GET", "/api/user/profile", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"analyses":1`)

	rec = do(h, "POST", "/api/user/report/pdf", `{"title": "house"}`, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}
