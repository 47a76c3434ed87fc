package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/handler"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/service"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	log := zerolog.Nop()
	up := handler.PingFunc(func(context.Context) error { return nil })
	handlers := &Handlers{
		Exam:     handler.NewExamHandler(nil, nil, log),
		Render:   handler.NewRenderHandler(nil, log),
		QBank:    handler.NewQBankHandler(nil, log),
		EditorWS: handler.NewEditorWSHandler(nil, nil, nil, log, nil),
		System:   handler.NewSystemHandler(map[string]handler.Pinger{"postgres": up}, nil, log),
	}
	cfg := &config.Config{GinMode: "test", AllowedOrigins: []string{"https://app.example"}}
	return SetupRouter(service.NewTokenVerifier("secret"), middleware.NewRateLimiter(5, time.Minute), handlers, cfg)
}

func TestHealthIsPublic(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "br", w.Header().Get("Content-Encoding"))
}

func TestAPIRequiresToken(t *testing.T) {
	r := testRouter(t)
	for _, path := range []string{
		"/api/v1/exams/0b0e8a52-9a35-4c8c-9a55-1b1d4c1c7a10",
		"/api/v1/exams/0b0e8a52-9a35-4c8c-9a55-1b1d4c1c7a10/download",
		"/api/v1/qbanks/0b0e8a52-9a35-4c8c-9a55-1b1d4c1c7a10/questions",
		"/api/v1/system/stats",
		"/ws/v1/exams/0b0e8a52-9a35-4c8c-9a55-1b1d4c1c7a10/editor",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/exams", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	testRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}
