package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	})

	req := httptest.NewRequest(http.MethodGet, "/speakers", nil)
	rec := httptest.NewRecorder()
	LoggingMiddleware(logger, inner).ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/speakers")
	assert.Contains(t, out, "status=418")
	assert.NotContains(t, out, "body", "bodies must not be logged")
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware(logger, inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "status=200")
}

func TestCORS(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS([]string{"http://localhost:5173"}, inner)

	t.Run("allowed origin gets header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/speakers", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/speakers", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight answered with 204", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/speakers", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})
}
