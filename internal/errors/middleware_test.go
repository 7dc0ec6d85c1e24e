package errors

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMiddleware_Handler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewErrorMiddleware(newTestHandler(false), logger)

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestErrorMiddleware_BodyReplay(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewErrorMiddleware(newTestHandler(false), logger)

	var seenBody string
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seenBody = string(body)
		w.WriteHeader(http.StatusBadRequest)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"state":"xx"}`))

	handler.ServeHTTP(w, r)

	// The middleware must not consume the body it captures for logging.
	assert.Equal(t, `{"state":"xx"}`, seenBody)
}

func TestErrorMiddleware_PanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewErrorMiddleware(newTestHandler(false), logger)

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("export blew up")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/export", nil)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want func(t *testing.T, got string)
	}{
		{
			name: "redacts sensitive fields",
			body: `{"state":"he","password":"hunter2","token":"abc"}`,
			want: func(t *testing.T, got string) {
				assert.NotContains(t, got, "hunter2")
				assert.NotContains(t, got, "abc")
				assert.Contains(t, got, "[REDACTED]")
				assert.Contains(t, got, "he")
			},
		},
		{
			name: "non-json passes through",
			body: "state=he&min_days=3",
			want: func(t *testing.T, got string) {
				assert.Equal(t, "state=he&min_days=3", got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, sanitizeRequestBody(tt.body))
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	mw := RecoveryMiddleware(newTestHandler(false))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/states", nil)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
