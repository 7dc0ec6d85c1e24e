package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zvgcli/internal/config"
	"zvgcli/internal/infrastructure"
)

// setupTestEnvironment points all paths at a scratch directory, selects the
// in-memory history store and keeps the logger quiet.
func setupTestEnvironment(t *testing.T) {
	t.Helper()

	t.Setenv("ZVG_PATHS_EXECUTABLE_DIR", t.TempDir())
	t.Setenv("ZVG_SERVER_PORT", "18099")
	t.Setenv("ZVG_CONTACTS_BACKEND", "memory")
	t.Setenv("ZVG_LOGGING_LEVEL", "error")
	t.Setenv("ZVG_LOGGING_OUTPUT", "console")
	t.Setenv("ZVG_NO_BROWSER", "1")

	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name          string
		setupEnv      func(t *testing.T)
		wantErr       bool
		errorContains string
	}{
		{
			name:     "successful initialization",
			setupEnv: func(t *testing.T) {},
		},
		{
			name: "invalid port",
			setupEnv: func(t *testing.T) {
				t.Setenv("ZVG_SERVER_PORT", "-1")
			},
			wantErr:       true,
			errorContains: "load configuration",
		},
		{
			name: "unknown contacts backend",
			setupEnv: func(t *testing.T) {
				t.Setenv("ZVG_CONTACTS_BACKEND", "etcd")
			},
			wantErr:       true,
			errorContains: "contacts backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnvironment(t)
			tt.setupEnv(t)

			application, err := NewApplication()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, application)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, application)
			t.Cleanup(application.WebSocketHub.Stop)

			assert.NotNil(t, application.Config)
			assert.NotNil(t, application.Logger)
			assert.NotNil(t, application.Router)
			assert.NotNil(t, application.Server)
			assert.NotNil(t, application.WebSocketHub)
			require.NotNil(t, application.Services)
			assert.NotNil(t, application.Services.Search)
			assert.NotNil(t, application.Services.Export)
			assert.NotNil(t, application.Services.Contacts)
			assert.NotNil(t, application.Services.Health)
			assert.NotNil(t, application.Services.Stats)
		})
	}
}

// TestApplicationRoutes drives the assembled router end to end. Only
// endpoints that never reach zvg-portal.de are exercised here.
func TestApplicationRoutes(t *testing.T) {
	setupTestEnvironment(t)

	application, err := NewApplication()
	require.NoError(t, err)
	t.Cleanup(application.WebSocketHub.Stop)

	srv := httptest.NewServer(application.Router)
	defer srv.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		validate func(t *testing.T, resp *http.Response, body []byte)
	}{
		{
			name:   "health",
			method: http.MethodGet,
			path:   "/api/health",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				var health map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &health))
				assert.Equal(t, "ok", health["status"])
				assert.Equal(t, VERSION, health["version"])
			},
		},
		{
			name:   "liveness",
			method: http.MethodGet,
			path:   "/api/health/live",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Contains(t, string(body), "alive")
			},
		},
		{
			name:   "version",
			method: http.MethodGet,
			path:   "/api/version",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Contains(t, string(body), VERSION)
			},
		},
		{
			name:   "states list",
			method: http.MethodGet,
			path:   "/api/states",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				var envelope struct {
					Status string           `json:"status"`
					Count  int              `json:"count"`
					Data   []map[string]any `json:"data"`
				}
				require.NoError(t, json.Unmarshal(body, &envelope))
				assert.Equal(t, "success", envelope.Status)
				assert.Equal(t, 16, envelope.Count)
			},
		},
		{
			name:   "contacts list empty",
			method: http.MethodGet,
			path:   "/api/contacts",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				var envelope struct {
					Status string `json:"status"`
					Count  int    `json:"count"`
				}
				require.NoError(t, json.Unmarshal(body, &envelope))
				assert.Equal(t, "success", envelope.Status)
				assert.Equal(t, 0, envelope.Count)
			},
		},
		{
			name:   "search with unknown state",
			method: http.MethodPost,
			path:   "/api/search",
			body:   `{"state":"xx"}`,
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Contains(t, string(body), "UNKNOWN_STATE")
				assert.Contains(t, string(body), "trace_id")
			},
		},
		{
			name:   "search with malformed body",
			method: http.MethodPost,
			path:   "/api/search",
			body:   `{"state":`,
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Contains(t, string(body), "INVALID_REQUEST")
			},
		},
		{
			name:   "export with empty selection is a no-op",
			method: http.MethodPost,
			path:   "/api/export",
			body:   `{"listings":[],"selection":{},"format":"csv"}`,
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)
				assert.Empty(t, body)
			},
		},
		{
			name:   "stats dashboard",
			method: http.MethodGet,
			path:   "/stats",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
				assert.Contains(t, string(body), "echarts")
			},
		},
		{
			name:   "root redirects to dashboard without a web dist",
			method: http.MethodGet,
			path:   "/",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
				assert.Equal(t, "/stats", resp.Header.Get("Location"))
			},
		},
		{
			name:   "metrics endpoint registered",
			method: http.MethodGet,
			path:   "/metrics",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
			},
		},
		{
			name:   "plain request to websocket endpoint",
			method: http.MethodGet,
			path:   "/ws",
			validate: func(t *testing.T, resp *http.Response, body []byte) {
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reqBody io.Reader
			if tt.body != "" {
				reqBody = strings.NewReader(tt.body)
			}
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, reqBody)
			require.NoError(t, err)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			tt.validate(t, resp, body)
		})
	}
}

func TestApplicationWebSocketUpgrade(t *testing.T) {
	setupTestEnvironment(t)

	application, err := NewApplication()
	require.NoError(t, err)
	t.Cleanup(application.WebSocketHub.Stop)

	srv := httptest.NewServer(application.Router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome struct {
		Type string `json:"type"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connection", welcome.Type)
	assert.Equal(t, "connected", welcome.Data.Status)
}

func TestApplicationOpenContactStore(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.ExecutableDir = t.TempDir()
	require.NoError(t, os.MkdirAll(cfg.GetDataDir(), 0o755))

	application := &Application{Config: cfg, Logger: discardLogger()}

	t.Run("memory", func(t *testing.T) {
		cfg.Contacts.Backend = "memory"
		store, err := application.openContactStore(context.Background())
		require.NoError(t, err)
		require.NoError(t, store.Close())
	})

	t.Run("file", func(t *testing.T) {
		cfg.Contacts.Backend = "file"
		store, err := application.openContactStore(context.Background())
		require.NoError(t, err)
		history, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, history)
		require.NoError(t, store.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg.Contacts.Backend = "sqlite"
		store, err := application.openContactStore(context.Background())
		require.NoError(t, err)
		history, err := store.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, history)
		require.NoError(t, store.Close())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg.Contacts.Backend = "carrier-pigeon"
		_, err := application.openContactStore(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "carrier-pigeon")
	})
}

func TestServeWebDist(t *testing.T) {
	application := &Application{Logger: discardLogger()}

	dist := fstest.MapFS{
		"index.html":    &fstest.MapFile{Data: []byte("<html>dist</html>")},
		"assets/app.js": &fstest.MapFile{Data: []byte("console.log(1)")},
	}
	handler := application.serveWebDist(dist)

	tests := []struct {
		name     string
		path     string
		wantType string
		wantBody string
	}{
		{"exact file", "/assets/app.js", "application/javascript", "console.log(1)"},
		{"root serves index", "/", "text/html; charset=utf-8", "<html>dist</html>"},
		{"client route falls back to index", "/suchen", "text/html; charset=utf-8", "<html>dist</html>"},
		{"directory falls back to index", "/assets", "text/html; charset=utf-8", "<html>dist</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}

	t.Run("missing index", func(t *testing.T) {
		empty := application.serveWebDist(fstest.MapFS{})
		rec := httptest.NewRecorder()
		empty(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetCORSConfig(t *testing.T) {
	cfg := config.Default()
	application := &Application{Config: cfg, Logger: discardLogger()}

	t.Run("production origins", func(t *testing.T) {
		t.Setenv("ZVG_ENV", "")
		t.Setenv("GO_ENV", "")
		cfg.Security.EnableCORS = true
		cfg.Security.AllowedOrigins = []string{"https://zvg.example.com"}

		cors := application.getCORSConfig()
		assert.Contains(t, cors.AllowedOrigins, "http://localhost:8080")
		assert.Contains(t, cors.AllowedOrigins, "https://zvg.example.com")
		assert.NotContains(t, cors.AllowedOrigins, "http://localhost:3000")
		assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
	})

	t.Run("development adds dev server origins", func(t *testing.T) {
		t.Setenv("ZVG_ENV", "development")

		cors := application.getCORSConfig()
		assert.Contains(t, cors.AllowedOrigins, "http://localhost:3000")
	})
}

func TestApplicationStartStop(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("ZVG_SERVER_PORT", "18123")

	application, err := NewApplication()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, application.Start(ctx, cancel))

	// Wait for the listener to come up.
	var ready bool
	for i := 0; i < 20; i++ {
		resp, err := http.Get("http://localhost:18123/api/health/live")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				ready = true
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.True(t, ready, "server did not become ready")

	require.NoError(t, application.Stop(context.Background()))

	// After shutdown the port no longer accepts requests.
	_, err = http.Get("http://localhost:18123/api/health/live")
	assert.Error(t, err)
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"html", "index.html", "text/html; charset=utf-8"},
		{"javascript", "chunk-1a2b.js", "application/javascript"},
		{"stylesheet", "main.css", "text/css"},
		{"svg", "logo.svg", "image/svg+xml"},
		{"unknown", "archive.wasm", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentTypeFor(tt.file))
		})
	}
}
