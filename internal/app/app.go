package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"zvgcli/internal/config"
	"zvgcli/internal/contacts"
	apierrors "zvgcli/internal/errors"
	"zvgcli/internal/infrastructure"
	custommw "zvgcli/internal/middleware"
	"zvgcli/internal/portal"
	"zvgcli/internal/services"
	handlers "zvgcli/internal/transport/http"
	ws "zvgcli/internal/websocket"
	"zvgcli/pkg/contracts"
)

const (
	// VERSION is reported by /api/version and the CLI.
	VERSION = contracts.Version
	AppName = contracts.AppName
)

// Application is the main dependency container. All components are wired
// together in NewApplication and torn down in Stop.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	WebSocketHub  *ws.Hub
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders

	store     contacts.Store
	metricsMW *custommw.MetricsMiddleware
	collector *infrastructure.SystemMetricsCollector
}

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Search    *services.SearchService
	Export    *services.ExportService
	Contacts  *services.ContactService
	Health    *services.HealthService
	Stats     *services.StatsService
	WebSocket *ws.Hub
}

// NewApplication creates a new application instance with all services,
// routes and the HTTP server configured.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The log file path resolves against the executable directory so the
	// server behaves the same regardless of the working directory.
	logCfg := cfg.Logging
	if logCfg.FilePath != "" && !filepath.IsAbs(logCfg.FilePath) {
		logCfg.FilePath = filepath.Join(cfg.Paths.ExecutableDir, logCfg.FilePath)
	}
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service graph in dependency order:
// metrics, store and hub first, then the services that use them.
func (a *Application) initializeServices() error {
	metricsMW, err := custommw.NewMetricsMiddleware(a.OTelProviders, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create metrics middleware: %w", err)
	}
	a.metricsMW = metricsMW

	store, err := a.openContactStore(context.Background())
	if err != nil {
		return fmt.Errorf("failed to open contact store: %w", err)
	}
	a.store = store

	hub := ws.NewHub(a.Logger, metricsMW.Metrics(), a.Config.WebSocket.PingPeriod, a.Config.WebSocket.PongWait)
	hub.Start()
	a.WebSocketHub = hub

	client := portal.NewClient(portal.ClientOptions{
		BaseURL:           a.Config.Portal.BaseURL,
		UserAgent:         a.Config.Portal.UserAgent,
		Timeout:           a.Config.Portal.Timeout,
		RequestsPerSecond: a.Config.Portal.RequestsPerSecond,
		Logger:            a.Logger,
	})
	cache := portal.NewCache(a.Config.Portal.CacheTTL)

	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
	if err != nil {
		a.Logger.Warn("system metrics collector unavailable", slog.String("error", err.Error()))
	} else {
		a.collector = collector
	}

	a.Services = &ServiceContainer{
		Search:    services.NewSearchService(client, cache, store, hub, metricsMW.Metrics(), a.Logger),
		Export:    services.NewExportService(store, hub, metricsMW.Metrics(), a.Logger),
		Contacts:  services.NewContactService(store, a.Logger),
		Health:    services.NewHealthService(VERSION, store, a.collector, a.Logger),
		Stats:     services.NewStatsService(cache, a.Logger),
		WebSocket: hub,
	}

	return nil
}

// openContactStore builds the history store selected by the contacts
// backend setting. The redis backend is verified with a ping so a bad
// address fails at startup instead of on the first export.
func (a *Application) openContactStore(ctx context.Context) (contacts.Store, error) {
	switch a.Config.Contacts.Backend {
	case "memory":
		return contacts.NewMemoryStore(), nil
	case "file":
		return contacts.NewFileStore(a.Config.ContactsFilePath()), nil
	case "sqlite":
		return contacts.NewSQLiteStore(ctx, a.Config.ContactsSQLitePath())
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     a.Config.Contacts.Redis.Addr,
			Password: a.Config.Contacts.Redis.Password,
			DB:       a.Config.Contacts.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", a.Config.Contacts.Redis.Addr, err)
		}
		return contacts.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown contacts backend %q", a.Config.Contacts.Backend)
	}
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that does not wrap the ResponseWriter runs before
	// the websocket route, otherwise the upgrade hijack fails.
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.HandleFunc("/ws", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(a.metricsMW.Handler)
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupWebRoutes(r)
	})

	// Prometheus scrapes bypass the middleware group.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures the JSON API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.isDevelopmentMode())
	validation := custommw.NewValidationMiddleware(a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Endpoints that only touch local state get the standard timeout.
		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)

			contactsHandler := handlers.NewContactsHandler(a.Services.Contacts, a.Logger, errorHandler)
			r.Mount("/contacts", contactsHandler.Routes())

			exportHandler := handlers.NewExportHandler(a.Services.Export, validation, a.Logger, errorHandler)
			r.Post("/export", exportHandler.Export)
		})

		// Searches wait on zvg-portal.de, so their budget follows the
		// portal timeout instead of the local one.
		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(a.searchTimeout(), a.Logger))

			searchHandler := handlers.NewSearchHandler(a.Services.Search, validation, a.Logger, errorHandler)
			r.Mount("/", searchHandler.Routes())
		})
	})
}

// setupWebRoutes wires the server rendered dashboard and, when a prebuilt
// web dist sits next to the binary, its static files.
func (a *Application) setupWebRoutes(r chi.Router) {
	statsHandler := handlers.NewStatsHandler(a.Services.Stats, a.Logger)
	r.Get("/stats", statsHandler.Dashboard)

	webDir := a.Config.GetWebDir()
	if info, err := os.Stat(webDir); err == nil && info.IsDir() {
		a.Logger.Info("serving web dist", slog.String("dir", webDir))
		r.Get("/*", a.serveWebDist(os.DirFS(webDir)))
		return
	}

	// Headless install: the dashboard is the landing page.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/stats", http.StatusTemporaryRedirect)
	})
}

// serveWebDist serves files from the prebuilt dist with an index.html
// fallback for client side routes.
func (a *Application) serveWebDist(webFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == "." {
			name = "index.html"
		}

		file, err := openDistFile(webFS, name)
		if err != nil {
			name = "index.html"
			file, err = openDistFile(webFS, name)
			if err != nil {
				http.NotFound(w, r)
				return
			}
		}
		defer file.Close()

		w.Header().Set("Content-Type", contentTypeFor(name))
		if name == "index.html" {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		}

		if _, err := io.Copy(w, file); err != nil {
			a.Logger.WarnContext(r.Context(), "error serving dist file",
				slog.String("file", name),
				slog.String("error", err.Error()))
		}
	}
}

// openDistFile opens name and rejects directories, which fs.Open allows.
func openDistFile(webFS fs.FS, name string) (fs.File, error) {
	file, err := webFS.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// contentTypeFor maps dist file extensions to MIME types. Files served
// from an fs.FS skip the sniffing a plain FileServer would do.
func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// getCORSConfig returns the CORS configuration for the current environment.
func (a *Application) getCORSConfig() custommw.CORSConfig {
	cfg := custommw.CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	port := a.Config.Server.Port
	cfg.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", port),
		fmt.Sprintf("http://127.0.0.1:%d", port),
	}
	if a.isDevelopmentMode() {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		)
	} else if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cfg
}

// isDevelopmentMode reports whether the process runs in a development
// environment.
func (a *Application) isDevelopmentMode() bool {
	switch os.Getenv("ZVG_ENV") {
	case "development", "dev":
		return true
	}
	return os.Getenv("GO_ENV") == "development"
}

// searchTimeout bounds a full search request. The portal client enforces
// its own per request timeout, the route budget only adds headroom on top.
func (a *Application) searchTimeout() time.Duration {
	t := a.Config.Portal.Timeout
	if t <= 0 {
		t = 60 * time.Second
	}
	return t + 15*time.Second
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start begins serving. A fatal server error cancels the supplied context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("contacts_backend", a.Config.Contacts.Backend),
		slog.String("level", a.Config.Logging.Level))

	if a.collector != nil {
		a.collector.Start(ctx)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	if os.Getenv("ZVG_NO_BROWSER") == "" {
		go a.openDashboard(ctx)
	}

	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.WebSocketHub.Stop()
	if a.collector != nil {
		a.collector.Stop()
	}

	if err := a.store.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "error closing contact store", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	_ = infrastructure.CloseLogFile()
	return nil
}

// Run starts the application and blocks until an interrupt arrives or the
// server fails.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "server stopped unexpectedly")
	}

	// The run context may already be cancelled at this point, so shutdown
	// gets a fresh one.
	return a.Stop(context.Background())
}

// handleWebSocket upgrades /ws requests and hands the connection to the hub.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}
	ctx := infrastructure.WithTraceID(r.Context(), reqID)

	a.Logger.InfoContext(ctx, "websocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// No origin means a non-browser client or same-origin request.
			if origin == "" || a.isDevelopmentMode() {
				return true
			}
			for _, allowed := range a.getCORSConfig().AllowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "websocket origin rejected", slog.String("origin", origin))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.WarnContext(ctx, "websocket upgrade rejected",
				slog.Int("status", status),
				slog.String("reason", reason.Error()))
			http.Error(w, http.StatusText(status), status)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The Error hook has already written the response.
		return
	}

	ws.ServeWS(a.WebSocketHub, conn, reqID, a.Logger)
}

// performStartupHealthCheck verifies the writable directories before the
// server takes requests. Failures are reported as warnings, not errors.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"data": a.Config.GetDataDir(),
		"logs": a.Config.GetLogsDir(),
	}
	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "startup health check passed")
	return nil
}

// openDashboard waits until the server answers liveness checks, then opens
// the dashboard in the local browser. ZVG_NO_BROWSER suppresses this.
func (a *Application) openDashboard(ctx context.Context) {
	base := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	healthURL := base + "/api/health/live"

	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := http.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				if err := openBrowser(base + "/stats"); err != nil {
					a.Logger.WarnContext(ctx, "could not open browser",
						slog.String("error", err.Error()),
						slog.String("url", base))
					fmt.Printf("\n%s is running. Open %s/stats in your browser.\n\n", AppName, base)
				}
				return
			}
		}

		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.WarnContext(ctx, "server did not become ready", slog.String("url", healthURL))
}

// openBrowser opens url with the platform launcher.
func openBrowser(url string) error {
	var lastErr error
	for _, method := range browserOpenMethods(url) {
		if err := exec.Command(method.cmd, method.args...).Start(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("open browser: %w", lastErr)
}

type browserCommand struct {
	cmd  string
	args []string
}

// browserOpenMethods returns platform specific browser launchers, most
// reliable first.
func browserOpenMethods(url string) []browserCommand {
	switch runtime.GOOS {
	case "windows":
		return []browserCommand{
			{cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{cmd: "cmd", args: []string{"/c", "start", "", url}},
		}
	case "darwin":
		return []browserCommand{
			{cmd: "open", args: []string{url}},
		}
	default:
		return []browserCommand{
			{cmd: "xdg-open", args: []string{url}},
			{cmd: "sensible-browser", args: []string{url}},
		}
	}
}
