// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/learnclj/internal/api"
	"github.com/starford/learnclj/internal/content"
	"github.com/starford/learnclj/internal/courseservice"
	"github.com/starford/learnclj/internal/index"
	"github.com/starford/learnclj/internal/mcpserver"
	"github.com/starford/learnclj/internal/render"
	"github.com/starford/learnclj/internal/segment"
	"github.com/starford/learnclj/internal/site"
	"github.com/starford/learnclj/internal/sse"
	"github.com/starford/learnclj/internal/storage"
)

// ErrStrictBuild is returned by Build in strict mode when documents were
// left out of the course.
var ErrStrictBuild = errors.New("strict build: course has problems")

func newApplication(opts []Option) (*application, error) {
	app := &application{
		version:   "dev",
		logOutput: os.Stdout,
		output:    os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, nil
}

// newCourse wires storage, loader and segmenter from the configuration.
func newCourse(cfg *Config, logger *slog.Logger) (*content.Loader, *segment.Segmenter, error) {
	store, err := storage.NewFS(cfg.Content.Root, cfg.Content.Extension)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	loader := content.NewLoader(store, content.WithLogger(logger))
	seg := segment.New(
		render.NewMarkdown(render.WithUnsafeHTML(cfg.Segmenter.UnsafeHTML)),
		segment.WithNoEvalMarker(cfg.Segmenter.NoEvalLanguage, cfg.Segmenter.NoEvalSuffix),
		segment.WithLogger(logger),
	)
	return loader, seg, nil
}

// Run serves the course site, the JSON API and live reload events.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := slog.Default()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_root", cfg.Content.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure content directory exists.
	if err := os.MkdirAll(cfg.Content.Root, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	loader, seg, err := newCourse(cfg, logger)
	if err != nil {
		return err
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if _, err := index.Sync(ctx, db, loader, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := courseservice.NewService(loader, seg, db, logger)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, broker.PublishContentEvent)

	pages, err := site.New(svc, site.WithLiveReload(cfg.Watch.Enabled), site.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init site: %w", err)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := db.Count(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api and pages at the root.
	r.Mount("/api", apiRouter)
	r.Mount("/", pages.Handler())

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start content watcher with SSE callback.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			if err := index.Watch(gCtx, db, loader, cfg.Content.Root, cfg.Watch.Debounce, logger, broker.PublishContentEvent); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context so the watcher stops with the
// HTTP server.
var errShutdown = errors.New("shutdown")

// Build renders the course into cfg.Build.OutputDir.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := slog.Default()

	loader, seg, err := newCourse(cfg, logger)
	if err != nil {
		return err
	}
	svc := courseservice.NewService(loader, seg, nil, logger)

	pages, err := site.New(svc, site.WithLogger(logger), site.WithStrict(cfg.Build.Strict))
	if err != nil {
		return fmt.Errorf("init site: %w", err)
	}
	rep, err := pages.Build(ctx, cfg.Build.OutputDir)
	if errors.Is(err, site.ErrProblems) {
		for _, p := range rep.Problems {
			logger.Error("course problem", slog.String("path", p.Path.String()), slog.String("reason", p.Reason))
		}
		return fmt.Errorf("%w: %d document(s) left out", ErrStrictBuild, len(rep.Problems))
	}
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	fmt.Fprintf(app.output, "built %d pages into %s (%d problems)\n", rep.Pages, cfg.Build.OutputDir, len(rep.Problems))
	return nil
}

// PrintTree writes the ordered course tree and its problems.
func PrintTree(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	loader, _, err := newCourse(app.config, slog.Default())
	if err != nil {
		return err
	}
	tree, err := loader.BuildTree(ctx)
	if err != nil {
		return err
	}
	return writeTree(app.output, courseservice.ViewOf(tree))
}

// ServeMCP runs the MCP server on stdin/stdout. Logs go to stderr unless
// redirected.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	cfg := app.config
	logger := slog.Default()

	loader, seg, err := newCourse(cfg, logger)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()
	if _, err := index.Sync(ctx, db, loader, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := courseservice.NewService(loader, seg, db, logger)
	return mcpserver.New(svc, app.version).ServeStdio()
}
