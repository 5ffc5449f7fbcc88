// adkchat - web chat client for the analytics agent backend
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ananyev/adkchat/internal/agent"
	"github.com/ananyev/adkchat/internal/api"
	"github.com/ananyev/adkchat/internal/chart"
	"github.com/ananyev/adkchat/internal/chat"
	"github.com/ananyev/adkchat/internal/config"
	"github.com/ananyev/adkchat/internal/domain"
	"github.com/ananyev/adkchat/internal/middleware"
	"github.com/ananyev/adkchat/internal/store"
	"github.com/ananyev/adkchat/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "backend", cfg.Backend.URL, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	backendClient := agent.NewClient(agent.ClientConfig{
		BaseURL:        cfg.Backend.URL,
		AppName:        cfg.Backend.AppName,
		UserID:         cfg.Backend.UserID,
		SessionTimeout: cfg.Backend.SessionTimeout,
		QueryTimeout:   cfg.Backend.QueryTimeout,
	}, logger)
	sessions := agent.NewSessionManager(repo, backendClient, logger)

	transcript, err := chat.NewTranscriptLogger(cfg.TranscriptLog, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcript.Close(); closeErr != nil {
			slog.Error("Failed to close transcript logger", "error", closeErr)
		}
	}()

	// Channel for pushing appended turns to connected browsers.
	events := make(chan domain.ChatTurn, 64)

	charts := chart.NewArtifactCache(0)
	history := chat.NewHistory()
	svc := chat.NewService(sessions, backendClient, history, charts, repo, transcript, events, logger)

	limiter := agent.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	chatHandler := api.NewChatHandler(svc, charts, limiter, repo, logger)

	hub := api.NewHub(logger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	chatHandler.RegisterRoutes(r)

	// WebSocket endpoint for live turn updates.
	r.Get("/ws/events", hub.ServeHTTP)

	// Serve embedded frontend.
	r.Handle("/*", web.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Backend.QueryTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx, events)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
