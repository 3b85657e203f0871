// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// cmd/server opens the store and builds the metrics registry, then
// New assembles everything else:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs. Services get repository
// interfaces, handlers get services, and nothing below the handlers knows
// about HTTP.
package server

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
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/videohub/internal/auth"
	"github.com/sakif/videohub/internal/config"
	"github.com/sakif/videohub/internal/handler"
	"github.com/sakif/videohub/internal/metrics"
	"github.com/sakif/videohub/internal/middleware"
	sqliteRepo "github.com/sakif/videohub/internal/repository/sqlite"
	"github.com/sakif/videohub/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database handed to New and closes it when Start
// returns, after in-flight requests have drained.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	metrics *metrics.Metrics
}

// New wires repositories, services and handlers onto a router.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with
// the modernc.org/sqlite driver.
func New(cfg *config.Config, db *sqliteRepo.DB, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: m,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                         → store ping
//	GET    /metrics                         → Prometheus
//	GET    /auth/github/login               → GitHub redirect (when configured)
//	GET    /auth/github/callback            → GitHub sign-in (when configured)
//	POST   /api/auth/register|login|logout  → accounts
//	GET    /api/auth/me, PUT /api/auth/profile
//	       /api/channels...                 → channels, subscriptions
//	       /api/videos...                   → videos, reactions
//	       /api/comments...                 → comments
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID, so the logger can print it
// 2. RealIP, to log the client behind a proxy
// 3. Logger and Metrics, wrapping everything after them
// 4. Recoverer, innermost, so a panic becomes a 500 that is still logged
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(chimiddleware.Recoverer)

	// === Services ===
	users := s.db.Users()
	channels := s.db.Channels()

	authService := service.NewAuthService(users, tokens, auth.NewPasswordService(), s.metrics, s.logger)
	channelService := service.NewChannelService(channels, s.metrics, s.logger)
	videoService := service.NewVideoService(s.db.Videos(), channels, s.metrics, s.logger)
	commentService := service.NewCommentService(s.db.Comments(), s.metrics, s.logger)

	// === Handlers ===
	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	authHandler := handler.NewAuthHandler(authService, github, tokens.TTL(), s.config.Production(), s.logger)
	channelHandler := handler.NewChannelHandler(channelService, videoService, s.logger)
	videoHandler := handler.NewVideoHandler(videoService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	requireAuth := auth.RequireAuth(tokens, users)

	// === Operational Routes ===
	s.router.Get("/healthz", healthHandler.HandleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// === GitHub Routes ===
	// Only registered when credentials are configured.
	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.HandleMe)
				r.Put("/profile", authHandler.HandleUpdateProfile)
			})
		})

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", channelHandler.HandleList)
			r.Get("/{id}", channelHandler.HandleGet)
			r.Get("/{id}/videos", channelHandler.HandleVideos)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				// Static segment; chi matches it ahead of /{id}.
				r.Get("/my-channels", channelHandler.HandleMine)
				r.Post("/", channelHandler.HandleCreate)
				r.Put("/{id}", channelHandler.HandleUpdate)
				r.Delete("/{id}", channelHandler.HandleDelete)
				r.Post("/{id}/subscribe", channelHandler.HandleSubscribe)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.HandleList)
			r.Get("/trending", videoHandler.HandleTrending)
			r.Get("/{id}", videoHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", videoHandler.HandleCreate)
				r.Put("/{id}", videoHandler.HandleUpdate)
				r.Delete("/{id}", videoHandler.HandleDelete)
				r.Post("/{id}/like", videoHandler.HandleLike)
				r.Post("/{id}/dislike", videoHandler.HandleDislike)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/video/{videoId}", commentHandler.HandleListByVideo)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", commentHandler.HandleCreate)
				r.Put("/{id}", commentHandler.HandleUpdate)
				r.Delete("/{id}", commentHandler.HandleDelete)
				r.Post("/{id}/like", commentHandler.HandleLike)
			})
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("environment", s.config.Environment),
			slog.Bool("github", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
