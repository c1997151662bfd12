// Package server wires handlers, middleware, and routes, and owns the HTTP
// server lifecycle.
//
// main.go stays minimal: it loads configuration and calls New/Start. All
// dependency wiring happens here, in one place, so each layer only receives
// what it needs — services get repository interfaces, handlers get services,
// and nothing below the handler layer touches HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Gopi-techy/SkillSlate/internal/ai"
	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/config"
	"github.com/Gopi-techy/SkillSlate/internal/handler"
	"github.com/Gopi-techy/SkillSlate/internal/middleware"
	sqliteRepo "github.com/Gopi-techy/SkillSlate/internal/repository/sqlite"
	"github.com/Gopi-techy/SkillSlate/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, auth primitives,
// services, handlers, and routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.AllowedOrigins))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenExpiry)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	oauth := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubRedirectURI,
		s.config.GitHubScopes,
	)
	generator := ai.New(s.config.OpenAIAPIKey)

	authSvc := service.NewAuthService(s.db, tokens, passwords, nil, s.logger)
	portfolioSvc := service.NewPortfolioService(s.db, s.db, s.db, s.db, nil, s.logger)
	githubSvc := service.NewGitHubService(s.db, s.db, s.db, oauth, nil, s.logger)
	generationSvc := service.NewGenerationService(generator, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	portfolioHandler := handler.NewPortfolioHandler(portfolioSvc, s.logger)
	githubHandler := handler.NewGitHubHandler(githubSvc, s.logger)
	generateHandler := handler.NewGenerateHandler(generationSvc, s.logger)
	healthHandler := handler.NewHealthHandler(s.db)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HandleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/github/login", authHandler.HandleGitHubLogin)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", authHandler.HandleProfile)
				r.Get("/verify", authHandler.HandleVerify)
				r.Post("/logout", authHandler.HandleLogout)
			})
		})

		r.Route("/github", func(r chi.Router) {
			r.Get("/authorize", githubHandler.HandleAuthorize)
			r.Get("/callback", githubHandler.HandleCallback)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", githubHandler.HandleMe)
				r.Post("/link", githubHandler.HandleLink)
				r.Delete("/link", githubHandler.HandleUnlink)
				r.Get("/repos", githubHandler.HandleListRepos)
				r.Post("/repos", githubHandler.HandleCreateRepo)
				r.Post("/deploy/pages", githubHandler.HandleEnablePages)
				r.Post("/push", githubHandler.HandlePush)
				r.Post("/deploy", githubHandler.HandleDeploy)
				r.Get("/status", githubHandler.HandleStatus)
			})
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", portfolioHandler.HandleList)
			r.Post("/", portfolioHandler.HandleCreate)
			r.Get("/stats", portfolioHandler.HandleStats)
			r.Get("/{id}", portfolioHandler.HandleGet)
			r.Put("/{id}", portfolioHandler.HandleUpdate)
			r.Delete("/{id}", portfolioHandler.HandleDelete)
			r.Post("/{id}/deploy", portfolioHandler.HandleDeploy)
		})

		r.Route("/ai/portfolio", func(r chi.Router) {
			r.Post("/estimate-time", generateHandler.HandleEstimateTime)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/generate", generateHandler.HandleGenerate)
				r.Post("/generate-stream", generateHandler.HandleGenerateStream)
				r.Post("/refine/{id}", generateHandler.HandleRefine)
				r.Get("/preview/{id}", generateHandler.HandlePreview)
			})
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:        ":" + s.config.Port,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Generation endpoints stream progress for the better part of a
		// minute, so the write timeout is generous.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("port", s.config.Port),
			slog.String("env", s.config.AppEnv),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
