// Package server wires the dependency graph and defines every route. It is
// the composition root: main.go only builds a Config and calls Start.
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

	"github.com/nbarreto/gamereel/internal/auth"
	"github.com/nbarreto/gamereel/internal/catalog"
	"github.com/nbarreto/gamereel/internal/gamenews"
	"github.com/nbarreto/gamereel/internal/gif"
	"github.com/nbarreto/gamereel/internal/handler"
	"github.com/nbarreto/gamereel/internal/middleware"
	sqliteRepo "github.com/nbarreto/gamereel/internal/repository/sqlite"
	"github.com/nbarreto/gamereel/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	TwitchClientID     string
	TwitchClientSecret string
	GiphyAPIKey        string
	UploadDir          string
}

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, assembles the service graph, and mounts all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return fmt.Errorf("creating upload dir: %w", err)
	}

	catalogClient := catalog.New(catalog.Config{
		ClientID:     s.config.TwitchClientID,
		ClientSecret: s.config.TwitchClientSecret,
	}, s.logger)
	gifClient := gif.New(gif.Config{APIKey: s.config.GiphyAPIKey})
	newsClient := gamenews.New(gamenews.Config{})

	// One sqlite.DB satisfies every repository interface; each service
	// receives it under the narrow type it needs.
	gameCache := service.NewGameCacheService(s.db, catalogClient, s.logger)
	feedService := service.NewFeedService(s.db, s.db, s.db, s.db, gameCache, s.logger)
	reviewService := service.NewReviewService(s.db, gameCache, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.logger)
	socialService := service.NewSocialService(s.db, s.db, s.db, s.db, s.db, s.db, gameCache, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.config.UploadDir, s.logger)
	reviewHandler := handler.NewReviewHandler(reviewService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	feedHandler := handler.NewFeedHandler(feedService, s.logger)
	gameHandler := handler.NewGameHandler(gameCache, newsClient, s.logger)
	socialHandler := handler.NewSocialHandler(socialService, s.logger)
	gifHandler := handler.NewGIFHandler(gifClient, s.logger)

	// Uploaded profile photos are served straight from disk.
	uploads := http.FileServer(http.Dir(s.config.UploadDir))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", uploads))

	s.router.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Group(func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/search", gameHandler.HandleSearch)
			r.Post("/games/search-suggestions", gameHandler.HandleSearchSuggestions)
			r.Get("/game-news", gameHandler.HandleGameNews)
		})

		// Public reads that honor a token when present.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/game", gameHandler.HandleGetGame)
			r.Get("/feed", feedHandler.HandleFeed)
			r.Get("/games/most-reviewed", feedHandler.HandleMostReviewed)
			r.Get("/user/{username}", socialHandler.HandleProfile)
			r.Get("/reviews/{id}/comments", commentHandler.HandleListByReview)
			r.Get("/saved-games/{username}", socialHandler.HandleListSavedGamesByUsername)
		})

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/change-password", authHandler.HandleChangePassword)
			r.Post("/user", authHandler.HandleCurrentUser)
			r.Post("/profile/upload", authHandler.HandleUploadPhoto)

			r.Post("/reviews", reviewHandler.HandleCreate)
			r.Delete("/reviews/{id}", reviewHandler.HandleDelete)
			r.Post("/reviews/{id}/like", socialHandler.HandleToggleLike)
			r.Post("/reviews/{id}/repost", socialHandler.HandleToggleRepost)

			r.Post("/comments", commentHandler.HandleCreate)
			r.Put("/comments/{id}", commentHandler.HandleUpdate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Post("/follow", socialHandler.HandleToggleFollow)
			r.Get("/saved-games", socialHandler.HandleListSavedGames)
			r.Post("/saved-games", socialHandler.HandleSaveGame)
			r.Delete("/saved-games", socialHandler.HandleUnsaveGame)

			r.Get("/gifs/search", gifHandler.HandleSearch)
			r.Get("/gifs/trending", gifHandler.HandleTrending)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight requests
// for up to 30 seconds and closes the database.
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

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
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
