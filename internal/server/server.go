// Package server wires the application together: database, services,
// handlers, routes, middleware, and the HTTP server lifecycle. This is the
// composition root: every dependency is constructed here.
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
	"github.com/go-chi/cors"

	"github.com/amadou/nexus-connect/internal/auth"
	"github.com/amadou/nexus-connect/internal/config"
	"github.com/amadou/nexus-connect/internal/handler"
	"github.com/amadou/nexus-connect/internal/middleware"
	sqliteRepo "github.com/amadou/nexus-connect/internal/repository/sqlite"
	"github.com/amadou/nexus-connect/internal/service"
)

// Server owns the router, the database handle, and the configuration. The
// database is opened in New and closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the dependency graph:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// The Firebase verifier is optional: without credentials the server still
// starts and the firebase login route answers 401.
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
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	var firebase auth.FirebaseVerifier
	if s.config.FirebaseCredentialsJSON != "" || s.config.FirebaseCredentialsFile != "" {
		provider, err := auth.NewFirebaseProvider(context.Background(),
			s.config.FirebaseCredentialsJSON, s.config.FirebaseCredentialsFile)
		if err != nil {
			return fmt.Errorf("initializing firebase verifier: %w", err)
		}
		firebase = provider
	} else {
		s.logger.Warn("firebase credentials not configured, federated login disabled")
	}

	users := s.db.Users()
	profiles := s.db.Entrepreneurs()
	messages := s.db.Contacts()

	authService := service.NewAuthService(users, tokens, passwords, firebase, s.logger)
	entrepreneurService := service.NewEntrepreneurService(profiles, users, s.logger)
	contactService := service.NewContactService(messages, s.logger)
	statsService := service.NewStatsService(users, profiles)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	entrepreneurHandler := handler.NewEntrepreneurHandler(entrepreneurService, s.logger)
	contactHandler := handler.NewContactHandler(contactService, s.logger)
	statsHandler := handler.NewStatsHandler(statsService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := auth.RequireAuth(tokens, users)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", handleRoot)

		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/firebase", authHandler.HandleFirebase)

		r.Get("/entrepreneurs", entrepreneurHandler.HandleList)
		r.Get("/entrepreneurs/{id}", entrepreneurHandler.HandleGet)
		r.Get("/entrepreneurs/{id}/contact", entrepreneurHandler.HandleGetContact)

		r.Post("/contact", contactHandler.HandleSubmit)
		r.Get("/stats", statsHandler.HandleStats)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/entrepreneurs", entrepreneurHandler.HandleCreate)
			r.Get("/entrepreneurs/user/me", entrepreneurHandler.HandleGetMine)
			r.Put("/entrepreneurs/{id}", entrepreneurHandler.HandleUpdate)
		})
	})

	// Kept for clients that still call the unprefixed path; identical to
	// POST /api/auth/firebase.
	s.router.Post("/auth/firebase", authHandler.HandleFirebase)

	return nil
}

// handleRoot is the service info banner.
func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"message":"Nexus Connect API","version":"1.0.0","status":"operational"}`)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
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
