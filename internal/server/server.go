// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where every
// dependency is assembled in one place:
//
//	sqlite.DB → AuthService/BookService → handlers → routes
//
// Handlers never touch the database; services never touch HTTP.
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

	"github.com/sakif/bookshelf/internal/auth"
	"github.com/sakif/bookshelf/internal/handler"
	"github.com/sakif/bookshelf/internal/middleware"
	sqliteRepo "github.com/sakif/bookshelf/internal/repository/sqlite"
	"github.com/sakif/bookshelf/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database (which ensures the schema),
// builds the service and handler graph, and wires the routes.
//
// The import alias sqliteRepo avoids confusion with the sqlite driver
// package itself.
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

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /register        → create account (JSON message)
//	GET    /login           → login form (HTML)
//	POST   /login           → check credentials, set identity cookie
//	GET    /logout          → clear identity cookie
//	POST   /books/          → add book (JSON, auth)
//	GET    /books/{author}  → books by author (JSON)
//	PUT    /books/          → update book (JSON, auth)
//	DELETE /books/          → delete book by ?title=&author= (JSON, auth)
//	GET    /html/{author}   → author listing page (HTML)
//	GET    /                → home page with author list (HTML, auth)
//	GET    /static/*        → static assets
//
// MIDDLEWARE ORDER MATTERS — RequestID and RealIP first so the logger and
// recoverer see them, Recoverer before our logger so a panic still produces
// a logged 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The JSON API is also consumed cross-origin (e.g. a separate frontend
	// during development). AllowCredentials lets the identity cookie ride
	// along, so origins can't be the "*" wildcard.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// === Static files ===
	// GET /static/css/style.css → serves {StaticDir}/css/style.css
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Dependency graph ===
	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(s.db, passwords, s.logger)
	bookService := service.NewBookService(s.db, s.logger)

	pageHandler, err := handler.NewPageHandler(s.config.TemplateDir, bookService, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	authHandler := handler.NewAuthHandler(authService, pageHandler, s.logger)
	bookHandler := handler.NewBookHandler(bookService, s.logger)

	requireUser := auth.RequireUser(s.db)

	// === Public routes ===
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Get("/login", pageHandler.HandleLoginForm)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)
	s.router.Get("/books/{author}", bookHandler.HandleByAuthor)
	s.router.Get("/html/{author}", pageHandler.HandleAuthorPage)

	// === Protected routes ===
	// Mutating the catalog and viewing the home page require a resolvable
	// identity cookie; RequireUser answers 401 otherwise.
	s.router.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", pageHandler.HandleHome)
		r.Post("/books/", bookHandler.HandleAdd)
		r.Put("/books/", bookHandler.HandleUpdate)
		r.Delete("/books/", bookHandler.HandleDelete)
	})

	return nil
}

// Start runs the HTTP server and handles graceful shutdown:
//  1. Stop accepting new connections on SIGINT/SIGTERM
//  2. Wait up to 30s for in-flight requests
//  3. Close the database connection
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
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
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
