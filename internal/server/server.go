// Package server wires the application together: it connects the config,
// database, OIDC client, session middleware, and handlers, and owns the
// HTTP server lifecycle.
//
// New is the composition root — every dependency is constructed and
// injected here, once, and passed by reference to the components that
// need it. There is no package-level mutable state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/splatr/splatr/internal/api"
	"github.com/splatr/splatr/internal/config"
	"github.com/splatr/splatr/internal/handler"
	"github.com/splatr/splatr/internal/middleware"
	"github.com/splatr/splatr/internal/oidc"
	"github.com/splatr/splatr/internal/repository"
	mongodb "github.com/splatr/splatr/internal/repository/mongo"
	"github.com/splatr/splatr/internal/service"
	"github.com/splatr/splatr/internal/session"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *mongodb.DB
}

// New connects to the database, discovers the identity provider, and
// assembles the full dependency graph. Any failure here is a startup
// failure: the caller is expected to exit.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := mongodb.New(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(ctx, db, db); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Route table:
//
//	GET  /               → landing page (HTML)
//	GET  /login          → 302 to the provider's authorization endpoint
//	GET  /oidc-callback  → complete login, set splatr_sid, 302
//	GET  /logout         → clear splatr_sid, 302 to /
//	GET  /console        → protected dashboard (HTML)
//	GET  /api/users      → lookup users by externalId (JSON envelope)
//	POST /api/users      → stub, answers like an unmatched route
//	GET  /static/*       → static assets, misses logged
func (s *Server) setupRoutes(ctx context.Context, users repository.UserRepository, artists repository.ArtistRepository) error {
	// Provider discovery happens once, at startup. A provider without the
	// three required endpoints keeps the process from starting at all.
	provider, err := oidc.Discover(ctx, oidc.Config{
		Audience:     s.config.OIDC.Audience,
		ClientID:     s.config.OIDC.ClientID,
		ClientSecret: s.config.OIDC.ClientSecret,
		Issuer:       s.config.OIDC.Issuer,
		RedirectURI:  s.config.OIDC.RedirectURI,
	})
	if err != nil {
		return fmt.Errorf("discovering identity provider: %w", err)
	}

	sessions, err := session.NewService(s.config.SigningKey)
	if err != nil {
		return err
	}

	finder := api.NewClient(s.config.API.BaseURI)
	authService := service.NewAuthService(provider, finder, users, sessions, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	usersHandler := handler.NewUsersHandler(users, s.logger)
	pageHandler, err := handler.NewPageHandler(s.config.ViewsRoot, artists, s.logger)
	if err != nil {
		return fmt.Errorf("parsing views: %w", err)
	}

	// Global middleware, in order: tracing ids, real client IPs, panic
	// recovery, request logging, then session resolution.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(session.Middleware(sessions, users, s.logger))

	s.router.Handle("/static/*", http.StripPrefix("/static/", s.staticFiles()))

	s.router.Get("/", pageHandler.HandleIndex)
	s.router.Get("/login", authHandler.HandleLogin)
	s.router.Get("/oidc-callback", authHandler.HandleCallback)
	s.router.Get("/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.ResponseMetadata)
		r.Get("/users", usersHandler.HandleList)
		r.Post("/users", usersHandler.HandleCreate)
	})

	s.router.Route("/console", func(r chi.Router) {
		r.Get("/", pageHandler.HandleConsole)
	})

	s.router.NotFound(handler.NotFound)

	return nil
}

// staticFiles serves assets from the static root and logs every miss.
func (s *Server) staticFiles() http.Handler {
	fs := http.FileServer(http.Dir(s.config.StaticRoot))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		full := filepath.Join(s.config.StaticRoot, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			s.logger.Warn("static asset not found", slog.String("path", r.URL.Path))
			handler.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// shutdownTimeout bounds how long a shutdown waits for in-flight requests
// to drain. Variable so tests can shorten it.
var shutdownTimeout = 30 * time.Second

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.db.Close(closeCtx); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("server starting",
		slog.Int("port", s.config.Port),
		slog.String("views", s.config.ViewsRoot),
	)

	return serve(srv, ln, quit, s.logger)
}

// serve runs srv on ln until the listener fails or quit delivers a signal.
// The drain deadline starts when the signal arrives, not when the server
// started, so long-running processes still get the full window.
func serve(srv *http.Server, ln net.Listener, quit <-chan os.Signal, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped gracefully")
	}

	return nil
}
