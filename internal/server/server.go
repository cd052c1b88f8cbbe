// Package server implements the HTTP surface of the file management
// service: cookie-token authentication, profile and address management,
// file upload/download backed by object storage, and dashboard
// aggregation.
package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"filedrive/internal/config"
)

type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
	db         *sql.DB
	users      *UserStore
	files      *FileStore
	storage    Storage
	tokens     *TokenService
	version    string
}

// New wires stores, token service and routes. All configuration is taken
// from cfg at construction time; handlers never consult the environment.
func New(cfg config.Config, log zerolog.Logger, db *sql.DB, storage Storage) *Server {
	s := &Server{
		log:     log,
		db:      db,
		users:   NewUserStore(db),
		files:   NewFileStore(db),
		storage: storage,
		tokens:  NewTokenService(cfg.TokenSecret, cfg.TokenTTL),
		version: cfg.Version,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Post("/profile/addresses", s.handleAddAddress)
			r.Delete("/profile/addresses/{id}", s.handleRemoveAddress)
			r.Get("/files", s.handleListFiles)
			r.Post("/files/upload", s.handleUpload)
			r.Get("/files/{id}/download", s.handleDownload)
			r.Get("/dashboard/stats", s.handleDashboardStats)
		})
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
