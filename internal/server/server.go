// Task 1.6: HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/matiasleandrokruk/draftforge/internal/api"
	"github.com/matiasleandrokruk/draftforge/internal/infra/config"
	"github.com/matiasleandrokruk/draftforge/internal/infra/scheduler"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration. WriteTimeout is
// generous because image calls can run close to two minutes end to end.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server, database, and scheduler.
type Server struct {
	config Config
	db     *sql.DB
	sched  *scheduler.Store
	http   *http.Server

	cancelSched context.CancelFunc
}

// NewServer wires the router over the given database and app configuration.
func NewServer(db *sql.DB, appCfg config.Config, cfg Config) (*Server, error) {
	sched := scheduler.NewStore(db)

	router, err := api.NewRouter(db, appCfg, sched)
	if err != nil {
		return nil, fmt.Errorf("server setup: %w", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		config: cfg,
		db:     db,
		sched:  sched,
		http:   httpServer,
	}, nil
}

// Start launches the scheduler and the HTTP server, blocking until the
// listener stops.
func (s *Server) Start(ctx context.Context) error {
	schedCtx, cancel := context.WithCancel(ctx)
	s.cancelSched = cancel
	s.sched.Start(schedCtx)

	fmt.Printf("Starting HTTP server on %s\n", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server, drains the scheduler, and
// closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("Shutting down server...")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if s.cancelSched != nil {
		s.cancelSched()
		s.sched.Wait()
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("database close error: %w", err)
	}

	fmt.Println("Server shutdown complete")
	return nil
}
