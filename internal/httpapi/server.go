// Package httpapi implements Component F (the HTTP Control Plane) and
// the HTTP half of Component G (the Pause Scheduler subprotocol),
// grounded on the teacher's pkg/controlplane/api server/router shape with
// JWT authentication removed entirely (spec Non-goal).
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
	"github.com/cideldill/cideldill/internal/logger"
)

// Server is the HTTP control plane: a stateless layer over Manager (E)
// and Store (B).
type Server struct {
	server       *http.Server
	manager      *breakpoint.Manager
	store        *cidstore.Store
	config       Config
	shutdownOnce sync.Once
}

// NewServer wires config, manager, and store into a ready-to-Start
// Server.
func NewServer(config Config, manager *breakpoint.Manager, store *cidstore.Store) *Server {
	config.ApplyDefaults()

	router := NewRouter(manager, store)

	return &Server{
		manager: manager,
		store:   store,
		config:  config,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start listens and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("control plane listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("control plane shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("httpapi: server failed: %w", err)
	}
}

// Stop gracefully shuts down the server. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("httpapi: shutdown: %w", err)
			logger.Error("control plane shutdown error", "error", err)
		} else {
			logger.Info("control plane stopped gracefully")
		}
	})
	return shutdownErr
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string { return s.server.Addr }
