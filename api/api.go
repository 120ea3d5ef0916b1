// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the governance engine over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const DefaultListenAddress = ":8080"

type Config struct {
	ListenAddress string
	// JWTSecret verifies the HS256 tokens that identify callers
	JWTSecret []byte
	// ShutdownTimeout bounds the graceful shutdown on context cancellation
	ShutdownTimeout time.Duration
	// MaxRequestsPerIP bounds in-flight requests per client IP (0 = unlimited)
	MaxRequestsPerIP int
	// CORSAllowOrigins enables CORS for the listed origins
	CORSAllowOrigins []string
	// Events serves the recent governance events when set
	Events EventLog
}

// Server is the governance REST API server
type Server struct {
	config     Config
	logger     *slog.Logger
	node       GovernanceNode
	router     *gin.Engine
	httpServer *http.Server
	stopCh     chan struct{}
	mu         sync.Mutex
}

func New(
	cfg Config,
	node GovernanceNode,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	s := &Server{
		config: cfg,
		logger: logger,
		node:   node,
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server in a background goroutine
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.router,
		ReadHeaderTimeout: 60 * time.Second,
	}
	stopCh := make(chan struct{})
	s.httpServer = server
	s.stopCh = stopCh
	s.mu.Unlock()

	ln, err := s.listen(server)
	if err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.stopCh = nil
		s.mu.Unlock()
		return err
	}
	s.logger.Info(
		"API listener started",
		"address", ln.Addr().String(),
	)

	go func() {
		select {
		case <-ctx.Done():
		case <-stopCh:
			return
		}
		s.mu.Lock()
		if s.httpServer != server {
			s.mu.Unlock()
			return
		}
		srv := s.httpServer
		s.httpServer = nil
		s.stopCh = nil
		s.mu.Unlock()
		s.logger.Debug("context cancelled, shutting down API server")
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			s.config.ShutdownTimeout,
		)
		defer cancel()
		//nolint:contextcheck
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}

// listen binds the socket first so port conflicts are reported by Start,
// then serves in a background goroutine
func (s *Server) listen(server *http.Server) (net.Listener, error) {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return ln, nil
}
