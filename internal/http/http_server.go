package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"gitlab.com/casesync.net/internal/core/ports/primary"
)

type Server struct {
	Port        int
	ServiceName string
	handler     http.Handler
	logger      primary.Logger
	srv         *http.Server
	listener    net.Listener
}

func NewServer(port int, serviceName string, handler http.Handler, logger primary.Logger) *Server {
	return &Server{
		Port:        port,
		ServiceName: serviceName,
		handler:     handler,
		logger:      logger,
	}
}

// Start binds the port and serves in the background; errors after binding are
// reported on the returned channel.
func (s *Server) Start(ctx context.Context) (<-chan error, error) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.listener = listener

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.Info("Server listening", "service", s.ServiceName, "addr", listener.Addr().String())
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			errCh <- err
		}
	}()

	return errCh, nil
}

// Addr is the bound address, useful when Port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("Shutting down http server...", "service", s.ServiceName)
	return s.srv.Shutdown(ctx)
}
