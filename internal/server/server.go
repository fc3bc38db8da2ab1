// Package server ties the store gateway and the HTTP surface together into a
// running process with an explicit start and shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/config"
	"gitlab.com/dirk.krummacker/contact-form-service/internal/service"
	"gitlab.com/dirk.krummacker/contact-form-service/internal/store"
)

// StoreCloseTimeout bounds how long Shutdown waits for the store connection
// to close once the HTTP server has stopped.
const StoreCloseTimeout = 5 * time.Second

// Server is a running contact form service.
type Server struct {
	httpServer *http.Server
	store      store.Gateway
	listener   net.Listener
	done       chan error
}

// Start connects to the store, binds the listen address and starts serving
// in the background. An unreachable store does not prevent the start.
func Start(ctx context.Context, cfg config.Config) (*Server, error) {
	gateway, err := store.Open(ctx, cfg.StoreURI, store.Options{})
	if err != nil {
		return nil, err
	}
	return StartWithGateway(cfg, gateway)
}

// StartWithGateway serves the API on top of an already opened gateway. The
// server owns the gateway from then on and closes it on shutdown.
func StartWithGateway(cfg config.Config, gateway store.Gateway) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		closeErr := gateway.Close(context.Background())
		return nil, errors.Join(fmt.Errorf("listening on %s: %w", cfg.Addr(), err), closeErr)
	}

	s := &Server{
		httpServer: &http.Server{
			Handler:           service.New(gateway, cfg.RequestLogging).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:    gateway,
		listener: listener,
		done:     make(chan error, 1),
	}
	go func() {
		err := s.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	slog.Info("server running", "addr", listener.Addr().String())
	return s, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Done delivers the error that made the server stop serving on its own, or
// nil after a regular shutdown.
func (s *Server) Done() <-chan error {
	return s.done
}

// Shutdown stops accepting connections, waits for in-flight requests until
// ctx expires and then closes the store connection. The store is closed even
// if draining the requests did not finish in time, within StoreCloseTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down")
	httpErr := s.httpServer.Shutdown(ctx)
	if httpErr != nil {
		httpErr = fmt.Errorf("draining HTTP server: %w", httpErr)
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), StoreCloseTimeout)
	defer cancel()
	storeErr := s.store.Close(closeCtx)
	if storeErr == nil {
		slog.Info("store connection closed")
	}
	return errors.Join(httpErr, storeErr)
}
