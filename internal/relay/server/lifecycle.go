package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HTTPConfig configures the listener that fronts the relay.
type HTTPConfig struct {
	Addr              string
	Handler           http.Handler
	Logger            *zap.Logger
	ReadHeaderTimeout time.Duration
}

// DefaultHTTPConfig returns listener settings for addr.
func DefaultHTTPConfig(addr string, handler http.Handler, logger *zap.Logger) HTTPConfig {
	return HTTPConfig{
		Addr:              addr,
		Handler:           handler,
		Logger:            logger,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ManagedServer owns an http.Server and its listener.
type ManagedServer struct {
	server *http.Server
	logger *zap.Logger
	name   string
	ln     net.Listener
	errCh  chan error
}

// NewManagedServer prepares, but does not start, a server.
func NewManagedServer(name string, cfg HTTPConfig) *ManagedServer {
	errLog, _ := zap.NewStdLogAt(cfg.Logger, zapcore.ErrorLevel)

	// No read or write timeouts: relay sockets are long-lived and manage
	// their own deadlines after the upgrade.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cfg.Handler,
		ErrorLog:          errLog,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return &ManagedServer{
		server: srv,
		logger: cfg.Logger,
		name:   name,
		errCh:  make(chan error, 1),
	}
}

// Start binds the listener and serves in the background. Bind errors are
// returned directly; later serve errors arrive on Err.
func (m *ManagedServer) Start() error {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return fmt.Errorf("%s failed to start: %w", m.name, err)
	}
	m.ln = ln
	m.logger.Info("listening", zap.String("server", m.name), zap.String("addr", ln.Addr().String()))

	go func() {
		err := m.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.errCh <- err
		}
		close(m.errCh)
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (m *ManagedServer) Addr() net.Addr {
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

// Err yields a serve error, if any, and is closed when serving stops.
func (m *ManagedServer) Err() <-chan error { return m.errCh }

// Shutdown stops accepting connections and waits for in-flight requests.
func (m *ManagedServer) Shutdown(ctx context.Context) {
	if m.ln == nil {
		return
	}
	if err := m.server.Shutdown(ctx); err != nil {
		m.logger.Warn("shutdown error", zap.String("server", m.name), zap.Error(err))
	}
}
