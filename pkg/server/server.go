// Package server exposes a registry of observable properties over HTTP
// and WebSocket. Values are readable and writable as JSON; WebSocket
// clients receive a push for every property change, routed through a
// serial dispatch loop so a single goroutine fans changes out.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/observe/pkg/dispatch"
	"github.com/vango-dev/observe/pkg/observe"
	"github.com/vango-dev/observe/pkg/registry"
)

// Server serves a property registry over HTTP and WebSocket.
type Server struct {
	reg    *registry.Registry
	config *Config
	logger *slog.Logger

	// loop serializes change fan-out: every watcher connection is routed
	// through it, so observer work never runs on the goroutine calling
	// Property.Set.
	loop *dispatch.Loop

	upgrader   websocket.Upgrader
	httpServer *http.Server

	// changeConns keep the change counters current for the lifetime of
	// the server.
	changeConns []observe.Connection
}

// New creates a server for reg. A nil config uses defaults.
func New(reg *registry.Registry, config *Config) *Server {
	config = mergeConfig(config)
	s := &Server{
		reg:    reg,
		config: config,
		logger: config.Logger,
		loop:   dispatch.NewLoop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	return s
}

// Handler returns the HTTP handler serving the property API:
//
//	GET  /healthz                liveness probe
//	GET  /properties             all property values as a JSON object
//	GET  /properties/{name}      one property value
//	PUT  /properties/{name}      set one property value from a JSON body
//	GET  /ws                     WebSocket push of property changes
//	GET  /metrics                Prometheus metrics
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/properties", s.handleList)
	r.Get("/properties/{name}", s.handleGet)
	r.Put("/properties/{name}", s.handlePut)
	r.Get("/ws", s.handleWS)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// ListenAndServe runs the server until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go s.loop.Run(loopCtx)

	// Count every property change for the server's lifetime.
	s.changeConns = s.reg.WatchAll(func(name string, _ any) {
		s.config.Metrics.RecordChange(name)
	})
	defer func() {
		for _, conn := range s.changeConns {
			conn.Disconnect()
		}
	}()

	// Sample the dispatch queue depth.
	go s.sampleQueueDepth(loopCtx)

	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("property server listening", "addr", s.config.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("property server stopped")
	return nil
}

// sampleQueueDepth periodically reports the loop's backlog.
func (s *Server) sampleQueueDepth(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.config.Metrics.SetQueueDepth(s.loop.Pending())
		}
	}
}
