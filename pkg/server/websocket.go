package server

import (
	"net/http"

	"github.com/vango-dev/observe/pkg/observe"
)

// wsUpdate is one property change pushed to a WebSocket client.
type wsUpdate struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// handleWS upgrades the connection and streams property changes. The
// client first receives the current value of every property, then one
// message per change. Slow clients skip intermediate updates rather than
// stalling the dispatch loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer ws.Close()

	s.config.Metrics.AddWSClients(1)
	defer s.config.Metrics.AddWSClients(-1)

	out := make(chan wsUpdate, s.config.SendQueueSize)

	// Watch every property, routed through the dispatch loop so change
	// fan-out happens off the setter's goroutine. Scope-bound handles
	// guarantee teardown on every exit path.
	conns := s.reg.WatchAll(func(name string, value any) {
		select {
		case out <- wsUpdate{Name: name, Value: value}:
		default:
			// Client buffer full: drop this update.
		}
	})
	for _, conn := range conns {
		conn.DispatchVia(s.loop.Dispatch)
		sc := observe.Scoped(conn)
		defer sc.Close()
	}
	s.config.Metrics.AddWatchers(len(conns))
	defer s.config.Metrics.AddWatchers(-len(conns))

	// Initial state push.
	snap, err := s.reg.Snapshot()
	if err != nil {
		s.logger.Error("snapshot failed", "err", err)
		return
	}
	for _, name := range s.reg.Names() {
		if err := ws.WriteJSON(wsUpdate{Name: name, Value: snap[name]}); err != nil {
			return
		}
	}

	// Read pump: the client sends nothing we care about, but reading is
	// how we learn the connection is gone.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case update := <-out:
			if err := ws.WriteJSON(update); err != nil {
				return
			}
		}
	}
}
