package observe

import "sync"

// Dispatcher defers execution of a closure onto an arbitrary execution
// context, typically an event loop running on another goroutine. The
// dispatcher must eventually invoke the closure it is handed; the Signal
// never waits for that to happen.
type Dispatcher func(func())

// Direct invokes fn immediately on the calling goroutine. It is the
// routing used for connections without a dispatcher and is safe to call
// with a nil closure.
func Direct(fn func()) {
	if fn != nil {
		fn()
	}
}

// slotState is the registration record shared between a Signal and every
// copy of the Connection handed out for it. The Signal holds it through
// its slot list; Connections hold it directly. Because neither side owns
// the other, a Connection stays fully operable after the Signal is closed
// or garbage collected.
type slotState struct {
	mu           sync.Mutex
	disconnected bool
	dispatcher   Dispatcher
}

// disconnect marks the registration dead. Idempotent.
func (st *slotState) disconnect() {
	st.mu.Lock()
	st.disconnected = true
	st.mu.Unlock()
}

// routing returns the installed dispatcher and whether the registration
// is still live. Checked immediately before each invocation so that a
// disconnect during an in-flight emission suppresses observers that have
// not run yet.
func (st *slotState) routing() (Dispatcher, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.disconnected {
		return nil, false
	}
	return st.dispatcher, true
}

func (st *slotState) isDisconnected() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.disconnected
}

// Connection is a handle for one observer's subscription to a Signal.
// The zero value is a valid, permanently disconnected handle. Connection
// is copyable; all copies refer to the same registration, and
// disconnecting any copy disconnects them all.
type Connection struct {
	state *slotState
}

// Disconnect removes the observer from all future emissions. It is
// idempotent, safe to call concurrently with an in-flight Emit, and safe
// to call after the originating Signal has been closed or collected. An
// invocation already handed to a dispatcher cannot be retracted.
func (c Connection) Disconnect() {
	if c.state != nil {
		c.state.disconnect()
	}
}

// DispatchVia installs or replaces the dispatcher for this connection.
// Subsequent emissions route the observer through d; emissions already in
// flight are unaffected. Passing nil restores direct inline invocation.
// Routing configuration is independent of liveness: calling DispatchVia
// on a disconnected connection succeeds and has no further effect.
func (c Connection) DispatchVia(d Dispatcher) {
	if c.state == nil {
		return
	}
	c.state.mu.Lock()
	c.state.dispatcher = d
	c.state.mu.Unlock()
}

// Connected reports whether the connection is still registered.
func (c Connection) Connected() bool {
	return c.state != nil && !c.state.isDisconnected()
}

// ScopedConnection ties a Connection's lifetime to a scope. Close
// disconnects exactly once no matter how often it is called, so it can be
// deferred alongside early returns and panics:
//
//	sc := observe.Scoped(s.Connect(onChange))
//	defer sc.Close()
//
// ScopedConnection implements io.Closer; Close never returns an error.
type ScopedConnection struct {
	conn Connection
	once sync.Once
}

// Scoped wraps conn in a ScopedConnection.
func Scoped(conn Connection) *ScopedConnection {
	return &ScopedConnection{conn: conn}
}

// Close disconnects the wrapped connection. Only the first call has any
// effect.
func (s *ScopedConnection) Close() error {
	s.once.Do(s.conn.Disconnect)
	return nil
}

// Connection returns the wrapped connection handle.
func (s *ScopedConnection) Connection() Connection {
	return s.conn
}
