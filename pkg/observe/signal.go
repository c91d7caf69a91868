package observe

import "sync"

// slot pairs a typed observer with the type-erased registration record
// shared with its Connection handles.
type slot[T any] struct {
	state    *slotState
	observer func(T)
}

// Signal is a multi-observer notification channel for values of type T.
// Observers are invoked in connection order. The zero value is not usable;
// create signals with NewSignal.
type Signal[T any] struct {
	// mu protects the slot list. It is never held while observer code runs.
	mu    sync.Mutex
	slots []slot[T]
}

// NewSignal creates a new signal with no observers.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Connect registers observer to be invoked on every subsequent emission
// and returns a Connection bound to that registration. Connecting the same
// function twice yields two independent registrations.
func (s *Signal[T]) Connect(observer func(T)) Connection {
	st := &slotState{}
	s.mu.Lock()
	s.slots = append(s.slots, slot[T]{state: st, observer: observer})
	s.mu.Unlock()
	return Connection{state: st}
}

// ConnectVia registers observer routed through dispatcher d from the
// start. Equivalent to Connect followed by DispatchVia, without a window
// in which an emission could run the observer inline.
func (s *Signal[T]) ConnectVia(observer func(T), d Dispatcher) Connection {
	st := &slotState{dispatcher: d}
	s.mu.Lock()
	s.slots = append(s.slots, slot[T]{state: st, observer: observer})
	s.mu.Unlock()
	return Connection{state: st}
}

// Emit invokes every currently connected observer exactly once with v, in
// connection order. Observers without a dispatcher run inline on the
// calling goroutine before Emit returns; observers with a dispatcher have
// a closure posted to it, fire-and-forget. Observers connected during the
// emission are not invoked in this pass. A panicking observer propagates
// to the caller and aborts the remaining observers of this pass.
func (s *Signal[T]) Emit(v T) {
	// Snapshot under lock, compacting slots disconnected since the last
	// pass, then invoke outside the lock so observers can freely connect
	// and disconnect on this same signal.
	s.mu.Lock()
	live := s.slots[:0]
	for _, sl := range s.slots {
		if !sl.state.isDisconnected() {
			live = append(live, sl)
		}
	}
	s.slots = live
	snapshot := make([]slot[T], len(live))
	copy(snapshot, live)
	s.mu.Unlock()

	for _, sl := range snapshot {
		d, ok := sl.state.routing()
		if !ok {
			continue
		}
		if d == nil {
			sl.observer(v)
			continue
		}
		observer := sl.observer
		d(func() { observer(v) })
	}
}

// Close disconnects every observer and empties the signal. Outstanding
// Connection handles remain valid: Disconnect and DispatchVia on them are
// no-ops after Close. The signal itself may be reused; new connections
// behave normally.
func (s *Signal[T]) Close() {
	s.mu.Lock()
	slots := s.slots
	s.slots = nil
	s.mu.Unlock()
	for _, sl := range slots {
		sl.state.disconnect()
	}
}

// Len reports the number of live connections. Intended for tests and
// introspection-free bookkeeping; the value may be stale by the time it is
// read under concurrency.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sl := range s.slots {
		if !sl.state.isDisconnected() {
			n++
		}
	}
	return n
}
