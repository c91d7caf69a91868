package observe

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSignalEmissionWorks(t *testing.T) {
	s := NewSignal[int]()

	triggered := false
	got := 0
	s.Connect(func(v int) {
		triggered = true
		got = v
	})

	s.Emit(42)

	if !triggered {
		t.Fatal("observer was not invoked")
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestSignalConnectionOrder(t *testing.T) {
	s := NewSignal[string]()

	var order []string
	s.Connect(func(string) { order = append(order, "first") })
	s.Connect(func(string) { order = append(order, "second") })
	s.Connect(func(string) { order = append(order, "third") })

	s.Emit("x")

	if len(order) != 3 {
		t.Fatalf("expected 3 invocations, got %d", len(order))
	}
	if order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("observers invoked out of connection order: %v", order)
	}
}

func TestSignalEachObserverInvokedOncePerEmit(t *testing.T) {
	s := NewSignal[int]()

	counts := make([]int, 3)
	for i := range counts {
		i := i
		s.Connect(func(int) { counts[i]++ })
	}

	s.Emit(1)
	s.Emit(2)

	for i, c := range counts {
		if c != 2 {
			t.Errorf("observer %d invoked %d times, expected 2", i, c)
		}
	}
}

func TestSignalDisconnectStopsInvocation(t *testing.T) {
	s := NewSignal[int]()

	invoked := 0
	conn := s.Connect(func(int) { invoked++ })

	conn.Disconnect()
	s.Emit(42)
	s.Emit(43)

	if invoked != 0 {
		t.Errorf("disconnected observer invoked %d times", invoked)
	}
}

func TestSignalDisconnectIsIdempotent(t *testing.T) {
	s := NewSignal[int]()
	conn := s.Connect(func(int) {})

	conn.Disconnect()
	conn.Disconnect()
	conn.Disconnect()

	if conn.Connected() {
		t.Error("connection still reports connected after disconnect")
	}
}

func TestSignalConnectionCopiesShareRegistration(t *testing.T) {
	s := NewSignal[int]()

	invoked := 0
	conn := s.Connect(func(int) { invoked++ })
	copied := conn

	copied.Disconnect()
	s.Emit(1)

	if invoked != 0 {
		t.Error("disconnecting a copy did not disconnect the original")
	}
	if conn.Connected() {
		t.Error("original handle still reports connected")
	}
}

func TestScopedConnectionDisconnectsOnClose(t *testing.T) {
	s := NewSignal[int]()

	invoked := 0
	func() {
		sc := Scoped(s.Connect(func(int) { invoked++ }))
		defer sc.Close()
		s.Emit(1)
	}()
	s.Emit(2)

	if invoked != 1 {
		t.Errorf("expected 1 invocation before scope exit, got %d", invoked)
	}
}

func TestScopedConnectionCloseIsExactlyOnce(t *testing.T) {
	s := NewSignal[int]()
	sc := Scoped(s.Connect(func(int) {}))

	if err := sc.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sc.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
	if sc.Connection().Connected() {
		t.Error("connection still connected after scoped close")
	}
}

func TestSignalCloseOrphansConnections(t *testing.T) {
	s := NewSignal[int]()
	conn := s.Connect(func(int) {})

	s.Close()

	// Both operations must be total no-ops on an orphaned handle.
	conn.Disconnect()
	conn.DispatchVia(Direct)

	if conn.Connected() {
		t.Error("connection survived signal close")
	}
}

func TestSignalCloseStopsAllObservers(t *testing.T) {
	s := NewSignal[int]()

	invoked := 0
	s.Connect(func(int) { invoked++ })
	s.Connect(func(int) { invoked++ })

	s.Close()
	s.Emit(1)

	if invoked != 0 {
		t.Errorf("observers invoked after close: %d", invoked)
	}
}

func TestZeroConnectionIsSafe(t *testing.T) {
	var conn Connection

	conn.Disconnect()
	conn.DispatchVia(Direct)

	if conn.Connected() {
		t.Error("zero connection reports connected")
	}
}

func TestSignalReentrantConnectDuringEmit(t *testing.T) {
	s := NewSignal[int]()

	lateInvoked := 0
	s.Connect(func(int) {
		s.Connect(func(int) { lateInvoked++ })
	})

	s.Emit(1)
	if lateInvoked != 0 {
		t.Errorf("observer connected during emission was invoked in the same pass")
	}

	s.Emit(2)
	if lateInvoked != 1 {
		t.Errorf("expected 1 invocation in the following pass, got %d", lateInvoked)
	}
}

func TestSignalReentrantDisconnectDuringEmit(t *testing.T) {
	s := NewSignal[int]()

	var thirdConn Connection
	secondInvoked := 0
	thirdInvoked := 0

	s.Connect(func(int) { thirdConn.Disconnect() })
	s.Connect(func(int) { secondInvoked++ })
	thirdConn = s.Connect(func(int) { thirdInvoked++ })

	s.Emit(1)

	if secondInvoked != 1 {
		t.Errorf("second observer invoked %d times, expected 1", secondInvoked)
	}
	if thirdInvoked != 0 {
		t.Error("observer disconnected mid-emission was still invoked")
	}
}

func TestSignalObserverDisconnectsItself(t *testing.T) {
	s := NewSignal[int]()

	invoked := 0
	var conn Connection
	conn = s.Connect(func(int) {
		invoked++
		conn.Disconnect()
	})

	s.Emit(1)
	s.Emit(2)

	if invoked != 1 {
		t.Errorf("self-disconnecting observer invoked %d times, expected 1", invoked)
	}
}

func TestSignalDispatcherRouting(t *testing.T) {
	s := NewSignal[int]()

	var got []int
	conn := s.Connect(func(v int) { got = append(got, v) })

	var queue []func()
	conn.DispatchVia(func(fn func()) { queue = append(queue, fn) })

	s.Emit(1)
	s.Emit(2)

	if len(got) != 0 {
		t.Fatalf("dispatcher-routed observer ran inline: %v", got)
	}
	if len(queue) != 2 {
		t.Fatalf("expected 2 posted closures, got %d", len(queue))
	}

	for _, fn := range queue {
		fn()
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2] after draining dispatcher, got %v", got)
	}
}

func TestSignalDispatchViaNilRestoresInline(t *testing.T) {
	s := NewSignal[int]()

	inline := 0
	conn := s.Connect(func(int) { inline++ })
	conn.DispatchVia(func(fn func()) {})

	s.Emit(1)
	if inline != 0 {
		t.Fatal("observer ran inline while dispatcher installed")
	}

	conn.DispatchVia(nil)
	s.Emit(2)
	if inline != 1 {
		t.Errorf("expected inline invocation after resetting dispatcher, got %d", inline)
	}
}

func TestSignalConnectVia(t *testing.T) {
	s := NewSignal[int]()

	var queue []func()
	invoked := 0
	s.ConnectVia(func(int) { invoked++ }, func(fn func()) { queue = append(queue, fn) })

	s.Emit(1)

	if invoked != 0 {
		t.Fatal("ConnectVia observer ran inline")
	}
	if len(queue) != 1 {
		t.Fatalf("expected 1 posted closure, got %d", len(queue))
	}
	queue[0]()
	if invoked != 1 {
		t.Errorf("expected 1 invocation after drain, got %d", invoked)
	}
}

func TestDispatchViaOnDisconnectedConnectionSucceeds(t *testing.T) {
	s := NewSignal[int]()

	invoked := 0
	conn := s.Connect(func(int) { invoked++ })
	conn.Disconnect()

	// Routing configuration is independent of liveness.
	conn.DispatchVia(Direct)
	s.Emit(1)

	if invoked != 0 {
		t.Error("disconnected connection was invoked after DispatchVia")
	}
}

func TestDirectDispatcher(t *testing.T) {
	// Safe with nothing to run.
	Direct(nil)

	ran := false
	Direct(func() { ran = true })
	if !ran {
		t.Error("Direct did not invoke the closure")
	}
}

func TestSignalLen(t *testing.T) {
	s := NewSignal[int]()

	a := s.Connect(func(int) {})
	s.Connect(func(int) {})
	if s.Len() != 2 {
		t.Fatalf("expected 2 live connections, got %d", s.Len())
	}

	a.Disconnect()
	if s.Len() != 1 {
		t.Errorf("expected 1 live connection after disconnect, got %d", s.Len())
	}
}

func TestSignalConcurrentEmitAndConnect(t *testing.T) {
	s := NewSignal[int]()

	var invocations atomic.Int64
	var wg sync.WaitGroup

	// Steady observer that must survive the churn.
	s.Connect(func(int) { invocations.Add(1) })

	const emitters = 8
	const emitsPerGoroutine = 200

	wg.Add(emitters)
	for g := 0; g < emitters; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < emitsPerGoroutine; i++ {
				s.Emit(i)
			}
		}()
	}

	// Churn connections while emissions are in flight.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			conn := s.Connect(func(int) {})
			conn.Disconnect()
		}
	}()

	wg.Wait()

	if got := invocations.Load(); got != emitters*emitsPerGoroutine {
		t.Errorf("steady observer invoked %d times, expected %d", got, emitters*emitsPerGoroutine)
	}
}

func TestSignalConcurrentDisconnect(t *testing.T) {
	s := NewSignal[int]()

	conns := make([]Connection, 100)
	for i := range conns {
		conns[i] = s.Connect(func(int) {})
	}

	var wg sync.WaitGroup
	wg.Add(len(conns) + 1)
	for _, conn := range conns {
		conn := conn
		go func() {
			defer wg.Done()
			conn.Disconnect()
		}()
	}
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.Emit(i)
		}
	}()
	wg.Wait()

	if s.Len() != 0 {
		t.Errorf("expected 0 live connections, got %d", s.Len())
	}
}
