// Package observe provides thread-safe signals and observable properties.
//
// A Signal is a multi-observer notification channel for a single payload
// type. Observers subscribe with Connect and receive every emission until
// their Connection is disconnected:
//
//	s := observe.NewSignal[int]()
//	conn := s.Connect(func(v int) { fmt.Println("got", v) })
//	s.Emit(42)
//	conn.Disconnect()
//
// By default observers run inline on the emitting goroutine, in connection
// order. A connection can instead be routed through a Dispatcher, an
// arbitrary execution context supplied by the caller (typically an event
// loop). The Signal hands the dispatcher a zero-argument closure and never
// waits for it to run:
//
//	conn.DispatchVia(loop.Dispatch)
//
// A Property wraps a value of type T together with an owned Signal[T] that
// fires on every change:
//
//	count := observe.NewProperty(0)
//	count.Changed().Connect(func(v int) { fmt.Println("now", v) })
//	count.Set(5)
//
// Properties support getter/setter interception and one-way value chaining
// via Pipe, where every future change to one property is forwarded to
// another's setter.
//
// # Thread Safety
//
// All operations are safe under true parallelism. Emission iterates a
// snapshot of the connection list, so observers may connect or disconnect
// (including themselves) while an emission is in flight. Neither Signal nor
// Property ever spawns a goroutine; execution happens on the emitting
// goroutine or wherever a caller-supplied dispatcher runs its closures.
package observe
