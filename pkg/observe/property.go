package observe

import "sync"

// Property is an observable value cell. It stores a value of type T and
// owns a Signal[T] that fires once with the new value on every change.
// Optional getter and setter hooks intercept reads and writes; without
// them the property has plain stored-value semantics.
type Property[T any] struct {
	// mu protects value and the hook slots. It is never held while
	// observers or hooks run, except for the updater passed to Update.
	mu    sync.Mutex
	value T

	changed *Signal[T]

	getter func() T
	setter func(T)

	// equal determines whether Set treats a value as a change.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewProperty creates a property holding initial. Construction is the
// only place a default comes from; there is no process-wide per-type
// default value.
func NewProperty[T any](initial T, opts ...PropertyOption[T]) *Property[T] {
	p := &Property[T]{
		value:   initial,
		changed: NewSignal[T](),
	}
	options := applyPropertyOptions(opts)
	p.equal = options.equal
	p.getter = options.getter
	p.setter = options.setter
	return p
}

// Get returns the current value. If a getter hook is installed, its
// result is returned and the stored value is not consulted.
func (p *Property[T]) Get() T {
	p.mu.Lock()
	getter := p.getter
	if getter != nil {
		p.mu.Unlock()
		return getter()
	}
	v := p.value
	p.mu.Unlock()
	return v
}

// Set writes a new value. If a setter hook is installed, Set delegates
// to it entirely: the stored value is untouched and no change signal is
// emitted unless the hook arranges one. Otherwise the value is stored
// and Changed fires with v, but only if v differs from the stored value
// under the property's equality.
func (p *Property[T]) Set(v T) {
	p.mu.Lock()
	setter := p.setter
	if setter != nil {
		p.mu.Unlock()
		setter(v)
		return
	}
	changed := !p.equals(p.value, v)
	if changed {
		p.value = v
	}
	p.mu.Unlock()
	if changed {
		p.changed.Emit(v)
	}
}

// Update mutates the stored value in place. fn receives a pointer to the
// stored value and reports whether a logical change occurred; if it
// returns true, Changed fires with the resulting value without
// re-checking equality. The updater runs with the property's lock held
// and must not call back into the property.
func (p *Property[T]) Update(fn func(*T) bool) {
	p.mu.Lock()
	updated := fn(&p.value)
	v := p.value
	p.mu.Unlock()
	if updated {
		p.changed.Emit(v)
	}
}

// Changed returns the signal that fires with the new value on every
// change. Callers may connect to it; emitting it directly is the
// property's job.
func (p *Property[T]) Changed() *Signal[T] {
	return p.changed
}

// InstallGetter routes all subsequent Get calls through getter. Passing
// nil restores stored-value reads.
func (p *Property[T]) InstallGetter(getter func() T) {
	p.mu.Lock()
	p.getter = getter
	p.mu.Unlock()
}

// InstallSetter routes all subsequent Set calls through setter. Passing
// nil restores stored-value writes with change detection.
func (p *Property[T]) InstallSetter(setter func(T)) {
	p.mu.Lock()
	p.setter = setter
	p.mu.Unlock()
}

// Pipe wires every future change of p into dst's setter, establishing a
// one-way propagation edge. The current value of p is not copied at
// connection time; only changes after Pipe returns propagate. Multiple
// destinations are independent and are updated in connection order.
// Disconnect the returned Connection to sever the edge.
func (p *Property[T]) Pipe(dst *Property[T]) Connection {
	return p.changed.Connect(dst.Set)
}

// Close closes the owned change signal, disconnecting all observers.
// Outstanding Connection handles remain safely disconnectable.
func (p *Property[T]) Close() {
	p.changed.Close()
}

// equals applies the configured equality function, falling back to
// defaultEquals.
func (p *Property[T]) equals(a, b T) bool {
	if p.equal != nil {
		return p.equal(a, b)
	}
	return defaultEquals(a, b)
}

// Equal reports whether two properties currently hold equal values,
// compared by Get under a's equality function.
func Equal[T any](a, b *Property[T]) bool {
	return a.equals(a.Get(), b.Get())
}

// EqualValue reports whether p currently holds v, compared by Get under
// p's equality function.
func EqualValue[T any](p *Property[T], v T) bool {
	return p.equals(p.Get(), v)
}
