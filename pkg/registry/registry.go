// Package registry maps names to observable properties so that generic
// Property values can be addressed uniformly by persistence and transport
// layers.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/observe/pkg/observe"
)

// ErrAlreadyRegistered is returned when a name is registered twice.
var ErrAlreadyRegistered = errors.New("registry: name already registered")

// ErrNotFound is returned when a name has no registered property.
var ErrNotFound = errors.New("registry: property not found")

// AnyProperty is the type-erased view of a Property[T]. It lets callers
// that cannot name T read, write, serialize, and watch the property.
type AnyProperty interface {
	// GetAny returns the current value as an any.
	GetAny() any

	// SetAny sets the value from an any.
	// Returns an error if the dynamic type does not match.
	SetAny(value any) error

	// ValueJSON returns the current value encoded as JSON.
	ValueJSON() ([]byte, error)

	// SetJSON decodes data into the property's value type and sets it.
	// Change detection and emission follow the property's normal rules.
	SetJSON(data []byte) error

	// Watch connects fn to the property's change signal, delivering the
	// new value type-erased. Disconnect the returned Connection to stop.
	Watch(fn func(any)) observe.Connection
}

// handle adapts a typed property to the AnyProperty interface.
type handle[T any] struct {
	prop *observe.Property[T]
}

func (h handle[T]) GetAny() any {
	return h.prop.Get()
}

func (h handle[T]) SetAny(value any) error {
	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("registry: cannot assign %T to property of %T", value, h.prop.Get())
	}
	h.prop.Set(v)
	return nil
}

func (h handle[T]) ValueJSON() ([]byte, error) {
	return json.Marshal(h.prop.Get())
}

func (h handle[T]) SetJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("registry: decode value: %w", err)
	}
	h.prop.Set(v)
	return nil
}

func (h handle[T]) Watch(fn func(any)) observe.Connection {
	return h.prop.Changed().Connect(func(v T) { fn(v) })
}

// Registry is a thread-safe name-to-property table.
type Registry struct {
	mu    sync.RWMutex
	props map[string]AnyProperty
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{props: make(map[string]AnyProperty)}
}

// Register adds p under name. Registering an already-used name fails with
// ErrAlreadyRegistered; properties are never silently replaced.
func Register[T any](r *Registry, name string, p *observe.Property[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.props[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	r.props[name] = handle[T]{prop: p}
	return nil
}

// Lookup returns the property registered under name.
func (r *Registry) Lookup(name string) (AnyProperty, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.props[name]
	return p, ok
}

// Names returns all registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.props))
	for name := range r.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot encodes every registered property's current value as JSON.
func (r *Registry) Snapshot() (map[string]json.RawMessage, error) {
	r.mu.RLock()
	props := make(map[string]AnyProperty, len(r.props))
	for name, p := range r.props {
		props[name] = p
	}
	r.mu.RUnlock()

	snap := make(map[string]json.RawMessage, len(props))
	for name, p := range props {
		data, err := p.ValueJSON()
		if err != nil {
			return nil, fmt.Errorf("registry: encode %q: %w", name, err)
		}
		snap[name] = data
	}
	return snap, nil
}

// Restore applies a snapshot to the registered properties. Names without
// a registered property are skipped; a value that fails to decode aborts
// with an error. Each applied value goes through the property's setter
// path, so change signals fire as usual.
func (r *Registry) Restore(snap map[string]json.RawMessage) error {
	for name, data := range snap {
		p, ok := r.Lookup(name)
		if !ok {
			continue
		}
		if err := p.SetJSON(data); err != nil {
			return fmt.Errorf("registry: restore %q: %w", name, err)
		}
	}
	return nil
}

// Watch connects fn to the change signal of the property registered under
// name.
func (r *Registry) Watch(name string, fn func(any)) (observe.Connection, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return observe.Connection{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p.Watch(fn), nil
}

// WatchAll connects fn to every registered property's change signal,
// delivering the property name alongside the new value. The returned
// connections are in Names() order; disconnect them all to stop watching.
// Properties registered after the call are not covered.
func (r *Registry) WatchAll(fn func(name string, value any)) []observe.Connection {
	names := r.Names()
	conns := make([]observe.Connection, 0, len(names))
	for _, name := range names {
		name := name
		p, ok := r.Lookup(name)
		if !ok {
			continue
		}
		conns = append(conns, p.Watch(func(v any) { fn(name, v) }))
	}
	return conns
}
