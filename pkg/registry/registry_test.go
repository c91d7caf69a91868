package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vango-dev/observe/pkg/observe"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	count := observe.NewProperty(0)

	if err := Register(r, "count", count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, ok := r.Lookup("count")
	if !ok {
		t.Fatal("registered property not found")
	}
	if p.GetAny() != 0 {
		t.Errorf("expected 0, got %v", p.GetAny())
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	r := New()
	if err := Register(r, "count", observe.NewProperty(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Register(r, "count", observe.NewProperty(1))
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestSetAnyTypeMismatch(t *testing.T) {
	r := New()
	count := observe.NewProperty(0)
	if err := Register(r, "count", count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := r.Lookup("count")
	if err := p.SetAny("not an int"); err == nil {
		t.Error("expected type mismatch error")
	}
	if err := p.SetAny(42); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if count.Get() != 42 {
		t.Errorf("expected 42, got %d", count.Get())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := New()
	greeting := observe.NewProperty("hello")
	if err := Register(r, "greeting", greeting); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := r.Lookup("greeting")
	data, err := p.ValueJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"hello"` {
		t.Errorf("expected %q, got %s", `"hello"`, data)
	}

	if err := p.SetJSON([]byte(`"goodbye"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if greeting.Get() != "goodbye" {
		t.Errorf("expected %q, got %q", "goodbye", greeting.Get())
	}

	if err := p.SetJSON([]byte(`42`)); err == nil {
		t.Error("expected decode error for mismatched JSON type")
	}
}

func TestNamesSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := Register(r, name, observe.NewProperty(0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	names := r.Names()
	if len(names) != 3 || names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	r := New()
	count := observe.NewProperty(7)
	label := observe.NewProperty("up")
	if err := Register(r, "count", count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Register(r, "label", label); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(snap["count"]) != "7" || string(snap["label"]) != `"up"` {
		t.Errorf("unexpected snapshot: %v", snap)
	}

	count.Set(0)
	label.Set("down")

	// Unknown names are skipped.
	snap["ghost"] = json.RawMessage(`true`)
	if err := r.Restore(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count.Get() != 7 || label.Get() != "up" {
		t.Errorf("restore did not reapply values: count=%d label=%q", count.Get(), label.Get())
	}
}

func TestWatchDeliversChanges(t *testing.T) {
	r := New()
	count := observe.NewProperty(0)
	if err := Register(r, "count", count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []any
	conn, err := r.Watch("count", func(v any) { got = append(got, v) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count.Set(1)
	count.Set(2)
	conn.Disconnect()
	count.Set(3)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestWatchUnknownName(t *testing.T) {
	r := New()
	_, err := r.Watch("ghost", func(any) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWatchAll(t *testing.T) {
	r := New()
	count := observe.NewProperty(0)
	label := observe.NewProperty("")
	if err := Register(r, "count", count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Register(r, "label", label); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type change struct {
		name  string
		value any
	}
	var got []change
	conns := r.WatchAll(func(name string, value any) {
		got = append(got, change{name, value})
	})

	count.Set(5)
	label.Set("x")

	if len(got) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(got))
	}
	if got[0] != (change{"count", 5}) || got[1] != (change{"label", "x"}) {
		t.Errorf("unexpected changes: %v", got)
	}

	for _, conn := range conns {
		conn.Disconnect()
	}
	count.Set(6)
	if len(got) != 2 {
		t.Error("changes delivered after disconnecting all watchers")
	}
}
