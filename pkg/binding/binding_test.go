package binding

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cameron-webmatter/buddystate/pkg/store"
)

type renderLog struct {
	renders []any
}

func (r *renderLog) SetState(value any) {
	r.renders = append(r.renders, value)
}

func newState(t *testing.T, initial map[string]any) *store.State {
	t.Helper()
	s := store.NewState()
	s.InitOnce(initial)
	return s
}

func TestUseBeforeInit(t *testing.T) {
	s := store.NewState()

	b, err := Use(s, "count", &renderLog{})

	if !errors.Is(err, store.ErrUninitialized) {
		t.Errorf("Use() error = %v, want ErrUninitialized", err)
	}
	if b != nil {
		t.Error("Use() returned a binding before Init")
	}
}

func TestBindingInitialValue(t *testing.T) {
	s := newState(t, map[string]any{"count": 3})

	b, err := Use(s, "count", &renderLog{})
	if err != nil {
		t.Fatalf("Use() error = %v", err)
	}

	if got := b.Value(); got != 3 {
		t.Errorf("Value() before mount = %v, want 3", got)
	}
	if !b.Attached() {
		t.Error("Attached() = false for existing key")
	}
}

func TestBindingMountMirrorsValues(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	comp := &renderLog{}
	b, _ := Use(s, "count", comp)

	b.Mount()
	s.MustCurrent().Update("count", 1)
	b.Set(2)

	want := []any{0, 1, 2}
	if !reflect.DeepEqual(comp.renders, want) {
		t.Errorf("renders = %v, want %v", comp.renders, want)
	}
	if got := b.Value(); got != 2 {
		t.Errorf("Value() = %v, want 2", got)
	}
}

func TestBindingMountTwice(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	comp := &renderLog{}
	b, _ := Use(s, "count", comp)

	b.Mount()
	b.Mount()

	if len(comp.renders) != 1 {
		t.Errorf("renders after double mount = %v, want one", comp.renders)
	}
	src, _ := s.MustCurrent().GetSource("count")
	if got := src.Len(); got != 1 {
		t.Errorf("source observers = %d, want 1", got)
	}
}

func TestBindingUnmount(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	comp := &renderLog{}
	b, _ := Use(s, "count", comp)

	b.Mount()
	b.Unmount()
	b.Unmount()
	s.MustCurrent().Update("count", 9)

	if len(comp.renders) != 1 {
		t.Errorf("component rendered after unmount: %v", comp.renders)
	}
	if b.Mounted() {
		t.Error("Mounted() = true after Unmount")
	}
}

func TestBindingSetFunc(t *testing.T) {
	s := newState(t, map[string]any{"count": 4})
	b, _ := Use(s, "count", &renderLog{})
	b.Mount()
	defer b.Unmount()

	b.SetFunc(func(v any) any {
		return v.(int) + 1
	})

	if got := b.Value(); got != 5 {
		t.Errorf("Value() after SetFunc = %v, want 5", got)
	}
}

func TestBindingSelector(t *testing.T) {
	s := newState(t, map[string]any{
		"user": map[string]any{"name": "Alice", "age": 30},
	})
	comp := &renderLog{}
	b, _ := Use(s, "user", comp, WithSelector(func(v any) any {
		return v.(map[string]any)["name"]
	}))

	b.Mount()
	b.Set(map[string]any{"name": "Bob", "age": 25})

	want := []any{"Alice", "Bob"}
	if !reflect.DeepEqual(comp.renders, want) {
		t.Errorf("renders = %v, want %v", comp.renders, want)
	}
	if got := b.Value(); got != "Bob" {
		t.Errorf("Value() = %v, want Bob", got)
	}
}

func TestBindingMissingKey(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	comp := &renderLog{}

	b, err := Use(s, "missing", comp)
	if err != nil {
		t.Fatalf("Use() error = %v, want nil for missing key", err)
	}

	b.Mount()
	b.Set(1)
	b.SetFunc(func(any) any { return 2 })
	b.Unmount()

	if b.Attached() {
		t.Error("Attached() = true for missing key")
	}
	if got := b.Value(); got != nil {
		t.Errorf("Value() = %v, want nil", got)
	}
	if len(comp.renders) != 0 {
		t.Errorf("detached binding rendered %v", comp.renders)
	}
	if s.MustCurrent().Has("missing") {
		t.Error("write through detached binding created the key")
	}
}

func TestBindingComplete(t *testing.T) {
	s := newState(t, map[string]any{"count": 7})
	comp := &renderLog{}
	b, _ := Use(s, "count", comp)
	b.Mount()

	src, _ := s.MustCurrent().GetSource("count")
	src.Complete()

	if got := b.Value(); got != nil {
		t.Errorf("Value() after Complete = %v, want nil", got)
	}
	if last := comp.renders[len(comp.renders)-1]; last != nil {
		t.Errorf("last render = %v, want nil", last)
	}
	if b.Mounted() {
		t.Error("Mounted() = true after Complete")
	}
	if got := src.Get(); got != 7 {
		t.Errorf("source value after Complete = %v, want 7", got)
	}

	b.Mount()
	if got := b.Value(); got != 7 {
		t.Errorf("Value() after remount = %v, want 7", got)
	}
}

func TestBindingsShareSource(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	first := &renderLog{}
	second := &renderLog{}
	a, _ := Use(s, "count", first)
	b, _ := Use(s, "count", second)
	a.Mount()
	b.Mount()

	a.Set(3)

	if got := b.Value(); got != 3 {
		t.Errorf("second binding Value() = %v, want 3", got)
	}
	if a.ID() == b.ID() {
		t.Error("bindings share an id")
	}
}

func TestComponentFunc(t *testing.T) {
	s := newState(t, map[string]any{"flag": false})
	var got any
	b, _ := Use(s, "flag", ComponentFunc(func(v any) { got = v }))

	b.Mount()
	b.Set(true)

	if got != true {
		t.Errorf("ComponentFunc received %v, want true", got)
	}
}

func TestBindingTracker(t *testing.T) {
	s := newState(t, map[string]any{"count": 0})
	tracker := NewTracker()

	header, _ := Use(s, "count", &renderLog{}, WithTracker(tracker, "Header"))
	footer, _ := Use(s, "count", &renderLog{}, WithTracker(tracker, "Footer"))

	header.Mount()
	footer.Mount()

	want := []string{"Footer", "Header"}
	if got := tracker.Components("count"); !reflect.DeepEqual(got, want) {
		t.Errorf("Components(count) = %v, want %v", got, want)
	}

	header.Unmount()

	if got := tracker.Count("count"); got != 1 {
		t.Errorf("Count(count) = %d, want 1", got)
	}

	footer.Unmount()

	if keys := tracker.Keys(); len(keys) != 0 {
		t.Errorf("Keys() = %v after all unmounted, want none", keys)
	}
}

func TestBindingSelectorView(t *testing.T) {
	s := newState(t, map[string]any{"count": 2})
	comp := &renderLog{}
	b, _ := Use(s, "count", comp, WithSelector(func(v any) any {
		return v.(int) * 10
	}))
	src, _ := s.MustCurrent().GetSource("count")

	b.Mount()
	if got := src.Len(); got != 1 {
		t.Errorf("source observers after mount = %d, want 1", got)
	}

	b.SetFunc(func(v any) any { return v.(int) + 1 })
	if got := b.Value(); got != 30 {
		t.Errorf("Value() = %v, want 30", got)
	}

	b.Unmount()
	if got := src.Len(); got != 0 {
		t.Errorf("source observers after unmount = %d, want 0", got)
	}
	src.Next(9)

	want := []any{20, 30}
	if !reflect.DeepEqual(comp.renders, want) {
		t.Errorf("renders = %v, want %v", comp.renders, want)
	}
}

func TestBindingSelectorComplete(t *testing.T) {
	s := newState(t, map[string]any{"user": map[string]any{"name": "Alice"}})
	comp := &renderLog{}
	b, _ := Use(s, "user", comp, WithSelector(func(v any) any {
		return v.(map[string]any)["name"]
	}))
	b.Mount()

	src, _ := s.MustCurrent().GetSource("user")
	src.Complete()

	if got := b.Value(); got != nil {
		t.Errorf("Value() after Complete = %v, want nil", got)
	}
	if last := comp.renders[len(comp.renders)-1]; last != nil {
		t.Errorf("last render = %v, want nil", last)
	}

	b.Mount()
	if got := b.Value(); got != "Alice" {
		t.Errorf("Value() after remount = %v, want Alice", got)
	}
}
