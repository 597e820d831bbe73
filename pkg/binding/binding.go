// Package binding connects UI components to keys of a store.State.
//
// A Binding is created per component instance. Mount subscribes it to the
// key's Observable, which immediately mirrors the current value into the
// component; Unmount must run before the component is torn down. Keys that
// are missing from the state yield a detached Binding: reads return nil and
// writes are dropped.
package binding

import (
	"fmt"
	"sync"

	"github.com/cameron-webmatter/buddystate/pkg/store"
)

// Component receives the binding's selected value every time the source
// pushes one. It is the re-render trigger of the host framework.
type Component interface {
	SetState(value any)
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(value any)

func (f ComponentFunc) SetState(value any) {
	f(value)
}

type Option func(*Binding)

// WithSelector derives the component's view of the value. While mounted the
// view is a store.Computed over the source. The selector is not called for
// nil values.
func WithSelector(selector func(any) any) Option {
	return func(b *Binding) {
		b.selector = selector
	}
}

// WithTracker records mounts of this binding in t under name.
func WithTracker(t *Tracker, name string) Option {
	return func(b *Binding) {
		b.tracker = t
		b.name = name
	}
}

type Binding struct {
	id        string
	key       string
	name      string
	source    *store.Observable[any]
	component Component
	selector  func(any) any
	tracker   *Tracker

	mu      sync.RWMutex
	value   any
	mounted bool
	view    *store.Computed[any]
}

// Use builds a Binding for key. It fails only when state has not been
// initialized.
func Use(state *store.State, key string, component Component, opts ...Option) (*Binding, error) {
	bus, err := state.Current()
	if err != nil {
		return nil, fmt.Errorf("use %q: %w", key, err)
	}

	b := &Binding{
		id:        store.NewID(),
		key:       key,
		component: component,
	}
	for _, opt := range opts {
		opt(b)
	}

	if source, ok := bus.GetSource(key); ok {
		b.source = source
		b.value = b.selected(source.Get())
	}

	return b, nil
}

func (b *Binding) ID() string {
	return b.id
}

func (b *Binding) Key() string {
	return b.key
}

// Attached reports whether the key existed when the binding was created.
func (b *Binding) Attached() bool {
	return b.source != nil
}

// Mount subscribes the binding. Calling it on a mounted binding is a no-op.
func (b *Binding) Mount() {
	if b.source == nil {
		return
	}

	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true
	b.mu.Unlock()

	if b.tracker != nil {
		b.tracker.Track(b.key, b.id, b.name)
	}
	if b.selector == nil {
		b.source.Subscribe(b)
		return
	}

	view := store.NewComputed[any, any](b.source, b.selected)
	b.mu.Lock()
	b.view = view
	b.mu.Unlock()
	view.Subscribe(b)
}

// Unmount unsubscribes the binding. It is safe to call more than once.
func (b *Binding) Unmount() {
	if b.source == nil {
		return
	}

	b.mu.Lock()
	wasMounted := b.mounted
	b.mounted = false
	view := b.view
	b.view = nil
	b.mu.Unlock()

	if !wasMounted {
		return
	}
	if view != nil {
		view.Unsubscribe(b.id)
		view.Destroy()
	} else {
		b.source.Unsubscribe(b.id)
	}
	if b.tracker != nil {
		b.tracker.Untrack(b.key, b.id)
	}
}

func (b *Binding) Mounted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mounted
}

// Value returns the local copy of the selected value.
func (b *Binding) Value() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Set pushes value to the source. It is dropped when the binding is detached.
func (b *Binding) Set(value any) {
	if b.source == nil {
		return
	}
	b.source.Next(value)
}

// SetFunc pushes fn applied to the source's current value.
func (b *Binding) SetFunc(fn func(any) any) {
	if b.source == nil {
		return
	}
	b.source.Update(fn)
}

// Next implements store.Observer. With a selector, value has already been
// through the view.
func (b *Binding) Next(value any) {
	b.mu.Lock()
	b.value = value
	b.mu.Unlock()

	if b.component != nil {
		b.component.SetState(value)
	}
}

// Complete implements store.Observer. The local value is cleared; the source
// has already dropped the subscription.
func (b *Binding) Complete() {
	b.mu.Lock()
	b.value = nil
	b.mounted = false
	b.view = nil
	b.mu.Unlock()

	if b.tracker != nil {
		b.tracker.Untrack(b.key, b.id)
	}
	if b.component != nil {
		b.component.SetState(nil)
	}
}

func (b *Binding) selected(value any) any {
	if b.selector == nil || value == nil {
		return value
	}
	return b.selector(value)
}
