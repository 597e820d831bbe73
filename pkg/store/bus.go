package store

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// EventBus maps string keys to Observables. Keys are added by NewEventBus
// and by Update; they are never removed.
type EventBus struct {
	observables map[string]*Observable[any]
	mu          sync.RWMutex

	watchers   map[string]func(key string, value any)
	watchOrder []string
	watchMu    sync.RWMutex

	logger *zap.Logger
}

type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes diagnostics (initialization, resets, missing keys) to
// logger. The default discards them.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewEventBus creates one Observable per key of initial, seeded with that
// key's value.
func NewEventBus(initial map[string]any, opts ...Option) *EventBus {
	o := buildOptions(opts)

	b := &EventBus{
		observables: make(map[string]*Observable[any], len(initial)),
		watchers:    make(map[string]func(string, any)),
		logger:      o.logger,
	}

	for _, key := range sortedKeys(initial) {
		b.observables[key] = b.newSource(key, initial[key])
	}

	return b
}

// GetSource returns the Observable registered for key. A missing key is
// reported to the logger and returned as (nil, false); it is never created.
func (b *EventBus) GetSource(key string) (*Observable[any], bool) {
	b.mu.RLock()
	source, ok := b.observables[key]
	b.mu.RUnlock()

	if !ok {
		b.logger.Warn("source not found, add it to the initial state",
			zap.String("key", key),
		)
		return nil, false
	}
	return source, true
}

// Lookup is GetSource for callers that handle absence themselves: nothing is
// logged and a missing key yields ErrSourceNotFound.
func (b *EventBus) Lookup(key string) (*Observable[any], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	source, ok := b.observables[key]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", key, ErrSourceNotFound)
	}
	return source, nil
}

// Update pushes value to the Observable for key, creating it first when the
// key is unknown.
func (b *EventBus) Update(key string, value any) {
	b.mu.Lock()
	source, ok := b.observables[key]
	if !ok {
		source = b.newSource(key, value)
		b.observables[key] = source
	}
	b.mu.Unlock()

	if !ok {
		b.logger.Debug("source created", zap.String("key", key))
	}

	// A freshly created source has no observers yet, so this only reaches
	// the bus watchers.
	source.Next(value)
}

func (b *EventBus) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.observables[key]
	return ok
}

func (b *EventBus) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.observables))
	for key := range b.observables {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot copies the current value of every key.
func (b *EventBus) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := make(map[string]any, len(b.observables))
	for key, source := range b.observables {
		snap[key] = source.Get()
	}
	return snap
}

// Watch registers fn to run after any key receives a new value, whether
// through Update or through Next on one of the bus's Observables.
func (b *EventBus) Watch(fn func(key string, value any)) Unsubscriber {
	id := NewID()

	b.watchMu.Lock()
	b.watchers[id] = fn
	b.watchOrder = append(b.watchOrder, id)
	b.watchMu.Unlock()

	return func() {
		b.watchMu.Lock()
		defer b.watchMu.Unlock()
		if _, ok := b.watchers[id]; !ok {
			return
		}
		delete(b.watchers, id)
		for i, existing := range b.watchOrder {
			if existing == id {
				b.watchOrder = append(b.watchOrder[:i], b.watchOrder[i+1:]...)
				break
			}
		}
	}
}

func (b *EventBus) newSource(key string, value any) *Observable[any] {
	source := NewObservable(value)
	source.onChange = func(v any) {
		b.emit(key, v)
	}
	return source
}

func (b *EventBus) emit(key string, value any) {
	b.watchMu.RLock()
	fns := make([]func(string, any), 0, len(b.watchOrder))
	for _, id := range b.watchOrder {
		fns = append(fns, b.watchers[id])
	}
	b.watchMu.RUnlock()

	for _, fn := range fns {
		fn(key, value)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
