package store

import (
	"sync"
)

// Observable is a value cell that pushes every change to its observers.
//
// Notifications run synchronously on the caller's goroutine against a copy
// of the observer set taken under the lock, so an observer added or removed
// while a notification is in flight only sees the next one. Callbacks run
// without the lock held and may call back into the same Observable.
//
// Complete clears the observer set but leaves the cell usable: later Next
// and Subscribe calls behave as on a fresh Observable holding the last value.
type Observable[T any] struct {
	value     T
	order     []string
	observers map[string]Observer[T]
	mu        sync.RWMutex

	// onChange runs after every Next or Update, after the observers.
	// Complete does not clear it.
	onChange func(T)
}

func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value:     initial,
		order:     make([]string, 0),
		observers: make(map[string]Observer[T]),
	}
}

func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

func (o *Observable[T]) Value() T {
	return o.Get()
}

func (o *Observable[T]) Next(value T) {
	o.mu.Lock()
	o.value = value
	subs := o.snapshot()
	hook := o.onChange
	o.mu.Unlock()

	o.notify(subs, hook, value)
}

// Update replaces the value with fn applied to the current one and notifies
// observers. fn runs without the lock held, so it may read the Observable;
// a concurrent Next between the read and the write is overwritten.
func (o *Observable[T]) Update(fn func(T) T) {
	o.Next(fn(o.Get()))
}

// Subscribe registers observer under its ID and immediately delivers the
// current value to it. Registering an ID that is already present replaces
// the previous observer in place.
func (o *Observable[T]) Subscribe(observer Observer[T]) Unsubscriber {
	id := observer.ID()

	o.mu.Lock()
	if _, exists := o.observers[id]; !exists {
		o.order = append(o.order, id)
	}
	o.observers[id] = observer
	current := o.value
	o.mu.Unlock()

	observer.Next(current)

	return func() {
		o.Unsubscribe(id)
	}
}

func (o *Observable[T]) Unsubscribe(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.observers[id]; !exists {
		return
	}
	delete(o.observers, id)
	for i, existing := range o.order {
		if existing == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// Complete signals every current observer once and drops them all.
func (o *Observable[T]) Complete() {
	o.mu.Lock()
	subs := o.snapshot()
	o.order = make([]string, 0)
	o.observers = make(map[string]Observer[T])
	o.mu.Unlock()

	for _, observer := range subs {
		observer.Complete()
	}
}

func (o *Observable[T]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.order)
}

func (o *Observable[T]) notify(subs []Observer[T], hook func(T), value T) {
	for _, observer := range subs {
		observer.Next(value)
	}
	if hook != nil {
		hook(value)
	}
}

// snapshot must be called with o.mu held.
func (o *Observable[T]) snapshot() []Observer[T] {
	subs := make([]Observer[T], 0, len(o.order))
	for _, id := range o.order {
		subs = append(subs, o.observers[id])
	}
	return subs
}
