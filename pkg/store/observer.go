package store

import (
	"github.com/google/uuid"
)

// Observer receives values pushed by an Observable. ID must be unique per
// active subscription on a given Observable.
type Observer[T any] interface {
	ID() string
	Next(value T)
	Complete()
}

type Unsubscriber func()

type ReadableStore[T any] interface {
	Get() T
	Subscribe(observer Observer[T]) Unsubscriber
}

// ObserverFuncs adapts plain callbacks to the Observer interface. Nil
// callbacks are skipped.
type ObserverFuncs[T any] struct {
	ObserverID string
	OnNext     func(T)
	OnComplete func()
}

func (o ObserverFuncs[T]) ID() string {
	return o.ObserverID
}

func (o ObserverFuncs[T]) Next(value T) {
	if o.OnNext != nil {
		o.OnNext(value)
	}
}

func (o ObserverFuncs[T]) Complete() {
	if o.OnComplete != nil {
		o.OnComplete()
	}
}

// NewID returns a fresh subscription id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
