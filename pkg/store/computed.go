package store

// Computed is a read-only value derived from a source through a transform.
// It follows the source until Destroy is called.
type Computed[T any] struct {
	cell  *Observable[T]
	unsub Unsubscriber
}

func NewComputed[S any, T any](source ReadableStore[S], transform func(S) T) *Computed[T] {
	c := &Computed[T]{
		cell: NewObservable(transform(source.Get())),
	}

	c.unsub = source.Subscribe(ObserverFuncs[S]{
		ObserverID: NewID(),
		OnNext: func(val S) {
			c.cell.Next(transform(val))
		},
		OnComplete: func() {
			c.cell.Complete()
		},
	})

	return c
}

func (c *Computed[T]) Get() T {
	return c.cell.Get()
}

func (c *Computed[T]) Value() T {
	return c.cell.Get()
}

func (c *Computed[T]) Subscribe(observer Observer[T]) Unsubscriber {
	return c.cell.Subscribe(observer)
}

func (c *Computed[T]) Unsubscribe(id string) {
	c.cell.Unsubscribe(id)
}

// Destroy detaches from the source and completes the derived observers.
func (c *Computed[T]) Destroy() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.cell.Complete()
}
