// Package store is a key-value registry of observable values for UI
// components.
//
// An Observable holds one value and pushes every change to its observers
// synchronously. An EventBus maps string keys to Observables, built from an
// initial state and extended lazily by Update. A State owns at most one
// EventBus for its lifetime:
//
//	store.Init(map[string]any{"count": 0})
//	bus := store.MustCurrent()
//	bus.Update("count", 5)
//	src, _ := bus.GetSource("count")
//	src.Get() // 5
package store
