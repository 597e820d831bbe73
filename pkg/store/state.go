package store

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// State holds at most one EventBus. The first InitOnce wins; the bus is only
// discarded by ResetForTesting.
type State struct {
	bus  *EventBus
	mu   sync.RWMutex
	opts []Option
}

// NewState returns an uninitialized State. opts are applied to the bus built
// by InitOnce and to the State's own diagnostics.
func NewState(opts ...Option) *State {
	return &State{opts: opts}
}

// InitOnce builds the bus from initial. It reports whether this call did the
// initialization; later calls leave the existing bus untouched.
func (s *State) InitOnce(initial map[string]any) bool {
	logger := s.logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bus != nil {
		logger.Warn("state already initialized, ignoring init",
			zap.Int("keys", len(initial)),
		)
		return false
	}

	logger.Info("initializing state", zap.Int("keys", len(initial)))
	s.bus = NewEventBus(initial, s.opts...)
	return true
}

func (s *State) Current() (*EventBus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bus == nil {
		return nil, ErrUninitialized
	}
	return s.bus, nil
}

// MustCurrent is Current for callers that treat reading state before Init as
// a programming error. It panics with ErrUninitialized.
func (s *State) MustCurrent() *EventBus {
	bus, err := s.Current()
	if err != nil {
		panic(fmt.Errorf("current state: %w", err))
	}
	return bus
}

// ResetForTesting discards the bus so the next InitOnce starts fresh.
func (s *State) ResetForTesting() {
	s.logger().Info("resetting state")

	s.mu.Lock()
	s.bus = nil
	s.mu.Unlock()
}

func (s *State) logger() *zap.Logger {
	return buildOptions(s.opts).logger
}

var (
	defaultState   = NewState()
	defaultStateMu sync.RWMutex
)

// Default returns the process-wide State used by Init, Current and
// ResetForTesting.
func Default() *State {
	defaultStateMu.RLock()
	defer defaultStateMu.RUnlock()
	return defaultState
}

// SetDefaultLogger replaces the process-wide State with one logging to
// logger. It must be called before Init; an initialized default is kept.
func SetDefaultLogger(logger *zap.Logger) bool {
	defaultStateMu.Lock()
	defer defaultStateMu.Unlock()

	if _, err := defaultState.Current(); err == nil {
		return false
	}
	defaultState = NewState(WithLogger(logger))
	return true
}

func Init(initial map[string]any) bool {
	return Default().InitOnce(initial)
}

func Current() (*EventBus, error) {
	return Default().Current()
}

func MustCurrent() *EventBus {
	return Default().MustCurrent()
}

func ResetForTesting() {
	Default().ResetForTesting()
}
