package binding

import (
	"sort"
	"sync"
)

// Usage records the bindings currently mounted on one key.
type Usage struct {
	Key     string
	Mounted map[string]string // binding id -> component name
}

// Tracker records which components are mounted on which keys.
type Tracker struct {
	mu   sync.RWMutex
	keys map[string]*Usage
}

func NewTracker() *Tracker {
	return &Tracker{
		keys: make(map[string]*Usage),
	}
}

func (t *Tracker) Track(key, bindingID, component string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	usage, exists := t.keys[key]
	if !exists {
		usage = &Usage{
			Key:     key,
			Mounted: make(map[string]string),
		}
		t.keys[key] = usage
	}
	usage.Mounted[bindingID] = component
}

func (t *Tracker) Untrack(key, bindingID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	usage, exists := t.keys[key]
	if !exists {
		return
	}
	delete(usage.Mounted, bindingID)
	if len(usage.Mounted) == 0 {
		delete(t.keys, key)
	}
}

// Components returns the sorted names of components mounted on key.
func (t *Tracker) Components(key string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	usage, exists := t.keys[key]
	if !exists {
		return nil
	}

	names := make([]string, 0, len(usage.Mounted))
	for _, name := range usage.Mounted {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Tracker) Count(key string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if usage, exists := t.keys[key]; exists {
		return len(usage.Mounted)
	}
	return 0
}

// Keys returns the sorted keys with at least one mounted binding.
func (t *Tracker) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.keys))
	for key := range t.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.keys = make(map[string]*Usage)
}
