// Package watch pushes edits of an initial-state file into a running bus.
package watch

import (
	"context"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cameron-webmatter/buddystate/pkg/config"
	"github.com/cameron-webmatter/buddystate/pkg/store"
)

// Watcher re-reads a state file when it changes and calls Update on the bus
// for every key whose value in the file differs from the previous read.
// Keys that disappear from the file are left in the bus, and values changed
// at runtime are only overwritten when the file edits that same key.
type Watcher struct {
	path     string
	bus      *store.EventBus
	debounce time.Duration
	logger   *zap.Logger
	onReload func(changed []string)

	mu   sync.Mutex
	last map[string]any
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnReload registers fn to run after each reload with the keys it pushed.
func OnReload(fn func(changed []string)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New returns a Watcher for path. baseline is the document the bus was
// initialized from; nil means every key in the first reload counts as new.
func New(path string, bus *store.EventBus, baseline map[string]any, opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		bus:      bus,
		debounce: 100 * time.Millisecond,
		logger:   zap.NewNop(),
		last:     copyState(baseline),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start watches the file's directory until ctx is done. Watching the
// directory catches editors that save by renaming over the file.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	go w.loop(ctx, watcher)
	return nil
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	target := filepath.Clean(w.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if _, err := w.Reload(); err != nil {
				w.logger.Warn("reload state file", zap.String("path", w.path), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// Reload reads the file now and pushes changed keys. It returns the keys it
// pushed in sorted order.
func (w *Watcher) Reload() ([]string, error) {
	next, err := config.LoadInitialState(w.path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	changed := diff(w.last, next)
	w.last = next
	w.mu.Unlock()

	for _, key := range changed {
		w.bus.Update(key, next[key])
	}

	if len(changed) > 0 {
		w.logger.Info("state file reloaded",
			zap.String("path", w.path),
			zap.Strings("changed", changed),
		)
	}
	if w.onReload != nil {
		w.onReload(changed)
	}
	return changed, nil
}

func diff(prev, next map[string]any) []string {
	changed := make([]string, 0)
	for key, value := range next {
		old, existed := prev[key]
		if !existed || !reflect.DeepEqual(old, value) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

func copyState(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
