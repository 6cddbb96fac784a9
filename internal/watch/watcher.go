// Package watch re-runs a handler for source files that change on disk.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/copywrite/internal/parser"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called once per settled file change.
type Handler func(ctx context.Context, path string)

// Stats counts watcher activity.
type Stats struct {
	Events  int       `json:"events"`
	Handled int       `json:"handled"`
	Errors  int       `json:"errors"`
	Last    time.Time `json:"last_event"`
}

// Watcher watches one directory for writes to supported source files and
// calls a Handler after each file settles.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	dir      string
	handle   Handler
	ignore   func(path string) bool
	log      *slog.Logger
	pending  map[string]time.Time
	debounce time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnore skips paths for which fn returns true, such as an output
// directory nested inside the watched one.
func WithIgnore(fn func(path string) bool) Option {
	return func(w *Watcher) { w.ignore = fn }
}

func New(dir string, handle Handler, log *slog.Logger, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		dir:      dir,
		handle:   handle,
		log:      log,
		pending:  make(map[string]time.Time),
		debounce: DefaultDebounce,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.fsw.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.log.Info("watching directory", "dir", w.dir, "debounce", w.debounce)

	go w.run(ctx)
	return nil
}

// Stop stops the event loop and releases the fsnotify watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.fsw.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fsw.Close(); err != nil {
		w.log.Error("closing watcher", "error", err)
	}
	w.log.Info("watcher stopped", "dir", w.dir)
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 3
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.record(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			for _, path := range w.due() {
				w.handle(ctx, path)
				w.mu.Lock()
				w.stats.Handled++
				w.mu.Unlock()
			}
		}
	}
}

// record notes a create or write on a supported file. Removals, renames and
// chmods are dropped.
func (w *Watcher) record(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !parser.IsSupportedExtension(event.Name) {
		return
	}
	if w.ignore != nil && w.ignore(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.pending[event.Name] = now
	w.stats.Events++
	w.stats.Last = now
	w.log.Debug("file changed", "path", event.Name, "op", event.Op.String())
}

// due returns and forgets the paths that have been quiet for the debounce
// window.
func (w *Watcher) due() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	var paths []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			paths = append(paths, path)
			delete(w.pending, path)
		}
	}
	return paths
}
