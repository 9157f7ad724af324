package datasource

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events a single scene save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher signals when the scene file is rewritten. It watches the parent
// directory so a host that replaces the file by rename is still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	name     string
	debounce time.Duration
	logger   *slog.Logger

	changes   chan struct{}
	stop      chan struct{}
	closeOnce sync.Once
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a change is signalled.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger reports fsnotify errors to logger instead of discarding them.
func WithLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) { w.logger = logger }
}

// NewWatcher starts watching scenePath.
func NewWatcher(scenePath string, opts ...WatchOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(scenePath)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fs:       fw,
		name:     filepath.Base(scenePath),
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		changes:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	go w.run()
	return w, nil
}

// Changes delivers at most one pending signal; readers reload the whole
// scene, so signals never queue up.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher. Calling it twice is safe.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stop)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	// The control sidecar and host temp files share the directory.
	if filepath.Base(ev.Name) != w.name {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) run() {
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(w.debounce, w.signal)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("scene watch error", "error", err)
		}
	}
}
