// Package watch reports external edits to the settings file.
//
// The parent directory is watched rather than the file itself, because an
// atomic save replaces the file with a new inode that a file watch would
// lose track of. Bursts of events are debounced into a single callback.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/settler/internal/errors"
)

// DefaultDebounce is how long the file must be quiet before a change is
// reported.
const DefaultDebounce = 250 * time.Millisecond

// Event describes a settled change to the watched file.
type Event struct {
	// Path is the watched file.
	Path string

	// Op accumulates every operation seen during the debounce window.
	Op fsnotify.Op

	// Removed is true when the file no longer exists at the end of the window.
	Removed bool
}

// Watcher watches a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New returns a Watcher for path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done, calling onChange once per settled burst of
// changes to the file. onChange runs on the watcher goroutine; events that
// arrive while it runs are reported afterwards. Run returns nil when ctx is
// canceled.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, Event)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}
	w.log.Debug("watching settings file", "path", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending fsnotify.Op
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debug("settings file event", "op", ev.Op.String())
			pending |= ev.Op
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "error", err)

		case <-timer.C:
			if pending == 0 {
				continue
			}
			ev := Event{Path: w.path, Op: pending, Removed: !exists(w.path)}
			pending = 0
			onChange(ctx, ev)
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
