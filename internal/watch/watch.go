// Package watch emits reload signals when configuration or dotenv files
// change, coalescing rapid bursts of filesystem events into one signal.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/envrig/internal/ctxlog"
)

// DefaultDebounce is the settle window for bursts of filesystem events.
// Editors commonly produce several events per save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches config and dotenv paths and signals coalesced changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	events   chan string
	done     chan struct{}
}

// New creates and starts a watcher over the given paths. Files are watched
// through their parent directory, so editors that replace a file on save
// (rename + create) keep triggering events. Nonexistent paths watch their
// parent too, catching the file's later creation.
func New(ctx context.Context, debounce time.Duration, paths ...string) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	logger := ctxlog.FromContext(ctx)
	seen := make(map[string]bool)
	for _, path := range paths {
		dir := path
		if info, statErr := os.Stat(path); statErr != nil || !info.IsDir() {
			dir = filepath.Dir(path)
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if addErr := fsw.Add(dir); addErr != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %q: %w", dir, addErr)
		}
		logger.Debug("Watching directory.", "dir", dir)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		events:   make(chan string, 1),
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Events delivers one path per settled burst of changes. The channel closes
// when the watcher shuts down.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Close shuts the watcher down and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

// run is the event loop: it absorbs raw filesystem events and emits one
// signal once a burst has settled for the debounce window.
func (w *Watcher) run(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	defer close(w.done)
	defer close(w.events)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending string
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watcher context canceled.")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue // Chmod noise.
			}
			logger.Debug("Filesystem event.", "op", event.Op.String(), "path", event.Name)
			pending = event.Name
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Error("Filesystem watcher error.", "error", err)

		case <-timer.C:
			if pending == "" {
				continue
			}
			logger.Info("Change detected, signaling reload.", "path", pending)
			select {
			case w.events <- pending:
			case <-ctx.Done():
				return
			}
			pending = ""
		}
	}
}
