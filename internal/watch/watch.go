// Package watch reruns generation whenever a specification file changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/lhaig/climeta/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange after the watched file was written or created and
// then stayed quiet for Debounce.
type Watcher struct {
	Path     string
	Debounce time.Duration
	OnChange func() error

	// ready is closed once the file system watch is in place.
	ready chan struct{}
}

// New creates a watcher for path.
func New(path string, onChange func() error) *Watcher {
	return &Watcher{Path: path, Debounce: DefaultDebounce, OnChange: onChange, ready: make(chan struct{})}
}

// Ready is closed when Run has started watching.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run blocks until ctx is cancelled. The directory is watched rather than the
// file so that editors replacing the file by rename are still seen. Errors
// returned by OnChange are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fw.Close()

	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return errors.Wrap(err, "resolving watched path")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", w.Path)
	}
	close(w.ready)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Logger.Debugw("specification changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Warnw("watcher error", "error", err)

		case <-timer.C:
			if err := w.OnChange(); err != nil {
				logger.Logger.Errorw("regeneration failed", "error", err)
			}
		}
	}
}
