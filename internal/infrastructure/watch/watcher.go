package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher watches one configuration file and invokes onChange
// (debounced) whenever it is written or recreated. The parent directory
// is watched rather than the file itself: editors that replace the file
// on save would otherwise detach the watch.
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
}

// NewConfigWatcher creates a watcher for the given file path.
func NewConfigWatcher(path string, debounce time.Duration, onChange func()) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &ConfigWatcher{
		path:     path,
		watcher:  w,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run blocks until the context is cancelled, dispatching debounced
// change notifications for the watched file.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, func() {
		if w.onChange != nil {
			w.onChange()
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) {
				debouncer.Trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
