// Package watch reloads the CLI configuration when its file changes on
// disk, so long-running commands (board, dashboard) pick up edits
// without a restart.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of events into one callback. Editors
// often write a file several times in quick succession on save.
type Debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration, callback func()) *Debouncer {
	return &Debouncer{window: window, callback: callback}
}

// Trigger resets the timer; the callback fires once the window elapses
// with no further triggers.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.callback)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
