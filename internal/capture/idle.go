package capture

import (
	"sync"
	"time"
)

// idleWatcher closes its channel once no request has been in flight for
// quiet. The timer is armed whenever the in-flight count drops to zero and
// when the caller calls arm after navigation, so a page that never issues
// a request still goes idle.
type idleWatcher struct {
	mu     sync.Mutex
	active int
	quiet  time.Duration
	timer  *time.Timer
	ch     chan struct{}
	once   sync.Once
}

func newIdleWatcher(quiet time.Duration) *idleWatcher {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	return &idleWatcher{quiet: quiet, ch: make(chan struct{})}
}

func (w *idleWatcher) started() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active++
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *idleWatcher) done() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active > 0 {
		w.active--
	}
	if w.active == 0 {
		w.armLocked()
	}
}

func (w *idleWatcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == 0 {
		w.armLocked()
	}
}

func (w *idleWatcher) armLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.quiet, func() {
		w.mu.Lock()
		quiet := w.active == 0
		w.mu.Unlock()
		if quiet {
			w.once.Do(func() { close(w.ch) })
		}
	})
}

func (w *idleWatcher) inFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *idleWatcher) idle() <-chan struct{} { return w.ch }

func (w *idleWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
