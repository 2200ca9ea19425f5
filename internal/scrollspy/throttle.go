package scrollspy

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// throttle runs fn at most once per interval. A call inside the interval
// schedules one trailing run at the end of it.
type throttle struct {
	mu       sync.Mutex
	clock    clock.Clock
	interval time.Duration
	fn       func()
	last     time.Time
	ran      bool
	timer    *clock.Timer
	stopped  bool
}

func newThrottle(c clock.Clock, interval time.Duration, fn func()) *throttle {
	return &throttle{
		clock:    c,
		interval: interval,
		fn:       fn,
	}
}

func (t *throttle) Call() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	now := t.clock.Now()
	elapsed := now.Sub(t.last)
	if !t.ran || elapsed >= t.interval {
		t.ran = true
		t.last = now
		t.mu.Unlock()
		t.fn()
		return
	}

	if t.timer == nil {
		t.timer = t.clock.AfterFunc(t.interval-elapsed, t.fire)
	}
	t.mu.Unlock()
}

func (t *throttle) fire() {
	t.mu.Lock()
	t.timer = nil
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.last = t.clock.Now()
	t.mu.Unlock()

	t.fn()
}

// Stop cancels any pending trailing run. Later calls are ignored.
func (t *throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
