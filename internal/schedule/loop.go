package schedule

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("schedule: loop stopped")

// Loop is a single-goroutine task queue. Commands from other goroutines
// (HTTP handlers, websocket readers, terminal input) and expired timers are
// all funnelled through it, so the state they touch needs no locks.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once

	mu        sync.Mutex
	timers    map[*time.Timer]struct{}
	afterEach func()
}

// NewLoop creates a loop whose queue holds up to buffer pending tasks
// before Post blocks.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks:  make(chan func(), buffer),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
}

// AfterEach registers fn to run on the loop goroutine after every task.
// The terminal client uses it to redraw.
func (l *Loop) AfterEach(fn func()) {
	l.mu.Lock()
	l.afterEach = fn
	l.mu.Unlock()
}

// Run processes tasks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			fn()
			l.mu.Lock()
			hook := l.afterEach
			l.mu.Unlock()
			if hook != nil {
				hook()
			}
		}
	}
}

// Stop ends Run and stops every pending timer. Safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)
		l.mu.Lock()
		for t := range l.timers {
			t.Stop()
		}
		l.timers = nil
		l.mu.Unlock()
	})
}

// Post queues fn. It returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do queues fn and waits for it to finish. It must not be called from the
// loop goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timers == nil {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		if l.timers != nil {
			delete(l.timers, t)
		}
		l.mu.Unlock()
		l.Post(fn)
	})
	l.timers[t] = struct{}{}
}
