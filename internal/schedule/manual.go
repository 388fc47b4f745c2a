package schedule

import (
	"sort"
	"time"
)

// maxManualSteps bounds RunAll so a task that keeps rescheduling itself
// fails a test instead of hanging it.
const maxManualSteps = 10000

// Manual is a Scheduler driven by hand. Time only moves when Advance or
// RunAll is called, and due tasks run on the caller's goroutine in
// deadline order (ties in scheduling order).
type Manual struct {
	now     time.Duration
	seq     int
	pending []manualTask
}

type manualTask struct {
	at  time.Duration
	seq int
	fn  func()
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	m.seq++
	m.pending = append(m.pending, manualTask{at: m.now + d, seq: m.seq, fn: fn})
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of tasks waiting to run.
func (m *Manual) Pending() int {
	return len(m.pending)
}

// Advance moves time forward by d, running every task that falls due,
// including tasks scheduled by tasks run during the advance. It returns the
// number of tasks run.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	ran := 0
	for {
		next, ok := m.popDue(target)
		if !ok {
			break
		}
		m.now = next.at
		next.fn()
		ran++
	}
	m.now = target
	return ran
}

// RunAll runs tasks until none are pending, moving time to each deadline.
// It returns the number of tasks run.
func (m *Manual) RunAll() int {
	ran := 0
	for len(m.pending) > 0 && ran < maxManualSteps {
		next, _ := m.popDue(-1)
		if next.at > m.now {
			m.now = next.at
		}
		next.fn()
		ran++
	}
	return ran
}

// popDue removes and returns the earliest task due at or before limit. A
// negative limit accepts any task.
func (m *Manual) popDue(limit time.Duration) (manualTask, bool) {
	if len(m.pending) == 0 {
		return manualTask{}, false
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at != m.pending[j].at {
			return m.pending[i].at < m.pending[j].at
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	next := m.pending[0]
	if limit >= 0 && next.at > limit {
		return manualTask{}, false
	}
	m.pending = m.pending[1:]
	return next, true
}
