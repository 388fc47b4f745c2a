// Package schedule runs deferred work for single-threaded game state.
//
// All state changes happen on one goroutine. Timers never touch state
// directly: when a delay expires, the callback is posted back onto that
// goroutine as an ordinary task.
package schedule

import "time"

// Scheduler runs fn after d on the goroutine that owns the game state.
// Scheduled work cannot be cancelled; callers guard stale callbacks
// themselves (the battle engine keys them by battle generation).
type Scheduler interface {
	After(d time.Duration, fn func())
}
