package dbglog

import "sync/atomic"

// OnceGuard limits a log statement to a single attempt per process lifetime.
// Declare one per call site (usually a package-level var) and pass it to
// CheckOnce/LogOnce.
//
// The guard fires on the first attempt even if the level check that follows
// rejects the event: "once" counts attempts, not emitted lines. A statement
// first reached while its level is masked out will never log, even after the
// mask is widened.
type OnceGuard struct {
	fired atomic.Bool
}

// Fire flips the guard. It returns true exactly once.
func (g *OnceGuard) Fire() bool {
	return g.fired.CompareAndSwap(false, true)
}

// Fired reports whether the guard has been used up.
func (g *OnceGuard) Fired() bool {
	return g.fired.Load()
}
