package pipeline

import "sync/atomic"

// rebuildLock provides non-blocking lock semantics for the per-project
// rebuild path. Rebuilds must never queue behind each other: a second
// concurrent rebuild is a caller error, not something to wait out.
type rebuildLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking and reports
// whether it succeeded.
func (l *rebuildLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock. Must only be called after a successful
// TryAcquire.
func (l *rebuildLock) Release() {
	l.state.Store(0)
}
