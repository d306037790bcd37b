package framelib

import "sync/atomic"

// SpinLock is a short-section mutual exclusion primitive. It is only
// correct for sections bounded in the tens of nanoseconds; it must never be
// held across allocation or I/O, since a spinning waiter burns a core the
// whole time it is held.
type SpinLock struct {
	locked atomic.Bool
}

// Attempt transitions false->true and returns whether it succeeded.
func (s *SpinLock) Attempt() bool {
	return s.locked.CompareAndSwap(false, true)
}

// Acquire spins until Attempt succeeds.
func (s *SpinLock) Acquire() {
	for !s.Attempt() {
	}
}

// Release transitions true->false.
func (s *SpinLock) Release() {
	s.locked.Store(false)
}

// SpinLockHolder is a scoped RAII-style holder: acquire on construction,
// release when Destroy is called (directly or deferred); nothing releases it
// otherwise. A nil *SpinLock is a no-op, mirroring
// the source's tolerance of an absent lock.
type SpinLockHolder struct {
	lock *SpinLock
}

// Hold acquires lock (if non-nil) and returns a holder that releases it.
func Hold(lock *SpinLock) *SpinLockHolder {
	if lock != nil {
		lock.Acquire()
	}
	return &SpinLockHolder{lock: lock}
}

// Destroy releases the held lock early; safe to call more than once and
// safe to call again from a deferred Destroy.
func (h *SpinLockHolder) Destroy() {
	if h.lock != nil {
		h.lock.Release()
		h.lock = nil
	}
}
