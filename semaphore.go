package framelib

import "sync"

// Semaphore is a signal/wait counting semaphore with a clean shutdown path:
// once Close is called every blocked and future Wait returns false instead
// of blocking. Failing to Close before the semaphore is dropped is a
// programming error (any goroutine still blocked in Wait leaks).
type Semaphore struct {
	mu       sync.Mutex
	cond     *sync.Cond
	count    int64
	maxCount int64
	closed   bool
}

// NewSemaphore constructs a semaphore that never holds more than maxCount
// outstanding signals; a maxCount of zero or less leaves the count unbounded.
func NewSemaphore(maxCount int64) *Semaphore {
	s := &Semaphore{maxCount: maxCount}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Signal posts n permits, waking up to n waiters. A no-op once Close has
// been called.
func (s *Semaphore) Signal(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.count += n
	if s.maxCount > 0 && s.count > s.maxCount {
		s.count = s.maxCount
	}
	s.cond.Broadcast()
}

// Wait blocks until a permit is available, consuming one and returning
// true, or returns false once Close has been called (consuming nothing).
func (s *Semaphore) Wait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return false
	}
	s.count--
	return true
}

// Close unblocks all current and future waiters permanently.
func (s *Semaphore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
}
