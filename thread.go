package framelib

import (
	"runtime"
	"sync/atomic"
)

// PriorityLevel is one of the four OS thread priority tiers a Thread can
// run at.
type PriorityLevel int

const (
	LowPriority PriorityLevel = iota
	MediumPriority
	HighPriority
	AudioPriority
)

// Thread starts a single OS thread (a goroutine pinned to its OS thread via
// LockOSThread, so priority actually sticks) running a supplied entry
// function. Must be joined before it is dropped. Non-copyable by
// convention: always pass *Thread.
type Thread struct {
	priority PriorityLevel
	fn       func(arg any)
	arg      any
	done     chan struct{}
	started  bool
}

// MaxThreads mirrors FrameLib_Thread::maxThreads: at least 1, otherwise
// GOMAXPROCS-ish hardware concurrency.
func MaxThreads() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// NewThread constructs a thread that is not yet running.
func NewThread(priority PriorityLevel, fn func(arg any), arg any) *Thread {
	return &Thread{priority: priority, fn: fn, arg: arg, done: make(chan struct{})}
}

// Start launches the thread. Must be called at most once.
func (t *Thread) Start() {
	t.started = true
	go func() {
		runtime.LockOSThread()
		setThreadPriority(t.priority)
		defer close(t.done)
		t.fn(t.arg)
	}()
}

// Join blocks until the entry function has returned. Safe to call even if
// Start was never called (returns immediately).
func (t *Thread) Join() {
	if !t.started {
		return
	}
	<-t.done
}

// TriggerableThread pairs a thread with a binary semaphore: external
// callers Signal(); the thread loops Wait(); doTask(); until Join()'d
// (which closes the semaphore to unblock the loop).
type TriggerableThread struct {
	thread *Thread
	sem    *Semaphore
	doTask func()
}

// NewTriggerableThread constructs (but does not start) a triggerable
// thread running doTask once per Signal.
func NewTriggerableThread(priority PriorityLevel, doTask func()) *TriggerableThread {
	t := &TriggerableThread{sem: NewSemaphore(1), doTask: doTask}
	t.thread = NewThread(priority, func(any) { t.loop() }, nil)
	return t
}

func (t *TriggerableThread) loop() {
	for {
		if !t.sem.Wait() {
			return
		}
		t.doTask()
	}
}

// Start launches the underlying OS thread.
func (t *TriggerableThread) Start() { t.thread.Start() }

// Signal wakes the thread to run doTask once.
func (t *TriggerableThread) Signal() { t.sem.Signal(1) }

// Join closes the semaphore (waking the loop to exit) and waits for the
// thread to finish.
func (t *TriggerableThread) Join() {
	t.sem.Close()
	t.thread.Join()
}

// DelegateThread extends TriggerableThread with a completion flag: Signal
// returns false if a task is already in flight; Completed reports without
// blocking; WaitForCompletion blocks and returns true exactly once per
// Signal.
type DelegateThread struct {
	thread     *Thread
	sem        *Semaphore
	doTask     func()
	busy       atomic.Bool
	done       atomic.Bool
	completion chan struct{}
}

// NewDelegateThread constructs (but does not start) a delegate thread
// running doTask once per successful Signal.
func NewDelegateThread(priority PriorityLevel, doTask func()) *DelegateThread {
	d := &DelegateThread{sem: NewSemaphore(1), doTask: doTask, completion: make(chan struct{}, 1)}
	d.thread = NewThread(priority, func(any) { d.loop() }, nil)
	return d
}

func (d *DelegateThread) loop() {
	for {
		if !d.sem.Wait() {
			return
		}
		d.doTask()
		d.busy.Store(false)
		d.done.Store(true)
		select {
		case d.completion <- struct{}{}:
		default:
		}
	}
}

// Start launches the underlying OS thread.
func (d *DelegateThread) Start() { d.thread.Start() }

// Signal triggers doTask if the thread is not already busy. Returns
// whether it was signalled.
func (d *DelegateThread) Signal() bool {
	if !d.busy.CompareAndSwap(false, true) {
		return false
	}
	d.done.Store(false)
	d.sem.Signal(1)
	return true
}

// Completed reports, without blocking, whether a signalled task has
// finished and not yet been collected by WaitForCompletion.
func (d *DelegateThread) Completed() bool { return d.done.Load() }

// WaitForCompletion blocks until the in-flight task finishes, then returns
// true exactly once per Signal.
func (d *DelegateThread) WaitForCompletion() bool {
	<-d.completion
	d.done.Store(false)
	return true
}

// Join closes the semaphore and waits for the thread to finish.
func (d *DelegateThread) Join() {
	d.sem.Close()
	d.thread.Join()
}

// TriggerableThreadSet holds N indexed threads sharing one counting
// semaphore; Signal(k) wakes k of them, each invoking doTask(index) for its
// own index.
type TriggerableThreadSet struct {
	threads []*Thread
	sem     *Semaphore
	doTask  func(index int)
}

// NewTriggerableThreadSet constructs (but does not start) size indexed
// worker threads that each run doTask(index) once per wakeup they win.
func NewTriggerableThreadSet(priority PriorityLevel, size int, doTask func(index int)) *TriggerableThreadSet {
	s := &TriggerableThreadSet{sem: NewSemaphore(int64(size)), doTask: doTask}
	s.threads = make([]*Thread, size)
	for i := 0; i < size; i++ {
		idx := i
		s.threads[i] = NewThread(priority, func(any) { s.loop(idx) }, nil)
	}
	return s
}

func (s *TriggerableThreadSet) loop(index int) {
	for {
		if !s.sem.Wait() {
			return
		}
		s.doTask(index)
	}
}

// Start launches every worker thread.
func (s *TriggerableThreadSet) Start() {
	for _, t := range s.threads {
		t.Start()
	}
}

// Signal wakes n workers (one doTask invocation each).
func (s *TriggerableThreadSet) Signal(n int) { s.sem.Signal(int64(n)) }

// Size returns the number of worker threads in the set.
func (s *TriggerableThreadSet) Size() int { return len(s.threads) }

// Join closes the semaphore and waits for every worker to finish.
func (s *TriggerableThreadSet) Join() {
	s.sem.Close()
	for _, t := range s.threads {
		t.Join()
	}
}
