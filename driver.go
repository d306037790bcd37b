package framelib

import "sync/atomic"

// readyStack is a Treiber stack of ready nodes, built on
// AtomicCountedPointer so concurrent pushers/poppers never suffer an ABA
// failure even though Node pointers get recycled across blocks (C7 on top
// of C1).
type readyStack struct {
	top *AtomicCountedPointer[Node]
}

func newReadyStack() *readyStack {
	return &readyStack{top: NewAtomicCountedPointer[Node]()}
}

func (s *readyStack) push(n *Node) {
	for {
		cur := s.top.Load()
		n.nextReady = cur.Pointer
		if s.top.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (s *readyStack) pop() *Node {
	for {
		cur := s.top.Load()
		if cur.Pointer == nil {
			return nil
		}
		next := cur.Pointer.nextReady
		if s.top.CompareAndSwap(cur, next) {
			popped := cur.Pointer
			popped.nextReady = nil
			return popped
		}
	}
}

// BlockDriver drives one Graph through successive fixed-size blocks (C8):
// seed every dependency-satisfied node onto the ready queue, drain it with
// a pool of worker threads plus the calling (audio) thread, and advance
// blockStart -> blockEnd once every node has caught up (§4.8).
type BlockDriver struct {
	graph     *Graph
	stack     *readyStack
	sem       *Semaphore
	workerSet *TriggerableThreadSet

	remaining       atomic.Int64
	currentBlockEnd Time
}

// NewBlockDriver constructs a driver over g with numWorkers background
// worker threads (in addition to the calling thread, which always
// participates — so numWorkers == 0 is a valid, if serial, configuration).
// The worker pool is a TriggerableThreadSet (C4, §4.4: "the block driver
// needs both fan-out... and point-to-point delegation" — this is the
// fan-out half) sharing the ready stack with the calling thread: every
// tryPush signals both the calling thread's own semaphore and the worker
// set, so whichever side gets there first wins the pop; a spurious wakeup
// racing an already-drained stack just re-waits. The graph is marked
// active for the lifetime of the driver: connection management on it
// returns ErrDriverActive until Close.
func NewBlockDriver(g *Graph, numWorkers int) *BlockDriver {
	d := &BlockDriver{
		graph: g,
		stack: newReadyStack(),
		sem:   NewSemaphore(0),

		currentBlockEnd: Zero,
	}
	for _, n := range g.nodes {
		n.driver = d
	}
	g.active.Store(true)
	if numWorkers > 0 {
		d.workerSet = NewTriggerableThreadSet(AudioPriority, numWorkers, func(index int) {
			if n := d.stack.pop(); n != nil {
				d.runNodeIteration(n)
			}
		})
		d.workerSet.Start()
	}
	return d
}

// Close stops every background worker and releases the graph for
// connection management again. RunBlock must not be called concurrently
// with or after Close.
func (d *BlockDriver) Close() {
	d.sem.Close()
	if d.workerSet != nil {
		d.workerSet.Join()
	}
	d.graph.active.Store(false)
}

// tryPush enqueues n if it is not already queued (the queued flag is the
// dedupe: a node notified by two upstreams in the same instant is only
// pushed once), waking both the calling thread and the worker set so
// either may claim it.
func (d *BlockDriver) tryPush(n *Node) {
	if n.queued.CompareAndSwap(false, true) {
		d.stack.push(n)
		d.sem.Signal(1)
		if d.workerSet != nil {
			d.workerSet.Signal(1)
		}
	}
}

// requeueIfDue re-enqueues n once it still owes the block more work. Called
// both right after a node's own iteration (when it produced no output
// anyone needs to wait on) and from Node.release (when the last dependent
// finally consumed n's current frame).
func (d *BlockDriver) requeueIfDue(n *Node) {
	if n.vt.Before(n.blockEnd) {
		d.tryPush(n)
	}
}

// markDoneIfNeeded decrements the outstanding-node counter the first time n
// reaches blockEnd, waking a caller parked in RunBlock once every node has.
func (d *BlockDriver) markDoneIfNeeded(n *Node) {
	if n.blockDoneMarked || n.vt.Before(n.blockEnd) {
		return
	}
	n.blockDoneMarked = true
	if d.remaining.Add(-1) == 0 {
		d.sem.Signal(1)
	}
}

// notifyDependents re-evaluates every output-dependent's readiness now that
// n has advanced, pushing any that have become ready (§4.7's
// dependencyNotify, expressed as a recheck rather than a plain decrement —
// see Node.depsSatisfied).
func (d *BlockDriver) notifyDependents(n *Node) {
	for _, dep := range n.outputDeps {
		if dep.vt.Before(dep.blockEnd) && dep.depsSatisfied() {
			d.tryPush(dep)
		}
	}
}

// runNodeIteration executes exactly one step of n's timing state machine
// (§4.6): an Update pass, then either Schedule (scheduler kind) or the
// processor/output min-FT/min-VT rule, followed by dependent notification
// and, for a node with no input dependencies whose frame nobody is waiting
// on, an immediate self-requeue.
func (d *BlockDriver) runNodeIteration(n *Node) {
	n.queued.Store(false)
	if n.vt.GreaterEqual(n.blockEnd) {
		d.markDoneIfNeeded(n)
		return
	}
	if u, ok := n.impl.(Updater); ok {
		u.Update(n)
	}
	switch n.kind {
	case KindScheduler:
		d.stepScheduler(n)
	default:
		d.stepProcessor(n)
	}
	n.epoch++
	d.markDoneIfNeeded(n)
	d.notifyDependents(n)
	// A node with real input dependencies must never drive itself: its next
	// iteration has to wait for notifyDependents to see one of those
	// upstreams actually advance, or it would busy-loop reprocessing the
	// same unchanged frame (breaking invariant 2). Self-requeue on a drained
	// M only applies to nodes nobody else can wake — a scheduler or source
	// with no inputDeps, which must keep ticking under its own power.
	if n.memoryCount.Load() == 0 && len(n.inputDeps) == 0 {
		d.requeueIfDue(n)
	}
}

// stepProcessor runs one iteration of the processor/output-kind timing
// rule: FT is the minimum over triggering connected inputs' upstream FT,
// VT is the minimum over every connected input's upstream VT, and Process
// fires iff some triggering input's upstream FT equals the new FT (§4.6c).
// A node with no connected triggering input (a pure source, or one driven
// only by fixed/disconnected inputs) fires exactly once per block, at
// blockStart.
func (d *BlockDriver) stepProcessor(n *Node) {
	vt := n.blockEnd
	ft := n.blockEnd
	anyTrigger := false
	for i := range n.inputs {
		in := &n.inputs[i]
		if in.upstream == nil {
			continue
		}
		vt = Min(vt, in.upstream.vt)
		if in.trigger {
			anyTrigger = true
			ft = Min(ft, in.upstream.ft)
		}
	}

	if !anyTrigger {
		if n.firedOnce {
			n.vt = n.blockEnd
			return
		}
		ft = n.blockStart
	}

	n.ft = ft
	n.vt = vt

	fire := !anyTrigger
	if anyTrigger {
		for i := range n.inputs {
			in := &n.inputs[i]
			if in.upstream != nil && in.trigger && in.upstream.ft.Equal(ft) {
				fire = true
				break
			}
		}
	}
	if fire {
		n.firedOnce = true
		if p, ok := n.impl.(ProcessHook); ok {
			p.Process(n)
		}
	}

	n.releaseConsumedInputs()
}

// stepScheduler runs one iteration of the scheduler-kind timing rule: call
// Schedule, advance VT by the reported time, and promote VT_old to the new
// FT when a frame boundary was reported (§4.6b). A scheduler with no
// ScheduleHook is treated as already finished.
func (d *BlockDriver) stepScheduler(n *Node) {
	hook, ok := n.impl.(ScheduleHook)
	if !ok {
		n.vt = n.blockEnd
		return
	}
	info := hook.Schedule(n, n.pendingNewFrame, n.terminal)
	oldVT := n.vt
	n.vt = oldVT.Add(info.TimeAdvance)
	if info.NewFrame {
		n.ft = oldVT
	}
	n.pendingNewFrame = info.NewFrame
	if info.OutputDone {
		n.terminal = true
	}
	n.releaseConsumedInputs()
}

// releaseConsumedInputs releases each connected input's upstream frame the
// first time this node observes it (tracked per-input by lastConsumedFT),
// so a slow-changing fan-in (e.g. a fixed/constant source read many times
// across a fast-changing sibling's frames) is only released once per
// logical frame rather than once per iteration.
func (n *Node) releaseConsumedInputs() {
	for i := range n.inputs {
		in := &n.inputs[i]
		if in.upstream == nil {
			continue
		}
		if !in.everConsumed || !in.lastConsumedFT.Equal(in.upstream.ft) {
			in.everConsumed = true
			in.lastConsumedFT = in.upstream.ft
			in.upstream.release()
		}
	}
}

// RunBlock advances the graph through exactly one block of vecSize
// samples. ins/outs are passed through to every node implementing
// AudioBlockHook that requires audio notification (§4.6); a node not
// touching raw audio never sees them.
func (d *BlockDriver) RunBlock(ins, outs [][]float64, vecSize int) {
	blockStart := d.currentBlockEnd
	blockEnd := blockStart.Add(FromSamples(int64(vecSize)))
	d.currentBlockEnd = blockEnd

	for _, n := range d.graph.nodes {
		n.beginBlock(blockStart, blockEnd)
	}

	d.remaining.Store(int64(len(d.graph.nodes)))

	// Prime every node that needs to see the raw audio block before the
	// ready-queue drain starts (§4.6). A non-scheduler audio node (a plain
	// host-IO adapter with no internal timing of its own) is considered
	// fully caught up to blockEnd the moment it has seen the block: it
	// never needs a ready-queue turn. A scheduler seeing audio still goes
	// through the normal timing state machine below.
	for _, n := range d.graph.nodes {
		if !n.RequiresAudioNotification() {
			continue
		}
		if hook, ok := n.impl.(AudioBlockHook); ok {
			hook.BlockProcess(n, ins, outs, vecSize)
		}
		// Only a pure source adapter (no ordinary inputs of its own) can
		// be considered fully caught up the moment it has seen the block;
		// a node with real input dependencies (e.g. a host-audio-output
		// sink) still has to go through the normal timing rule below.
		if n.kind != KindScheduler && len(n.inputs) == 0 {
			n.ft = blockStart
			n.vt = blockEnd
			n.epoch = 1
			d.markDoneIfNeeded(n)
		}
	}

	for _, n := range d.graph.nodes {
		if n.terminal {
			d.markDoneIfNeeded(n)
		}
	}

	seeded := 0
	for _, n := range d.graph.nodes {
		if n.vt.Before(n.blockEnd) && n.depsSatisfied() {
			if n.queued.CompareAndSwap(false, true) {
				d.stack.push(n)
				seeded++
			}
		}
	}
	if seeded > 0 {
		d.sem.Signal(int64(seeded))
		if d.workerSet != nil {
			d.workerSet.Signal(seeded)
		}
	}

	for d.remaining.Load() > 0 {
		if !d.sem.Wait() {
			return
		}
		if n := d.stack.pop(); n != nil {
			d.runNodeIteration(n)
		}
	}
}
