package framelib

import "sync/atomic"

// Kind is the node's role in the graph, collapsing the source's deep
// inheritance (DSP -> Processor/Scheduler/AudioInput/AudioOutput) into one
// type with a tag, per §9's redesign note.
type Kind int

const (
	KindProcessor Kind = iota
	KindScheduler
	KindOutput
)

// OutputMode selects what an output's current frame contains.
type OutputMode int

const (
	OutputNormal OutputMode = iota
	OutputTagged
)

// SchedulerInfo is what a scheduler node's Schedule hook reports back each
// time it is invoked.
type SchedulerInfo struct {
	TimeAdvance Time
	NewFrame    bool
	OutputDone  bool
}

// Resetter is the optional objectReset hook: called on reset, zero
// internal state.
type Resetter interface {
	ObjectReset()
}

// Updater is the optional pre-pass hook; may call n.UpdateTrigger to
// reclassify an input (the change persists until reclassified again).
type Updater interface {
	Update(n *Node)
}

// ProcessHook is mandatory for processor and output-audio kinds: produce
// one output frame from currently valid input frames.
type ProcessHook interface {
	Process(n *Node)
}

// ScheduleHook is mandatory for scheduler kind nodes.
type ScheduleHook interface {
	Schedule(n *Node, newFrame, noOutput bool) SchedulerInfo
}

// AudioBlockHook is implemented by nodes that handle raw audio at the
// block level (audio inputs/outputs and, optionally, schedulers wanting to
// see the host buffers directly).
type AudioBlockHook interface {
	BlockProcess(n *Node, ins, outs [][]float64, vecSize int)
}

type input struct {
	upstream    *Node
	upstreamOut int
	fixed       []float64
	update      bool
	trigger     bool
	switchable  bool

	everConsumed   bool
	lastConsumedFT Time
}

type output struct {
	mode          OutputMode
	data          []float64
	tagged        *ParamFrame
	requestedSize int
	currentSize   int
}

// Node is the single runtime type standing in for the source's
// Processor/Scheduler/AudioInput/AudioOutput hierarchy: one struct, a Kind
// tag, and a small set of optional behaviors satisfied by impl.
type Node struct {
	kind Kind
	impl any

	allocator    Allocator
	samplingRate float64

	inputs       []input
	outputs      []output
	numAudioIns  int
	numAudioOuts int

	ft, vt Time
	blockStart, blockEnd Time

	inputDeps  []*Node
	outputDeps []*Node

	connLock SpinLock

	memoryCount atomic.Int64
	memBlock    []float64

	pendingNewFrame bool
	terminal        bool
	firedOnce       bool
	epoch           int
	blockDoneMarked bool

	queued   atomic.Bool
	nextReady *Node

	driver *BlockDriver
}

// NewNode constructs a detached node (not yet part of any Graph). Prefer
// Graph.AddNode, which wires the allocator and sampling rate and tracks the
// node for connection bookkeeping.
func NewNode(kind Kind, impl any, nIns, nOuts, nAudioIns, nAudioOuts int, allocator Allocator) *Node {
	n := &Node{
		kind:         kind,
		impl:         impl,
		allocator:    allocator,
		samplingRate: DefaultSamplingRate,
		inputs:       make([]input, nIns),
		outputs:      make([]output, nOuts),
		numAudioIns:  nAudioIns,
		numAudioOuts: nAudioOuts,
		ft:           Zero,
		vt:           Zero,
		blockStart:   Zero,
		blockEnd:     Zero,
	}
	for i := range n.inputs {
		n.inputs[i].trigger = true
	}
	return n
}

// Kind reports the node's role.
func (n *Node) Kind() Kind { return n.kind }

// SamplingRate returns the sampling rate last set via SetSamplingRate.
func (n *Node) SamplingRate() float64 { return n.samplingRate }

// SetSamplingRate updates the node's sampling rate; a non-positive value
// falls back to DefaultSamplingRate (§4.5).
func (n *Node) SetSamplingRate(sr float64) {
	if sr <= 0 {
		sr = DefaultSamplingRate
	}
	n.samplingRate = sr
}

// NumInputs and NumOutputs report the static IO arity.
func (n *Node) NumInputs() int  { return len(n.inputs) }
func (n *Node) NumOutputs() int { return len(n.outputs) }

// NumAudioIns and NumAudioOuts report the audio-channel arity.
func (n *Node) NumAudioIns() int  { return n.numAudioIns }
func (n *Node) NumAudioOuts() int { return n.numAudioOuts }

// RequiresAudioNotification reports whether the block driver must prime
// this node with the raw audio block before draining the ready queue
// (§4.6: scheduler kind, or any node with audio inputs or audio outputs).
func (n *Node) RequiresAudioNotification() bool {
	return n.kind == KindScheduler || n.numAudioIns > 0 || n.numAudioOuts > 0
}

// InputMode sets an input's update/trigger/switchable flags. Call only
// from a node constructor (unsafe elsewhere, mirroring the source's own
// warning on FrameLib_DSP::inputMode).
func (n *Node) InputMode(idx int, update, trigger, switchable bool) {
	in := &n.inputs[idx]
	in.update, in.trigger, in.switchable = update, trigger, switchable
}

// SetOutputMode sets an output's mode. Call only from a node constructor.
func (n *Node) SetOutputMode(idx int, mode OutputMode) {
	n.outputs[idx].mode = mode
}

// SetFixedInput attaches a constant-source buffer to input idx. A
// disconnected input with a fixed buffer behaves as a constant source
// (§3).
func (n *Node) SetFixedInput(idx int, data []float64) error {
	if idx < 0 || idx >= len(n.inputs) {
		return newConfigError("SetFixedInput", "input index %d out of range [0,%d)", idx, len(n.inputs))
	}
	n.inputs[idx].fixed = data
	return nil
}

// UpdateTrigger reclassifies input idx as a trigger (or not). The new
// classification is not reverted after the frame: it stays in force for
// later frames until UpdateTrigger or InputMode changes it again. Only valid
// from within Update.
func (n *Node) UpdateTrigger(idx int, trigger bool) {
	n.inputs[idx].trigger = trigger
}

// IsTrigger reports whether input idx triggered the current frame: it is
// flagged as a trigger, has an upstream, and that upstream's frame time
// equals this node's own current frame time.
func (n *Node) IsTrigger(idx int) bool {
	in := &n.inputs[idx]
	return in.trigger && in.upstream != nil && in.upstream.ft.Equal(n.ft)
}

// FrameTime, ValidTime, BlockStartTime and BlockEndTime expose the node's
// current timing state.
func (n *Node) FrameTime() Time      { return n.ft }
func (n *Node) ValidTime() Time      { return n.vt }
func (n *Node) BlockStartTime() Time { return n.blockStart }
func (n *Node) BlockEndTime() Time   { return n.blockEnd }

// InputFrameTime and InputValidTime report an upstream's current timing,
// or zero if the input has no upstream connected.
func (n *Node) InputFrameTime(idx int) Time {
	if u := n.inputs[idx].upstream; u != nil {
		return u.ft
	}
	return Zero
}

func (n *Node) InputValidTime(idx int) Time {
	if u := n.inputs[idx].upstream; u != nil {
		return u.vt
	}
	return Zero
}

// RequestOutputSize records intent for the next AllocateOutputs call. size
// is a count of float64 elements, not bytes.
func (n *Node) RequestOutputSize(idx int, size int) {
	n.outputs[idx].requestedSize = size
}

// AllocateOutputs performs one allocation sized to the sum of every
// normal-mode output's requested size, slicing individual output pointers
// as offsets into that block (§4.6). Tagged outputs are allocated
// separately via SetOutputParam. Returns false on allocator failure; the
// caller must then treat every output as zero-sized and skip its own
// process/schedule body for this iteration (§7).
func (n *Node) AllocateOutputs() bool {
	n.freeOutputMemory()

	total := 0
	for i := range n.outputs {
		if n.outputs[i].mode == OutputNormal {
			total += n.outputs[i].requestedSize
		}
	}

	if total > 0 {
		buf := n.allocator.Alloc(total)
		if buf == nil {
			for i := range n.outputs {
				n.outputs[i].currentSize = 0
				n.outputs[i].data = nil
			}
			return false
		}
		n.memBlock = buf
		offset := 0
		for i := range n.outputs {
			if n.outputs[i].mode != OutputNormal {
				continue
			}
			size := n.outputs[i].requestedSize
			n.outputs[i].data = buf[offset : offset+size]
			n.outputs[i].currentSize = size
			offset += size
		}
	}

	n.memoryCount.Store(int64(len(n.outputDeps)))
	return true
}

// Output returns the writable backing slice for output idx, valid after a
// successful AllocateOutputs.
func (n *Node) Output(idx int) []float64 { return n.outputs[idx].data }

// SetOutputParam installs a tagged parameter frame as output idx's current
// payload. Tagged outputs share the same M-based lifecycle as normal ones
// even though they don't live in the shared numeric allocation.
func (n *Node) SetOutputParam(idx int, frame *ParamFrame) {
	n.outputs[idx].tagged = frame
	if n.memoryCount.Load() == 0 {
		n.memoryCount.Store(int64(len(n.outputDeps)))
	}
}

// OutputParam returns output idx's tagged payload, or nil.
func (n *Node) OutputParam(idx int) *ParamFrame { return n.outputs[idx].tagged }

// Input returns input idx's current data: the upstream's current output
// (if connected), the fixed buffer (if disconnected but fixed), or nil.
func (n *Node) Input(idx int) []float64 {
	in := &n.inputs[idx]
	if in.upstream != nil {
		return in.upstream.outputs[in.upstreamOut].data
	}
	return in.fixed
}

// InputParam returns input idx's current tagged payload, if any.
func (n *Node) InputParam(idx int) *ParamFrame {
	in := &n.inputs[idx]
	if in.upstream != nil {
		return in.upstream.outputs[in.upstreamOut].tagged
	}
	return nil
}

func (n *Node) freeOutputMemory() {
	if n.memBlock != nil {
		n.allocator.Free(n.memBlock)
		n.memBlock = nil
	}
	for i := range n.outputs {
		n.outputs[i].data = nil
		n.outputs[i].tagged = nil
		n.outputs[i].currentSize = 0
	}
}

// release decrements the memory reference count, freeing the output block
// once every downstream dependent has consumed this frame (§4.7), and
// wakes the driver to let this node take another turn if one is owed.
func (n *Node) release() {
	if n.memoryCount.Add(-1) == 0 {
		n.freeOutputMemory()
		if n.driver != nil {
			n.driver.requeueIfDue(n)
		}
	}
}

// objectReset invokes the impl's optional ObjectReset hook.
func (n *Node) objectReset() {
	if r, ok := n.impl.(Resetter); ok {
		r.ObjectReset()
	}
}

// Reset zeroes FT, VT, IT (input-consumption bookkeeping), D and M, calls
// ObjectReset, and frees any held output memory (§4.6). Idempotent: a
// second call is equivalent to the first (§8 invariant 5).
func (n *Node) Reset() {
	n.ft = Zero
	n.vt = Zero
	n.blockStart = Zero
	n.blockEnd = Zero
	n.memoryCount.Store(0)
	n.objectReset()
	n.freeOutputMemory()
	n.pendingNewFrame = false
	n.terminal = false
	n.firedOnce = false
	n.epoch = 0
	n.queued.Store(false)
	n.nextReady = nil
	for i := range n.inputs {
		n.inputs[i].everConsumed = false
		n.inputs[i].lastConsumedFT = Zero
	}
}

// beginBlock resets the node's per-block bookkeeping and records the new
// block's [blockStart, blockEnd) range. A permanently terminal node (its
// Schedule hook reported OutputDone) is immediately considered caught up to
// blockEnd, rather than taking another turn it will never need.
func (n *Node) beginBlock(blockStart, blockEnd Time) {
	n.blockStart = blockStart
	n.blockEnd = blockEnd
	n.firedOnce = false
	n.epoch = 0
	n.blockDoneMarked = false
	if n.terminal {
		n.vt = blockEnd
		n.epoch = 1
	}
}

// depsSatisfied implements the §3 invariant "D == 0 iff all input
// dependencies have VT >= VT_self", using the node's own current VT as the
// live threshold rather than the coarser per-block snapshot in §4.7 (see
// DESIGN.md for why: it is what makes multi-frame-per-block scheduling,
// e.g. §8 scenario S2, observe every intermediate upstream frame instead
// of only the last one). A dependency that has not yet taken its own first
// step this block (epoch == 0) never satisfies this, even if its leftover
// VT from the previous block numerically compares >=, so that downstream
// never reads stale data left over from the prior block.
func (n *Node) depsSatisfied() bool {
	for _, u := range n.inputDeps {
		if u.epoch == 0 || u.vt.Before(n.vt) {
			return false
		}
	}
	return true
}
