package operators

import "github.com/Pezz89/FrameLib"

// HostInput exposes one channel of the host's raw audio input block as a
// normal output frame, once per block. It declares no ordinary inputs and
// implements framelib.AudioBlockHook instead of framelib.ProcessHook: the
// block driver calls BlockProcess directly during audio priming, before
// the ready-queue drain even starts.
type HostInput struct {
	channel int
}

// NewHostInputImpl builds the bare behavior, for callers (e.g. a patch
// factory) that add it to a graph themselves.
func NewHostInputImpl(ch int) *HostInput {
	return &HostInput{channel: ch}
}

// NewHostInput registers a host-audio-input adapter node reading channel
// ch from the driver's ins argument.
func NewHostInput(g *framelib.Graph, ch int) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, NewHostInputImpl(ch), 0, 1, 1, 0)
}

// BlockProcess implements framelib.AudioBlockHook.
func (hi *HostInput) BlockProcess(n *framelib.Node, ins, outs [][]float64, vecSize int) {
	if hi.channel >= len(ins) {
		return
	}
	n.RequestOutputSize(0, vecSize)
	if !n.AllocateOutputs() {
		return
	}
	copy(n.Output(0), ins[hi.channel])
}

// HostOutput writes its single trigger input's frame into one channel of
// the host's raw audio output block. It is a KindOutput node: the block
// driver still walks it through the normal processor timing rule (it has
// a real input dependency), but its Process writes straight into outs
// instead of allocating its own output.
type HostOutput struct {
	channel int
	outs    [][]float64
}

// NewHostOutputImpl builds the bare behavior, for callers (e.g. a patch
// factory) that add it to a graph themselves.
func NewHostOutputImpl(ch int) *HostOutput {
	return &HostOutput{channel: ch}
}

// NewHostOutput registers a host-audio-output adapter node writing channel
// ch of the driver's outs argument.
func NewHostOutput(g *framelib.Graph, ch int) *framelib.Node {
	return g.AddNode(framelib.KindOutput, NewHostOutputImpl(ch), 1, 0, 0, 1)
}

// BlockProcess implements framelib.AudioBlockHook: it stashes the outs
// slice for this block so Process (called later, once the node's single
// input actually has data) can write into it.
func (ho *HostOutput) BlockProcess(n *framelib.Node, ins, outs [][]float64, vecSize int) {
	ho.outs = outs
}

// Process implements framelib.ProcessHook: copy the current input frame
// into the stashed host output channel, wrapping a shorter frame to fill
// the block like BinaryOp does for mismatched vector sizes.
func (ho *HostOutput) Process(n *framelib.Node) {
	if ho.channel >= len(ho.outs) {
		return
	}
	in := n.Input(0)
	out := ho.outs[ho.channel]
	for i := range out {
		out[i] = wrappedAt(in, i)
	}
}
