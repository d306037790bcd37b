// Package operators provides example leaf DSP nodes exercising the
// framelib node runtime: sources, arithmetic, a scheduler, host IO
// adapters, and a handful of small analysis/smoothing operators. None of
// these are canonical — they are reference implementations for the node
// contract, grounded in the original FrameLib object set, not a
// prescribed operator library.
package operators

import "github.com/Pezz89/FrameLib"

// Constant is a zero-input processor that emits a fixed vector once per
// block (§8 scenario S1). It never declares a triggering input, so the
// node runtime fires it exactly once at blockStart.
type Constant struct {
	value []float64
}

// NewConstantImpl builds the bare behavior, for callers (e.g. a patch
// factory) that add it to a graph themselves.
func NewConstantImpl(value []float64) *Constant {
	return &Constant{value: append([]float64(nil), value...)}
}

// NewConstant registers a Constant node on g emitting a copy of value
// every block.
func NewConstant(g *framelib.Graph, value []float64) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, NewConstantImpl(value), 0, 1, 0, 0)
}

// Process implements framelib.ProcessHook.
func (c *Constant) Process(n *framelib.Node) {
	n.RequestOutputSize(0, len(c.value))
	if !n.AllocateOutputs() {
		return
	}
	copy(n.Output(0), c.value)
}
