package operators

import "github.com/Pezz89/FrameLib"

// CumSum emits the running sample-wise cumulative sum of its trigger
// input, carrying the running total across frames (and across blocks,
// until ObjectReset).
type CumSum struct {
	total float64
}

// NewCumSum registers a cumulative-sum processor node.
func NewCumSum(g *framelib.Graph) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, &CumSum{}, 1, 1, 0, 0)
}

// Process implements framelib.ProcessHook.
func (c *CumSum) Process(n *framelib.Node) {
	in := n.Input(0)
	n.RequestOutputSize(0, len(in))
	if !n.AllocateOutputs() {
		return
	}
	out := n.Output(0)
	for i, v := range in {
		c.total += v
		out[i] = c.total
	}
}

// ObjectReset implements framelib.Resetter.
func (c *CumSum) ObjectReset() { c.total = 0 }
