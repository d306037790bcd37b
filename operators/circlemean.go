package operators

import (
	"math"

	"github.com/Pezz89/FrameLib"
)

// CircleMean computes the circular (mean-of-angles) mean of its trigger
// input's frame, treated as radians: mean = atan2(mean(sin), mean(cos)).
// Like YIN, this is one concrete example operator, not a canonicalization
// of the source's several diverging circular-statistics drafts.
type CircleMean struct{}

// NewCircleMean registers a circular-mean processor node.
func NewCircleMean(g *framelib.Graph) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, &CircleMean{}, 1, 1, 0, 0)
}

// Process implements framelib.ProcessHook. Output is a one-element
// vector: the mean angle in radians, in (-pi, pi].
func (c *CircleMean) Process(n *framelib.Node) {
	in := n.Input(0)
	n.RequestOutputSize(0, 1)
	if !n.AllocateOutputs() {
		return
	}
	if len(in) == 0 {
		n.Output(0)[0] = 0
		return
	}
	var sinSum, cosSum float64
	for _, angle := range in {
		sinSum += math.Sin(angle)
		cosSum += math.Cos(angle)
	}
	n.Output(0)[0] = math.Atan2(sinSum/float64(len(in)), cosSum/float64(len(in)))
}
