package operators

import "github.com/Pezz89/FrameLib"

// SmoothMean is a one-pole exponential moving average over its trigger
// input's samples, running continuously across frames and blocks.
type SmoothMean struct {
	coeff   float64
	current float64
	primed  bool
}

// NewSmoothMeanImpl builds the bare behavior, for callers (e.g. a patch
// factory) that add it to a graph themselves.
func NewSmoothMeanImpl(coeff float64) *SmoothMean {
	if coeff <= 0 || coeff > 1 {
		coeff = 1
	}
	return &SmoothMean{coeff: coeff}
}

// NewSmoothMean registers a smoothing node with the given one-pole
// coefficient in (0, 1]: 1 means no smoothing (pass-through), values
// closer to 0 average over a longer history.
func NewSmoothMean(g *framelib.Graph, coeff float64) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, NewSmoothMeanImpl(coeff), 1, 1, 0, 0)
}

// Process implements framelib.ProcessHook.
func (s *SmoothMean) Process(n *framelib.Node) {
	in := n.Input(0)
	n.RequestOutputSize(0, len(in))
	if !n.AllocateOutputs() {
		return
	}
	out := n.Output(0)
	for i, v := range in {
		if !s.primed {
			s.current = v
			s.primed = true
		} else {
			s.current += s.coeff * (v - s.current)
		}
		out[i] = s.current
	}
}

// ObjectReset implements framelib.Resetter.
func (s *SmoothMean) ObjectReset() {
	s.current = 0
	s.primed = false
}
