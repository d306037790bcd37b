package operators

import (
	"sort"

	"github.com/Pezz89/FrameLib"
)

// MedianFilter runs a sliding-window median over its trigger input's
// concatenated sample stream (the window spans frame boundaries, so a
// short last frame of one block still sees history from the previous
// one).
type MedianFilter struct {
	window []float64
	pos    int
	filled int
	scratch []float64
}

// NewMedianFilterImpl builds the bare behavior, for callers (e.g. a patch
// factory) that add it to a graph themselves.
func NewMedianFilterImpl(windowLen int) *MedianFilter {
	if windowLen < 1 {
		windowLen = 1
	}
	return &MedianFilter{window: make([]float64, windowLen), scratch: make([]float64, windowLen)}
}

// NewMedianFilter registers a median-filter node with the given window
// length (clamped to at least 1).
func NewMedianFilter(g *framelib.Graph, windowLen int) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, NewMedianFilterImpl(windowLen), 1, 1, 0, 0)
}

// Process implements framelib.ProcessHook.
func (m *MedianFilter) Process(n *framelib.Node) {
	in := n.Input(0)
	n.RequestOutputSize(0, len(in))
	if !n.AllocateOutputs() {
		return
	}
	out := n.Output(0)
	for i, v := range in {
		m.window[m.pos] = v
		m.pos = (m.pos + 1) % len(m.window)
		if m.filled < len(m.window) {
			m.filled++
		}
		out[i] = m.median()
	}
}

func (m *MedianFilter) median() float64 {
	n := m.filled
	copy(m.scratch[:n], m.window[:n])
	s := m.scratch[:n]
	sort.Float64s(s)
	mid := n / 2
	if n%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// ObjectReset implements framelib.Resetter.
func (m *MedianFilter) ObjectReset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.pos = 0
	m.filled = 0
}
