package operators

import "github.com/Pezz89/FrameLib"

// Interval is a scheduler that ticks every fixed number of samples,
// emitting a one-element output frame (the tick count) at each boundary
// (§8 scenario S2: a scheduler firing several times within one block).
type Interval struct {
	period framelib.Time
	count  float64
}

// NewIntervalImpl builds the bare behavior, for callers (e.g. a patch
// factory) that add it to a graph themselves.
func NewIntervalImpl(period framelib.Time) *Interval {
	return &Interval{period: period}
}

// NewInterval registers a scheduler node ticking once every periodSamples
// samples.
func NewInterval(g *framelib.Graph, periodSamples int64) *framelib.Node {
	return g.AddNode(framelib.KindScheduler, NewIntervalImpl(framelib.FromSamples(periodSamples)), 0, 1, 0, 0)
}

// Schedule implements framelib.ScheduleHook: every call both closes out the
// previous tick's frame and reports the fixed time advance to the next
// one, so every call is a frame boundary.
func (iv *Interval) Schedule(n *framelib.Node, newFrame, noOutput bool) framelib.SchedulerInfo {
	if !noOutput {
		n.RequestOutputSize(0, 1)
		if n.AllocateOutputs() {
			n.Output(0)[0] = iv.count
		}
	}
	iv.count++
	return framelib.SchedulerInfo{TimeAdvance: iv.period, NewFrame: true}
}

// ObjectReset implements framelib.Resetter.
func (iv *Interval) ObjectReset() { iv.count = 0 }
