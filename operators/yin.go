package operators

import "github.com/Pezz89/FrameLib"

// YIN estimates the fundamental frequency of its trigger input's frame
// using the YIN difference-function method (de Cheveigne & Kawahara,
// 2002). This is one concrete, non-canonical example operator — the
// source's own object set carries several diverging drafts of this
// algorithm; this is not an attempt to reconcile them, just a single
// working implementation of the method.
type YIN struct {
	threshold float64
}

// NewYINImpl builds the bare behavior, for callers (e.g. a patch factory)
// that add it to a graph themselves.
func NewYINImpl(threshold float64) *YIN {
	if threshold <= 0 {
		threshold = 0.15
	}
	return &YIN{threshold: threshold}
}

// NewYIN registers a pitch-estimator node. threshold is the absolute
// threshold on the cumulative mean normalized difference function (0.1-0.15
// is typical); a non-positive value falls back to 0.15.
func NewYIN(g *framelib.Graph, threshold float64) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, NewYINImpl(threshold), 1, 1, 0, 0)
}

// Process implements framelib.ProcessHook. Output is a one-element vector:
// the estimated frequency in Hz, or 0 if no period passed the threshold.
func (y *YIN) Process(n *framelib.Node) {
	in := n.Input(0)
	n.RequestOutputSize(0, 1)
	if !n.AllocateOutputs() {
		return
	}
	n.Output(0)[0] = y.estimate(in, n.SamplingRate())
}

func (y *YIN) estimate(frame []float64, samplingRate float64) float64 {
	size := len(frame) / 2
	if size < 2 {
		return 0
	}

	d := make([]float64, size)
	for tau := 1; tau < size; tau++ {
		var sum float64
		for i := 0; i < size; i++ {
			diff := frame[i] - frame[i+tau]
			sum += diff * diff
		}
		d[tau] = sum
	}

	cmnd := make([]float64, size)
	cmnd[0] = 1
	runningSum := 0.0
	for tau := 1; tau < size; tau++ {
		runningSum += d[tau]
		if runningSum == 0 {
			cmnd[tau] = 1
		} else {
			cmnd[tau] = d[tau] * float64(tau) / runningSum
		}
	}

	tau := -1
	for t := 2; t < size-1; t++ {
		if cmnd[t] < y.threshold {
			for t+1 < size && cmnd[t+1] < cmnd[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau == -1 {
		return 0
	}

	refined := float64(tau)
	if tau > 0 && tau < size-1 {
		x0, x1, x2 := cmnd[tau-1], cmnd[tau], cmnd[tau+1]
		denom := 2 * (2*x1 - x0 - x2)
		if denom != 0 {
			refined = float64(tau) + (x0-x2)/denom
		}
	}
	if refined <= 0 {
		return 0
	}
	if samplingRate <= 0 {
		samplingRate = framelib.DefaultSamplingRate
	}
	return samplingRate / refined
}
