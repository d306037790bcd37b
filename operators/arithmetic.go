package operators

import "github.com/Pezz89/FrameLib"

// BinaryOp applies a sample-wise float64 operator to two trigger inputs,
// wrapping the shorter vector's indices to match the longer one rather
// than erroring on a length mismatch (§8 scenario S3: two producers with
// different vector sizes feeding one consumer). Output length equals the
// longer input's length.
type BinaryOp struct {
	op func(a, b float64) float64
}

// NewBinaryOpImpl builds the bare behavior, for callers (e.g. a patch
// factory) that add it to a graph themselves.
func NewBinaryOpImpl(op func(a, b float64) float64) *BinaryOp {
	return &BinaryOp{op: op}
}

// NewBinaryOp registers a two-input, one-output processor node applying op
// sample-wise, both inputs flagged as triggers (either one firing
// re-evaluates the node once its sibling has also produced a frame, per
// the standard min-FT/min-VT rule).
func NewBinaryOp(g *framelib.Graph, op func(a, b float64) float64) *framelib.Node {
	return g.AddNode(framelib.KindProcessor, NewBinaryOpImpl(op), 2, 1, 0, 0)
}

// Add, Mul and Sub are the example operators wired by default; a patch
// factory can supply any other func(a, b float64) float64.
func Add(a, b float64) float64 { return a + b }
func Mul(a, b float64) float64 { return a * b }
func Sub(a, b float64) float64 { return a - b }

// Process implements framelib.ProcessHook.
func (b *BinaryOp) Process(n *framelib.Node) {
	lhs := n.Input(0)
	rhs := n.Input(1)
	size := len(lhs)
	if len(rhs) > size {
		size = len(rhs)
	}
	if size == 0 {
		n.RequestOutputSize(0, 0)
		n.AllocateOutputs()
		return
	}

	n.RequestOutputSize(0, size)
	if !n.AllocateOutputs() {
		return
	}
	out := n.Output(0)
	for i := 0; i < size; i++ {
		out[i] = b.op(wrappedAt(lhs, i), wrappedAt(rhs, i))
	}
}

// wrappedAt indexes v cyclically, so a shorter input vector repeats rather
// than running out of bounds against a longer sibling.
func wrappedAt(v []float64, i int) float64 {
	if len(v) == 0 {
		return 0
	}
	return v[i%len(v)]
}
