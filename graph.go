package framelib

import "sync/atomic"

// Graph owns the node set and the connections between them (C7). It is the
// thing a BlockDriver drains; connection management on a Graph is forbidden
// while a driver built on it is active (§4.6).
type Graph struct {
	allocator    Allocator
	samplingRate float64
	nodes        []*Node
	active       atomic.Bool
}

// NewGraph constructs an empty graph using allocator for every node added
// to it.
func NewGraph(allocator Allocator) *Graph {
	return &Graph{allocator: allocator, samplingRate: DefaultSamplingRate}
}

// SetSamplingRate updates the sampling rate used by nodes added from this
// point on, and every existing node (§4.5).
func (g *Graph) SetSamplingRate(sr float64) {
	if sr <= 0 {
		sr = DefaultSamplingRate
	}
	g.samplingRate = sr
	for _, n := range g.nodes {
		n.SetSamplingRate(sr)
	}
}

// AddNode constructs a node and tracks it as part of this graph.
func (g *Graph) AddNode(kind Kind, impl any, nIns, nOuts, nAudioIns, nAudioOuts int) *Node {
	n := NewNode(kind, impl, nIns, nOuts, nAudioIns, nAudioOuts, g.allocator)
	n.SetSamplingRate(g.samplingRate)
	g.nodes = append(g.nodes, n)
	return n
}

// Nodes returns every node tracked by this graph, in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Allocator returns the allocator new nodes are constructed with.
func (g *Graph) Allocator() Allocator { return g.allocator }

// Connect wires upstream's output outIdx to downstream's input inIdx. It is
// forbidden while a BlockDriver built on this graph is active.
func (g *Graph) Connect(upstream *Node, outIdx int, downstream *Node, inIdx int) error {
	if g.active.Load() {
		return ErrDriverActive
	}
	if outIdx < 0 || outIdx >= len(upstream.outputs) {
		return newConfigError("Connect", "output index %d out of range [0,%d)", outIdx, len(upstream.outputs))
	}
	if inIdx < 0 || inIdx >= len(downstream.inputs) {
		return newConfigError("Connect", "input index %d out of range [0,%d)", inIdx, len(downstream.inputs))
	}
	if upstream == downstream {
		return newConfigError("Connect", "a node cannot connect to itself")
	}
	if reachable(downstream, upstream) {
		return newConfigError("Connect", "connecting would create a cycle: downstream is already an upstream of this node")
	}

	holder := Hold(&downstream.connLock)
	g.disconnectLocked(downstream, inIdx)
	downstream.inputs[inIdx].upstream = upstream
	downstream.inputs[inIdx].upstreamOut = outIdx
	holder.Destroy()

	holder = Hold(&upstream.connLock)
	upstream.outputDeps = append(upstream.outputDeps, downstream)
	holder.Destroy()

	holder = Hold(&downstream.connLock)
	downstream.inputDeps = append(downstream.inputDeps, upstream)
	holder.Destroy()
	return nil
}

// Disconnect clears downstream's input inIdx, if connected.
func (g *Graph) Disconnect(downstream *Node, inIdx int) error {
	if g.active.Load() {
		return ErrDriverActive
	}
	if inIdx < 0 || inIdx >= len(downstream.inputs) {
		return newConfigError("Disconnect", "input index %d out of range [0,%d)", inIdx, len(downstream.inputs))
	}
	holder := Hold(&downstream.connLock)
	g.disconnectLocked(downstream, inIdx)
	holder.Destroy()
	return nil
}

// disconnectLocked removes input inIdx's upstream connection. Caller must
// hold downstream.connLock.
func (g *Graph) disconnectLocked(downstream *Node, inIdx int) {
	in := &downstream.inputs[inIdx]
	upstream := in.upstream
	if upstream == nil {
		return
	}
	in.upstream = nil
	in.upstreamOut = 0

	removeNode(&downstream.inputDeps, upstream)

	uHolder := Hold(&upstream.connLock)
	removeNode(&upstream.outputDeps, downstream)
	uHolder.Destroy()
}

// ClearConnections disconnects every input of n.
func (g *Graph) ClearConnections(n *Node) error {
	if g.active.Load() {
		return ErrDriverActive
	}
	for i := range n.inputs {
		holder := Hold(&n.connLock)
		g.disconnectLocked(n, i)
		holder.Destroy()
	}
	return nil
}

// IsConnected reports whether input inIdx has an upstream.
func (n *Node) IsConnected(inIdx int) bool {
	return n.inputs[inIdx].upstream != nil
}

// reachable reports whether target can be reached from start by following
// existing outputDeps edges — i.e. whether a new start -> target connection
// would close a cycle. A node with no outputDeps, like a freshly added leaf,
// can never reach anything (§7: cycles are a Configuration error, reported
// at connection time rather than deadlocking the ready-queue drain later).
func reachable(start, target *Node) bool {
	if start == target {
		return true
	}
	seen := make(map[*Node]bool)
	stack := []*Node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, dep := range n.outputDeps {
			if dep == target {
				return true
			}
			stack = append(stack, dep)
		}
	}
	return false
}

// removeNode deletes the first occurrence of target from list, preserving
// the order of the rest (a linear scan, matching a vector-erase of one
// iterator: connection fan-out is small, never a hot path).
func removeNode(list *[]*Node, target *Node) {
	s := *list
	for i, n := range s {
		if n == target {
			*list = append(s[:i], s[i+1:]...)
			return
		}
	}
}

// Reset resets every node in the graph (§4.6 Reset, applied graph-wide) and
// rewinds the block clock of the driver the nodes are attached to, so the
// next RunBlock starts again at time zero.
func (g *Graph) Reset() {
	for _, n := range g.nodes {
		n.Reset()
		if n.driver != nil {
			n.driver.currentBlockEnd = Zero
		}
	}
}
