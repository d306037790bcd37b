package framelib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ConnectAndDisconnect(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)

	assert.NoError(t, g.Connect(a, 0, b, 0))
	assert.True(t, b.IsConnected(0))

	assert.NoError(t, g.Disconnect(b, 0))
	assert.False(t, b.IsConnected(0))
}

func Test_ConnectRejectsOutOfRangeIndices(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)

	assert.Error(t, g.Connect(a, 5, b, 0))
	assert.Error(t, g.Connect(a, 0, b, 5))
}

func Test_ConnectRejectsSelfLoop(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)
	assert.Error(t, g.Connect(a, 0, a, 0))
}

func Test_ConnectRejectsDirectCycle(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)

	assert.NoError(t, g.Connect(a, 0, b, 0))
	assert.Error(t, g.Connect(b, 0, a, 0), "b -> a would close a 2-node cycle with a -> b")
	assert.False(t, a.IsConnected(0), "a rejected cyclic connection must not have been committed")
}

func Test_ConnectRejectsLongerCycle(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)
	c := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)

	assert.NoError(t, g.Connect(a, 0, b, 0))
	assert.NoError(t, g.Connect(b, 0, c, 0))
	assert.Error(t, g.Connect(c, 0, a, 0), "c -> a would close a 3-node cycle a -> b -> c -> a")
}

func Test_ConnectAllowsDiamondsWithoutCycles(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)
	c := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)
	d := g.AddNode(KindProcessor, &fnImpl{}, 2, 1, 0, 0)

	assert.NoError(t, g.Connect(a, 0, b, 0))
	assert.NoError(t, g.Connect(a, 0, c, 0))
	assert.NoError(t, g.Connect(b, 0, d, 0))
	assert.NoError(t, g.Connect(c, 0, d, 1), "a diamond shares an ancestor but has no cycle")
}

func Test_ReconnectReplacesPreviousUpstream(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	c := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)

	assert.NoError(t, g.Connect(a, 0, c, 0))
	assert.NoError(t, g.Connect(b, 0, c, 0))

	assert.Equal(t, 1, len(c.inputDeps))
	assert.Equal(t, b, c.inputDeps[0])
	assert.Equal(t, 0, len(a.outputDeps), "a must be dropped as c's upstream once b replaces it")
}

func Test_ClearConnections(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	c := g.AddNode(KindProcessor, &fnImpl{}, 2, 1, 0, 0)

	assert.NoError(t, g.Connect(a, 0, c, 0))
	assert.NoError(t, g.Connect(b, 0, c, 1))
	assert.NoError(t, g.ClearConnections(c))

	assert.False(t, c.IsConnected(0))
	assert.False(t, c.IsConnected(1))
	assert.Empty(t, a.outputDeps)
	assert.Empty(t, b.outputDeps)
}

func Test_ConnectionManagementForbiddenWhileDriverActive(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)

	driver := NewBlockDriver(g, 0)
	defer driver.Close()

	assert.Equal(t, ErrDriverActive, g.Connect(a, 0, b, 0))
	assert.Equal(t, ErrDriverActive, g.Disconnect(b, 0))
	assert.Equal(t, ErrDriverActive, g.ClearConnections(b))
}

func Test_ConnectionManagementAllowedAfterClose(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	b := g.AddNode(KindProcessor, &fnImpl{}, 1, 1, 0, 0)

	driver := NewBlockDriver(g, 0)
	driver.Close()

	assert.NoError(t, g.Connect(a, 0, b, 0))
}

func Test_SetSamplingRatePropagatesToExistingNodes(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	g.SetSamplingRate(48000)
	assert.Equal(t, 48000.0, a.SamplingRate())

	b := g.AddNode(KindProcessor, &fnImpl{}, 0, 1, 0, 0)
	assert.Equal(t, 48000.0, b.SamplingRate())
}

func Test_GraphResetResetsEveryNode(t *testing.T) {
	g := NewGraph(NewPoolAllocator())
	a := g.AddNode(KindProcessor, constantImpl([]float64{1}), 0, 1, 0, 0)

	driver := NewBlockDriver(g, 0)
	driver.RunBlock(nil, nil, 16)
	driver.Close()

	g.Reset()
	assert.True(t, a.FrameTime().Equal(Zero))
	assert.True(t, a.ValidTime().Equal(Zero))
}
