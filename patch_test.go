package framelib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRegistry() Registry {
	r := make(Registry)
	r.Register("const", func(params map[string]any, alloc Allocator) (Kind, any, int, int, int, int, error) {
		return KindProcessor, constantImpl([]float64{1, 2}), 0, 1, 0, 0, nil
	})
	r.Register("sink", func(params map[string]any, alloc Allocator) (Kind, any, int, int, int, int, error) {
		return KindProcessor, passthroughImpl(), 1, 1, 0, 0, nil
	})
	return r
}

func Test_ParsePatchRejectsInvalidYAML(t *testing.T) {
	_, err := ParsePatch([]byte("nodes: [this is not: valid: yaml"))
	assert.Error(t, err)
}

func Test_PatchBuildWiresNodesAndConnections(t *testing.T) {
	doc := []byte(`
sampling_rate: 48000
nodes:
  - name: src
    type: const
  - name: dst
    type: sink
connections:
  - from_node: src
    from_output: 0
    to_node: dst
    to_input: 0
`)
	patch, err := ParsePatch(doc)
	if !assert.NoError(t, err) {
		return
	}

	g := NewGraph(NewPoolAllocator())
	nodes, err := patch.Build(g, testRegistry())
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, 48000.0, g.Nodes()[0].SamplingRate())
	assert.True(t, nodes["dst"].IsConnected(0))

	driver := NewBlockDriver(g, 0)
	driver.RunBlock(nil, nil, 16)
	driver.Close()

	assert.Equal(t, []float64{1, 2}, nodes["dst"].Output(0))
}

func Test_PatchBuildRejectsUnknownNodeType(t *testing.T) {
	patch := &Patch{Nodes: []PatchNode{{Name: "a", Type: "does-not-exist"}}}
	_, err := patch.Build(NewGraph(NewPoolAllocator()), testRegistry())
	assert.Error(t, err)
}

func Test_PatchBuildRejectsUnknownConnectionEndpoint(t *testing.T) {
	patch := &Patch{
		Nodes: []PatchNode{{Name: "a", Type: "const"}},
		Connections: []PatchConnection{
			{FromNode: "a", FromOutput: 0, ToNode: "ghost", ToInput: 0},
		},
	}
	_, err := patch.Build(NewGraph(NewPoolAllocator()), testRegistry())
	assert.Error(t, err)
}

func Test_PatchBuildPropagatesConnectErrors(t *testing.T) {
	patch := &Patch{
		Nodes: []PatchNode{
			{Name: "a", Type: "const"},
			{Name: "b", Type: "sink"},
		},
		Connections: []PatchConnection{
			{FromNode: "a", FromOutput: 0, ToNode: "b", ToInput: 9},
		},
	}
	_, err := patch.Build(NewGraph(NewPoolAllocator()), testRegistry())
	assert.Error(t, err)
}
