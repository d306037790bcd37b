package operators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	framelib "github.com/Pezz89/FrameLib"
)

func Test_HostInputCopiesSelectedChannel(t *testing.T) {
	g := framelib.NewGraph(framelib.NewPoolAllocator())
	in := NewHostInput(g, 1)

	driver := framelib.NewBlockDriver(g, 0)
	ins := [][]float64{{1, 1, 1}, {9, 8, 7}}
	driver.RunBlock(ins, nil, 3)
	driver.Close()

	assert.Equal(t, []float64{9, 8, 7}, in.Output(0))
}

func Test_HostInputIgnoresOutOfRangeChannel(t *testing.T) {
	g := framelib.NewGraph(framelib.NewPoolAllocator())
	in := NewHostInput(g, 5)

	driver := framelib.NewBlockDriver(g, 0)
	driver.RunBlock([][]float64{{1, 2, 3}}, nil, 3)
	driver.Close()

	assert.Nil(t, in.Output(0))
}

func Test_HostOutputWritesIntoHostBuffer(t *testing.T) {
	g := framelib.NewGraph(framelib.NewPoolAllocator())
	src := NewConstant(g, []float64{1, 2})
	out := NewHostOutput(g, 0)
	if err := g.Connect(src, 0, out, 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	driver := framelib.NewBlockDriver(g, 0)
	outs := [][]float64{make([]float64, 4)}
	driver.RunBlock(nil, outs, 4)
	driver.Close()

	assert.Equal(t, []float64{1, 2, 1, 2}, outs[0], "a shorter frame must wrap to fill the block like BinaryOp")
}

func Test_CircleMeanOfOppositeAnglesWrapsNearZero(t *testing.T) {
	g := framelib.NewGraph(framelib.NewPoolAllocator())
	src := NewConstant(g, []float64{0.1, 2*math.Pi - 0.1})
	cm := NewCircleMean(g)
	if err := g.Connect(src, 0, cm, 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	driver := framelib.NewBlockDriver(g, 0)
	driver.RunBlock(nil, nil, 16)
	driver.Close()

	assert.InDelta(t, 0, cm.Output(0)[0], 1e-9, "angles either side of zero must average to (near) zero, not to their arithmetic mean of pi")
}

func Test_MedianFilterOfThreeSamplesReturnsMiddle(t *testing.T) {
	g := framelib.NewGraph(framelib.NewPoolAllocator())
	src := NewConstant(g, []float64{5, 1, 3})
	mf := NewMedianFilter(g, 3)
	if err := g.Connect(src, 0, mf, 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	driver := framelib.NewBlockDriver(g, 0)
	driver.RunBlock(nil, nil, 16)
	driver.Close()

	assert.Equal(t, []float64{5, 3, 3}, mf.Output(0))
}
