// Package host embeds a framelib BlockDriver in a live portaudio stream: a
// real-time callback pulls one block through the graph on every hardware
// tick. This, and everything under cmd/, is demo-only scaffolding around
// the node runtime (§1 names a host as an external collaborator, not part
// of the core spec).
package host

import (
	"github.com/gordonklaus/portaudio"

	framelib "github.com/Pezz89/FrameLib"
)

// PortaudioHost runs a BlockDriver off a portaudio full-duplex stream.
type PortaudioHost struct {
	driver     *framelib.BlockDriver
	stream     *portaudio.Stream
	inChannels int
	outChannels int
	vecSize    int

	inBufs  [][]float64
	outBufs [][]float64
}

// NewPortaudioHost opens a full-duplex portaudio stream of the given
// channel counts and block size, driving driver once per hardware
// callback. Call Start to begin streaming, Close to release the device.
func NewPortaudioHost(driver *framelib.BlockDriver, inChannels, outChannels, vecSize int) (*PortaudioHost, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	h := &PortaudioHost{
		driver:      driver,
		inChannels:  inChannels,
		outChannels: outChannels,
		vecSize:     vecSize,
	}
	h.inBufs = make([][]float64, inChannels)
	h.outBufs = make([][]float64, outChannels)
	for i := range h.inBufs {
		h.inBufs[i] = make([]float64, vecSize)
	}
	for i := range h.outBufs {
		h.outBufs[i] = make([]float64, vecSize)
	}

	stream, err := portaudio.OpenDefaultStream(inChannels, outChannels, 0, vecSize, h.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	h.stream = stream
	return h, nil
}

// callback is portaudio's realtime audio thread entry point: copy each
// per-channel input buffer into the host's float64 scratch buffers, drive
// exactly one block through the graph, and hand the result back.
func (h *PortaudioHost) callback(in, out [][]float32) {
	for ch := range h.inBufs {
		for i, v := range in[ch] {
			h.inBufs[ch][i] = float64(v)
		}
	}
	h.driver.RunBlock(h.inBufs, h.outBufs, h.vecSize)
	for ch := range h.outBufs {
		for i, v := range h.outBufs[ch] {
			out[ch][i] = float32(v)
		}
	}
}

// Start begins streaming.
func (h *PortaudioHost) Start() error { return h.stream.Start() }

// Close stops the stream and releases portaudio.
func (h *PortaudioHost) Close() error {
	if err := h.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
