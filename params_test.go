package framelib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParamFrameGetFindsMixedEntries(t *testing.T) {
	f := &ParamFrame{Entries: []ParamEntry{
		{Tag: "gain", Type: ParamVector, Vector: []float64{0.5, 0.25}},
		{Tag: "label", Type: ParamString, String: "lead"},
	}}

	decoded, err := DecodeParamFrame(f.Encode())
	if !assert.NoError(t, err) {
		return
	}

	gain, ok := decoded.Get("gain")
	assert.True(t, ok)
	assert.Equal(t, []float64{0.5, 0.25}, gain.Vector)

	label, ok := decoded.Get("label")
	assert.True(t, ok)
	assert.Equal(t, "lead", label.String)

	_, ok = decoded.Get("missing")
	assert.False(t, ok)
}

func Test_DecodeParamFrameRejectsTruncatedHeader(t *testing.T) {
	_, err := DecodeParamFrame([]byte{1, 2})
	assert.Error(t, err)
}

func Test_DecodeParamFrameRejectsTruncatedEntry(t *testing.T) {
	full := (&ParamFrame{Entries: []ParamEntry{
		{Tag: "x", Type: ParamVector, Vector: []float64{1, 2, 3}},
	}}).Encode()

	// Cut the blob off partway through the vector payload: the entry count
	// and tag survive but the vector length claims more than is present.
	_, err := DecodeParamFrame(full[:len(full)-4])
	assert.Error(t, err)
}

func Test_DecodeParamFrameRejectsUnknownEntryType(t *testing.T) {
	full := (&ParamFrame{Entries: []ParamEntry{
		{Tag: "x", Type: ParamVector, Vector: []float64{1}},
	}}).Encode()

	// The type tag sits right after the 4-byte count and the 4-byte tag
	// length plus 1-byte tag; corrupt it to a value neither ParamVector
	// (0) nor ParamString (1) encodes.
	corrupt := append([]byte(nil), full...)
	typeOffset := 4 + 4 + 1
	corrupt[typeOffset] = 7

	_, err := DecodeParamFrame(corrupt)
	assert.Error(t, err)
}

func Test_ParamFrameEmptyRoundTrips(t *testing.T) {
	f := &ParamFrame{}
	decoded, err := DecodeParamFrame(f.Encode())
	if !assert.NoError(t, err) {
		return
	}
	assert.Empty(t, decoded.Entries)
}
