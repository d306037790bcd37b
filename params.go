package framelib

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ParamType tags the payload carried by one ParamEntry.
type ParamType int

const (
	ParamVector ParamType = iota
	ParamString
)

// ParamEntry is one self-describing {tag, type, payload} record in a
// tagged output frame (§6). No bit-level format guarantee is made across
// versions; ParamFrame.Encode/DecodeParamFrame are this version's wire
// format and are free to change between releases.
type ParamEntry struct {
	Tag    string
	Type   ParamType
	Vector []float64
	String string
}

// ParamFrame is the tagged output mode's payload: a self-describing binary
// blob of ParamEntry records, readable back via the parameter API
// (DecodeParamFrame). This is the minimal concrete format behind the
// out-of-scope "parameter serialization layer" §1 names only by interface;
// the node runtime only needs enough of it to give tagged outputs a
// lifecycle identical to normal-mode outputs.
type ParamFrame struct {
	Entries []ParamEntry
}

// Encode serializes the frame to a self-contained byte blob.
func (f *ParamFrame) Encode() []byte {
	buf := make([]byte, 0, 64)
	var scratch [8]byte

	putUint32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:4], v)
		buf = append(buf, scratch[:4]...)
	}
	putUint64 := func(v uint64) {
		binary.LittleEndian.PutUint64(scratch[:8], v)
		buf = append(buf, scratch[:8]...)
	}

	putUint32(uint32(len(f.Entries)))
	for _, e := range f.Entries {
		putUint32(uint32(len(e.Tag)))
		buf = append(buf, e.Tag...)
		putUint32(uint32(e.Type))
		switch e.Type {
		case ParamVector:
			putUint32(uint32(len(e.Vector)))
			for _, v := range e.Vector {
				putUint64(floatBitsFrom(v))
			}
		case ParamString:
			putUint32(uint32(len(e.String)))
			buf = append(buf, e.String...)
		}
	}
	return buf
}

// DecodeParamFrame parses a blob produced by Encode. Returns an error
// (rather than panicking) on truncated or malformed input, since this
// crosses a trust boundary (host-supplied or file-supplied data).
func DecodeParamFrame(data []byte) (*ParamFrame, error) {
	r := &byteReader{data: data}

	n, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("framelib: param frame header: %w", err)
	}
	f := &ParamFrame{Entries: make([]ParamEntry, 0, n)}
	for i := uint32(0); i < n; i++ {
		tagLen, err := r.uint32()
		if err != nil {
			return nil, fmt.Errorf("framelib: param entry %d tag length: %w", i, err)
		}
		tag, err := r.bytes(int(tagLen))
		if err != nil {
			return nil, fmt.Errorf("framelib: param entry %d tag: %w", i, err)
		}
		typ, err := r.uint32()
		if err != nil {
			return nil, fmt.Errorf("framelib: param entry %d type: %w", i, err)
		}
		entry := ParamEntry{Tag: string(tag), Type: ParamType(typ)}
		switch entry.Type {
		case ParamVector:
			vn, err := r.uint32()
			if err != nil {
				return nil, fmt.Errorf("framelib: param entry %d vector length: %w", i, err)
			}
			entry.Vector = make([]float64, vn)
			for j := uint32(0); j < vn; j++ {
				bits, err := r.uint64()
				if err != nil {
					return nil, fmt.Errorf("framelib: param entry %d vector[%d]: %w", i, j, err)
				}
				entry.Vector[j] = floatFromBits(bits)
			}
		case ParamString:
			sn, err := r.uint32()
			if err != nil {
				return nil, fmt.Errorf("framelib: param entry %d string length: %w", i, err)
			}
			sb, err := r.bytes(int(sn))
			if err != nil {
				return nil, fmt.Errorf("framelib: param entry %d string: %w", i, err)
			}
			entry.String = string(sb)
		default:
			return nil, fmt.Errorf("framelib: param entry %d has unknown type %d", i, typ)
		}
		f.Entries = append(f.Entries, entry)
	}
	return f, nil
}

// Get looks up an entry by tag.
func (f *ParamFrame) Get(tag string) (ParamEntry, bool) {
	for _, e := range f.Entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return ParamEntry{}, false
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("truncated")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func floatBitsFrom(v float64) uint64 { return math.Float64bits(v) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }
