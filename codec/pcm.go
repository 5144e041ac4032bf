// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/framesource/timebase"
)

// PCMLayout identifies the byte encoding of PCM packet payloads.
type PCMLayout int

const (
	LayoutU8 PCMLayout = iota
	LayoutI16LE
	LayoutI24LE
	LayoutI32LE
	LayoutF32LE
)

// BytesPerSample returns the storage width of one sample.
func (l PCMLayout) BytesPerSample() int {
	switch l {
	case LayoutU8:
		return 1
	case LayoutI16LE:
		return 2
	case LayoutI24LE:
		return 3
	case LayoutF32LE, LayoutI32LE:
		return 4
	}
	return 0
}

func (l PCMLayout) String() string {
	switch l {
	case LayoutU8:
		return "u8"
	case LayoutI16LE:
		return "i16le"
	case LayoutI24LE:
		return "i24le"
	case LayoutI32LE:
		return "i32le"
	case LayoutF32LE:
		return "f32le"
	}
	return "unknown"
}

// PCMDecoder is the built-in codec for containers whose payload is raw
// PCM: it turns packets of interleaved samples into frames. Integer
// samples are right-aligned at bitDepth within their storage width and
// normalized to [-1, 1); 16-bit payloads pass through as 16-bit frames.
//
// The decoder holds at most one packet: a second SendPacket before the
// frame was received returns ErrAgain.
type PCMDecoder struct {
	layout   PCMLayout
	channels int
	scale    float32

	pending     []byte
	pendingTime int64
	hasPending  bool
	draining    bool

	f32 []float32
	i16 []int16
}

// NewPCMDecoder creates a decoder for payloads in the given layout.
// bitDepth is the significant bits per sample, at most the layout's
// storage width.
func NewPCMDecoder(layout PCMLayout, bitDepth, channels int) (*PCMDecoder, error) {
	storage := layout.BytesPerSample()
	if storage == 0 {
		return nil, fmt.Errorf("%w: layout %d", ErrUnsupportedLayout, int(layout))
	}
	if layout != LayoutF32LE && (bitDepth < 4 || bitDepth > storage*8) {
		return nil, fmt.Errorf("%w: %d significant bits in %s", ErrUnsupportedLayout, bitDepth, layout)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, channels)
	}
	return &PCMDecoder{
		layout:   layout,
		channels: channels,
		scale:    1 / float32(int64(1)<<(bitDepth-1)),
	}, nil
}

func (d *PCMDecoder) SendPacket(p *Packet) error {
	if p.Drain() {
		d.draining = true
		return nil
	}
	if d.hasPending {
		return ErrAgain
	}
	if rem := len(p.Data) % (d.channels * d.layout.BytesPerSample()); rem != 0 {
		return fmt.Errorf("%w: %d trailing bytes in packet", ErrUnsupportedLayout, rem)
	}
	d.pending = p.Data
	d.pendingTime = p.StreamTime
	d.hasPending = true
	return nil
}

func (d *PCMDecoder) ReceiveFrame(f *Frame) error {
	if !d.hasPending {
		if d.draining {
			return io.EOF
		}
		return ErrAgain
	}
	d.hasPending = false

	numFrames := len(d.pending) / (d.channels * d.layout.BytesPerSample())
	f.StreamTime = d.pendingTime
	f.NumFrames = numFrames
	f.Channels = d.channels

	if d.layout == LayoutI16LE && d.scale == 1.0/32768 {
		f.Format = FormatI16
		f.F32 = nil
		f.I16 = d.decodeI16(d.pending)
		return nil
	}
	f.Format = FormatF32
	f.I16 = nil
	f.F32 = d.decodeF32(d.pending)
	return nil
}

func (d *PCMDecoder) decodeI16(data []byte) []int16 {
	n := len(data) / 2
	if cap(d.i16) < n {
		d.i16 = make([]int16, n)
	}
	d.i16 = d.i16[:n]
	for i := range d.i16 {
		d.i16[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return d.i16
}

func (d *PCMDecoder) decodeF32(data []byte) []float32 {
	width := d.layout.BytesPerSample()
	n := len(data) / width
	if cap(d.f32) < n {
		d.f32 = make([]float32, n)
	}
	d.f32 = d.f32[:n]
	for i := range d.f32 {
		sample := data[i*width:]
		switch d.layout {
		case LayoutU8:
			d.f32[i] = float32(int(sample[0])-128) * d.scale
		case LayoutI16LE:
			d.f32[i] = float32(int16(binary.LittleEndian.Uint16(sample))) * d.scale
		case LayoutI24LE:
			v := int32(sample[0]) | int32(sample[1])<<8 | int32(int8(sample[2]))<<16
			d.f32[i] = float32(v) * d.scale
		case LayoutI32LE:
			d.f32[i] = float32(int32(binary.LittleEndian.Uint32(sample))) * d.scale
		case LayoutF32LE:
			d.f32[i] = math.Float32frombits(binary.LittleEndian.Uint32(sample))
		}
	}
	return d.f32
}

func (d *PCMDecoder) Flush() {
	d.hasPending = false
	d.pending = nil
	d.pendingTime = timebase.NoTime
	d.draining = false
}

func (d *PCMDecoder) Close() error { return nil }
