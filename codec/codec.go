// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"io"

	"github.com/ik5/framesource/timebase"
)

// SampleFormat identifies the in-memory layout of decoded samples.
type SampleFormat int

const (
	// FormatF32 is interleaved float32 in [-1, 1].
	FormatF32 SampleFormat = iota
	// FormatI16 is interleaved signed 16-bit PCM.
	FormatI16
)

// Packet is one unit of encoded data read from the container. At most
// one packet is in flight at a time; ownership transfers to the
// decoder on a fully successful send.
type Packet struct {
	// Stream is the container stream the packet belongs to.
	Stream int
	// StreamTime is the presentation timestamp in native units, or
	// timebase.NoTime when the container did not report one.
	StreamTime int64
	// Data is the encoded payload. A nil Data marks the drain packet
	// that flushes residual frames out of the decoder at end of
	// stream.
	Data []byte
}

// Drain reports whether the packet is the end-of-stream drain marker.
func (p *Packet) Drain() bool { return p.Data == nil }

// Frame is one run of decoded samples. Its buffers are owned by the
// decoder and stay valid only until the next ReceiveFrame call.
type Frame struct {
	// StreamTime is the timestamp of the first sample in native
	// units, or timebase.NoTime when the decoder did not report one.
	StreamTime int64
	// NumFrames is the number of sample frames in the buffer.
	NumFrames int
	Format    SampleFormat
	Channels  int
	// F32 and I16 hold the interleaved samples; exactly the slice
	// matching Format is populated.
	F32 []float32
	I16 []int16
}

// Properties describes an opened stream, derived once at open time.
type Properties struct {
	Family     timebase.Family
	Stream     int
	Channels   int
	SampleRate int
	// BitrateKbps is 0 when unknown.
	BitrateKbps int64

	TimeBase timebase.Rational
	// StartTime and Duration are in native units; timebase.NoTime
	// when unreported. Duration is the stream end time.
	StartTime int64
	Duration  int64

	// FrameSize is the fixed codec frame size in sample frames, or 0
	// when the codec has none.
	FrameSize int
	// SeekPreroll is the container's own reported preroll hint.
	SeekPreroll int64
}

// Demuxer pulls encoded packets out of a container. Implementations
// need not seek sample-accurately; seeking to the nearest preceding
// packet boundary is sufficient, the decode loop compensates.
type Demuxer interface {
	Properties() Properties

	// ReadPacket fills p with the next packet of any stream. It
	// returns io.EOF at the end of the container, distinguishable
	// from all other errors.
	ReadPacket(p *Packet) error

	// Seek repositions the demuxer near streamTime. With backward
	// set, the new position must not be after streamTime.
	Seek(streamTime int64, backward bool) error

	Close() error
}

// Decoder turns packets into frames following the feed/drain protocol:
// SendPacket may return ErrAgain when internal buffers are full, in
// which case the same packet must be resent after draining frames via
// ReceiveFrame. ReceiveFrame returns ErrAgain when more input is
// needed and io.EOF once the drain packet has been fully flushed.
type Decoder interface {
	SendPacket(p *Packet) error
	ReceiveFrame(f *Frame) error

	// Flush drops all internal state before a seek.
	Flush()

	Close() error
}

// Opener creates the demuxer/decoder pair for one container format.
// The pair shares underlying state and must only be used from a single
// goroutine.
type Opener interface {
	Open(rs io.ReadSeeker) (Demuxer, Decoder, error)
}
