// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// packetFrames is the number of sample frames carried per packet.
const packetFrames = 4096

// pcmReader is the part of aiff.Decoder the demuxer needs; an
// interface to allow testing without real AIFF data.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Opener opens AIFF containers via github.com/go-audio/aiff. The
// library only reads forward, so backward seeks reopen the decoder and
// skip ahead to the target frame.
type Opener struct{}

func (Opener) Open(rs io.ReadSeeker) (codec.Demuxer, codec.Decoder, error) {
	d, err := openDecoder(rs)
	if err != nil {
		return nil, nil, err
	}

	format := d.Format()
	if format == nil {
		return nil, nil, ErrUnsupportedAiffLayout
	}
	channels := format.NumChannels
	sampleRate := format.SampleRate
	bitDepth := int(d.BitDepth)
	if channels < 1 || sampleRate < 1 {
		return nil, nil, fmt.Errorf("%w: %d channels at %d Hz",
			ErrUnsupportedAiffLayout, channels, sampleRate)
	}

	layout, err := payloadLayout(bitDepth)
	if err != nil {
		return nil, nil, err
	}
	pcm, err := codec.NewPCMDecoder(layout, bitDepth, channels)
	if err != nil {
		return nil, nil, err
	}

	totalFrames := int64(d.NumSampleFrames)

	return &demuxer{
		reader: d,
		reopen: func() (pcmReader, error) {
			if _, err := rs.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			return openDecoder(rs)
		},
		channels: channels,
		bitDepth: bitDepth,
		layout:   layout,
		props: codec.Properties{
			Family:     timebase.FamilyPCM,
			Channels:   channels,
			SampleRate: sampleRate,
			TimeBase:   timebase.Rational{Num: 1, Den: int64(sampleRate)},
			StartTime:  0,
			Duration:   totalFrames,
		},
		totalFrames: totalFrames,
	}, pcm, nil
}

func openDecoder(rs io.ReadSeeker) (*aiff.Decoder, error) {
	d := aiff.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	d.ReadInfo()
	if d.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAiffFile, d.Err())
	}
	return d, nil
}

// payloadLayout picks the packet encoding: 16-bit stays 16-bit, all
// other depths travel as right-aligned 32-bit.
func payloadLayout(bitDepth int) (codec.PCMLayout, error) {
	switch bitDepth {
	case 16:
		return codec.LayoutI16LE, nil
	case 8, 24, 32:
		return codec.LayoutI32LE, nil
	}
	return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedAiffLayout, bitDepth)
}

// demuxer reads decoded integer samples in fixed packets. Native
// stream time counts sample frames.
type demuxer struct {
	reader      pcmReader
	reopen      func() (pcmReader, error)
	channels    int
	bitDepth    int
	layout      codec.PCMLayout
	props       codec.Properties
	totalFrames int64
	pos         int64
	intBuf      *goaudio.IntBuffer
	buf         []byte
}

func (d *demuxer) Properties() codec.Properties { return d.props }

func (d *demuxer) ReadPacket(p *codec.Packet) error {
	count := min(int64(packetFrames), d.totalFrames-d.pos)
	if count <= 0 {
		return io.EOF
	}
	n, err := d.readFrames(int(count))
	if n == 0 {
		if err != nil && err != io.EOF {
			return fmt.Errorf("decoding AIFF stream: %w", err)
		}
		return io.EOF
	}

	samples := n * d.channels
	width := d.layout.BytesPerSample()
	size := samples * width
	if cap(d.buf) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]
	for i := range samples {
		v := d.intBuf.Data[i]
		if d.layout == codec.LayoutI16LE {
			binary.LittleEndian.PutUint16(d.buf[2*i:], uint16(int16(v)))
		} else {
			binary.LittleEndian.PutUint32(d.buf[4*i:], uint32(int32(v)))
		}
	}

	p.Stream = d.props.Stream
	p.StreamTime = d.pos
	p.Data = d.buf
	d.pos += int64(n)
	return nil
}

// readFrames decodes up to count frames and returns whole frames read.
func (d *demuxer) readFrames(count int) (int, error) {
	samples := count * d.channels
	if d.intBuf == nil || cap(d.intBuf.Data) < samples {
		d.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, samples),
			Format: &goaudio.Format{NumChannels: d.channels, SampleRate: d.props.SampleRate},
		}
	}
	d.intBuf.Data = d.intBuf.Data[:samples]

	n, err := d.reader.PCMBuffer(d.intBuf)
	return n / d.channels, err
}

func (d *demuxer) Seek(streamTime int64, backward bool) error {
	frame := streamTime
	if frame < 0 {
		frame = 0
	}
	if frame > d.totalFrames {
		frame = d.totalFrames
	}
	if frame < d.pos {
		reader, err := d.reopen()
		if err != nil {
			return fmt.Errorf("seeking to frame %d: %w", frame, err)
		}
		d.reader = reader
		d.pos = 0
	}
	// Forward only: decode and discard up to the target.
	for d.pos < frame {
		n, err := d.readFrames(int(min(int64(packetFrames), frame-d.pos)))
		if n == 0 {
			if err != nil && err != io.EOF {
				return fmt.Errorf("skipping to frame %d: %w", frame, err)
			}
			break
		}
		d.pos += int64(n)
	}
	return nil
}

// Close is a no-op: the underlying reader belongs to the caller.
func (d *demuxer) Close() error { return nil }
