// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"encoding/binary"
	"fmt"
	"io"

	goflac "github.com/mewkiz/flac"
	flacframe "github.com/mewkiz/flac/frame"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// flacStream is the part of flac.Stream the demuxer needs; an
// interface to allow testing without real FLAC data.
type flacStream interface {
	ParseNext() (*flacframe.Frame, error)
	Seek(sampleNum uint64) (uint64, error)
}

// Opener opens FLAC streams via github.com/mewkiz/flac. Seeks land on
// a frame boundary at or before the target sample; the returned packet
// timestamps tell the caller where decoding actually resumed.
type Opener struct{}

func (Opener) Open(rs io.ReadSeeker) (codec.Demuxer, codec.Decoder, error) {
	stream, err := goflac.NewSeek(rs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	sampleRate := int(info.SampleRate)
	bitDepth := int(info.BitsPerSample)
	if channels < 1 || sampleRate < 1 {
		return nil, nil, fmt.Errorf("%w: %d channels at %d Hz",
			ErrUnsupportedFlacLayout, channels, sampleRate)
	}
	totalFrames := int64(info.NSamples)
	if totalFrames <= 0 {
		return nil, nil, ErrUnknownDuration
	}

	layout, err := payloadLayout(bitDepth)
	if err != nil {
		return nil, nil, err
	}
	pcm, err := codec.NewPCMDecoder(layout, bitDepth, channels)
	if err != nil {
		return nil, nil, err
	}

	return &demuxer{
		stream:   stream,
		channels: channels,
		layout:   layout,
		props: codec.Properties{
			Family:     timebase.FamilyFLAC,
			Channels:   channels,
			SampleRate: sampleRate,
			TimeBase:   timebase.Rational{Num: 1, Den: int64(sampleRate)},
			StartTime:  0,
			Duration:   totalFrames,
		},
		totalFrames: totalFrames,
	}, pcm, nil
}

// payloadLayout picks the packet encoding: 16-bit stays 16-bit, all
// other depths travel as right-aligned 32-bit.
func payloadLayout(bitDepth int) (codec.PCMLayout, error) {
	switch bitDepth {
	case 16:
		return codec.LayoutI16LE, nil
	case 8, 12, 20, 24, 32:
		return codec.LayoutI32LE, nil
	}
	return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFlacLayout, bitDepth)
}

// demuxer carries one decoded FLAC frame per packet. Native stream
// time counts sample frames; the position is tracked locally so seeks
// can report where the stream actually landed.
type demuxer struct {
	stream      flacStream
	channels    int
	layout      codec.PCMLayout
	props       codec.Properties
	totalFrames int64
	pos         int64
	buf         []byte
}

func (d *demuxer) Properties() codec.Properties { return d.props }

func (d *demuxer) ReadPacket(p *codec.Packet) error {
	f, err := d.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("parsing FLAC frame: %w", err)
	}
	if len(f.Subframes) != d.channels {
		return fmt.Errorf("%w: frame with %d subframes, stream has %d channels",
			ErrUnsupportedFlacLayout, len(f.Subframes), d.channels)
	}

	count := len(f.Subframes[0].Samples)
	width := d.layout.BytesPerSample()
	size := count * d.channels * width
	if cap(d.buf) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]
	for i := range count {
		for ch, sub := range f.Subframes {
			v := sub.Samples[i]
			off := (i*d.channels + ch) * width
			if d.layout == codec.LayoutI16LE {
				binary.LittleEndian.PutUint16(d.buf[off:], uint16(int16(v)))
			} else {
				binary.LittleEndian.PutUint32(d.buf[off:], uint32(v))
			}
		}
	}

	p.Stream = d.props.Stream
	p.StreamTime = d.pos
	p.Data = d.buf
	d.pos += int64(count)
	return nil
}

func (d *demuxer) Seek(streamTime int64, backward bool) error {
	frame := streamTime
	if frame < 0 {
		frame = 0
	}
	if frame > d.totalFrames {
		frame = d.totalFrames
	}
	landed, err := d.stream.Seek(uint64(frame))
	if err != nil {
		return fmt.Errorf("seeking to frame %d: %w", frame, err)
	}
	d.pos = int64(landed)
	return nil
}

// Close is a no-op: the underlying reader belongs to the caller.
func (d *demuxer) Close() error { return nil }
