// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// packetFrames is the number of sample frames carried per packet.
const packetFrames = 2048

// oggStream is the part of oggvorbis.Reader the demuxer needs; an
// interface to allow testing without real Ogg data.
type oggStream interface {
	SampleRate() int
	Channels() int
	Length() int64
	SetPosition(int64) error
	Read([]float32) (int, error)
}

// Opener opens Ogg Vorbis streams via github.com/jfreymuth/oggvorbis.
// The library seeks sample exactly using the Ogg granule positions.
type Opener struct{}

func (Opener) Open(rs io.ReadSeeker) (codec.Demuxer, codec.Decoder, error) {
	r, err := oggvorbis.NewReader(rs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	return newDemuxer(r)
}

func newDemuxer(stream oggStream) (codec.Demuxer, codec.Decoder, error) {
	channels := stream.Channels()
	sampleRate := stream.SampleRate()
	if channels < 1 || sampleRate < 1 {
		return nil, nil, fmt.Errorf("%w: %d channels at %d Hz",
			ErrNotVorbisFile, channels, sampleRate)
	}
	totalFrames := stream.Length()
	if totalFrames <= 0 {
		return nil, nil, ErrUnknownDuration
	}

	pcm, err := codec.NewPCMDecoder(codec.LayoutF32LE, 32, channels)
	if err != nil {
		return nil, nil, err
	}

	return &demuxer{
		stream:   stream,
		channels: channels,
		props: codec.Properties{
			Family:     timebase.FamilyVorbis,
			Channels:   channels,
			SampleRate: sampleRate,
			TimeBase:   timebase.Rational{Num: 1, Den: int64(sampleRate)},
			StartTime:  0,
			Duration:   totalFrames,
		},
		totalFrames: totalFrames,
	}, pcm, nil
}

// demuxer reads decoded float samples in fixed packets. Native stream
// time counts sample frames. Reads from oggvorbis may stop mid frame,
// so a partial frame is carried over to the next packet.
type demuxer struct {
	stream      oggStream
	channels    int
	props       codec.Properties
	totalFrames int64
	pos         int64
	scratch     []float32
	leftover    []float32
	buf         []byte
}

func (d *demuxer) Properties() codec.Properties { return d.props }

func (d *demuxer) ReadPacket(p *codec.Packet) error {
	count := min(int64(packetFrames), d.totalFrames-d.pos)
	if count <= 0 {
		return io.EOF
	}
	wantSamples := int(count) * d.channels

	if cap(d.scratch) < wantSamples {
		d.scratch = make([]float32, wantSamples)
	}
	samples := copy(d.scratch[:wantSamples], d.leftover)
	d.leftover = d.leftover[:0]

	for samples < wantSamples {
		n, err := d.stream.Read(d.scratch[samples:wantSamples])
		samples += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decoding Vorbis stream: %w", err)
		}
	}

	frames := samples / d.channels
	if frames == 0 {
		return io.EOF
	}
	if rem := samples % d.channels; rem != 0 {
		d.leftover = append(d.leftover, d.scratch[samples-rem:samples]...)
		samples -= rem
	}

	size := samples * 4
	if cap(d.buf) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]
	for i := range samples {
		binary.LittleEndian.PutUint32(d.buf[4*i:], math.Float32bits(d.scratch[i]))
	}

	p.Stream = d.props.Stream
	p.StreamTime = d.pos
	p.Data = d.buf
	d.pos += int64(frames)
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
	if err := d.stream.SetPosition(frame); err != nil {
		return fmt.Errorf("seeking to frame %d: %w", frame, err)
	}
	d.pos = frame
	d.leftover = d.leftover[:0]
	return nil
}

// Close is a no-op: the underlying reader belongs to the caller.
func (d *demuxer) Close() error { return nil }
