// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// An MPEG-1 layer III frame holds 1152 sample frames.
const mp3FrameSize = 1152

// go-mp3 always emits 16-bit stereo, 4 bytes per sample frame.
const (
	outChannels   = 2
	bytesPerFrame = 4
)

// mp3Stream is the part of gomp3.Decoder the demuxer needs; an
// interface to allow testing without real MP3 data.
type mp3Stream interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	SampleRate() int
	Length() int64
}

// Opener opens MP3 streams via github.com/hajimehoshi/go-mp3. The
// library decodes to 16-bit stereo PCM and supports sample positioning
// on frame boundaries.
type Opener struct{}

func (Opener) Open(rs io.ReadSeeker) (codec.Demuxer, codec.Decoder, error) {
	dec, err := gomp3.NewDecoder(rs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}
	return newDemuxer(dec)
}

func newDemuxer(stream mp3Stream) (codec.Demuxer, codec.Decoder, error) {
	length := stream.Length()
	if length < 0 {
		return nil, nil, ErrUnknownDuration
	}
	sampleRate := stream.SampleRate()
	if sampleRate < 1 {
		return nil, nil, fmt.Errorf("%w: %d Hz", ErrNotMP3File, sampleRate)
	}
	totalFrames := length / bytesPerFrame

	pcm, err := codec.NewPCMDecoder(codec.LayoutI16LE, 16, outChannels)
	if err != nil {
		return nil, nil, err
	}

	return &demuxer{
		stream: stream,
		props: codec.Properties{
			Family:     timebase.FamilyMP3,
			Channels:   outChannels,
			SampleRate: sampleRate,
			TimeBase:   timebase.Rational{Num: 1, Den: int64(sampleRate)},
			StartTime:  0,
			Duration:   totalFrames,
			FrameSize:  mp3FrameSize,
		},
		totalFrames: totalFrames,
	}, pcm, nil
}

// demuxer reads decoded PCM in MP3-frame-sized packets. Native stream
// time counts sample frames.
type demuxer struct {
	stream      mp3Stream
	props       codec.Properties
	totalFrames int64
	pos         int64
	buf         []byte
}

func (d *demuxer) Properties() codec.Properties { return d.props }

func (d *demuxer) ReadPacket(p *codec.Packet) error {
	count := min(int64(mp3FrameSize), d.totalFrames-d.pos)
	if count <= 0 {
		return io.EOF
	}
	size := count * bytesPerFrame
	if int64(cap(d.buf)) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]

	n, err := io.ReadFull(d.stream, d.buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		count = int64(n) / bytesPerFrame
		if count == 0 {
			return io.EOF
		}
		d.buf = d.buf[:count*bytesPerFrame]
	} else if err != nil {
		return fmt.Errorf("decoding MP3 stream: %w", err)
	}

	p.Stream = d.props.Stream
	p.StreamTime = d.pos
	p.Data = d.buf
	d.pos += count
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
	// Positioning is only reliable on MP3 frame boundaries.
	frame -= frame % mp3FrameSize
	if _, err := d.stream.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to frame %d: %w", frame, err)
	}
	d.pos = frame
	return nil
}

// Close is a no-op: the underlying reader belongs to the caller.
func (d *demuxer) Close() error { return nil }
