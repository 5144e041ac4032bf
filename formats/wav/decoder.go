// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// packetFrames is the number of sample frames carried per packet.
const packetFrames = 4096

const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// Opener opens RIFF/WAVE containers. Header parsing and validation is
// delegated to go-audio/wav; the raw PCM payload is read directly so
// that seeking is sample exact.
type Opener struct{}

func (Opener) Open(rs io.ReadSeeker) (codec.Demuxer, codec.Decoder, error) {
	d := gowav.NewDecoder(rs)
	d.ReadInfo()
	if d.Err() != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotWavFile, d.Err())
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	layout, err := payloadLayout(int(d.WavAudioFormat), int(d.BitDepth))
	if err != nil {
		return nil, nil, err
	}
	channels := int(d.NumChans)
	sampleRate := int(d.SampleRate)
	if channels < 1 || sampleRate < 1 {
		return nil, nil, fmt.Errorf("%w: %d channels at %d Hz",
			ErrUnsupportedWavLayout, channels, sampleRate)
	}

	// FwdToPCM leaves the reader at the first payload byte.
	dataStart, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, nil, fmt.Errorf("locating PCM data: %w", err)
	}

	blockAlign := int64(channels * layout.BytesPerSample())
	totalFrames := d.PCMLen() / blockAlign

	dec, err := codec.NewPCMDecoder(layout, int(d.BitDepth), channels)
	if err != nil {
		return nil, nil, err
	}

	return &demuxer{
		rs: rs,
		props: codec.Properties{
			Family:      timebase.FamilyPCM,
			Channels:    channels,
			SampleRate:  sampleRate,
			BitrateKbps: int64(d.AvgBytesPerSec) * 8 / 1000,
			TimeBase:    timebase.Rational{Num: 1, Den: int64(sampleRate)},
			StartTime:   0,
			Duration:    totalFrames,
		},
		dataStart:   dataStart,
		totalFrames: totalFrames,
		blockAlign:  blockAlign,
	}, dec, nil
}

func payloadLayout(audioFormat, bitDepth int) (codec.PCMLayout, error) {
	switch audioFormat {
	case formatPCM:
		switch bitDepth {
		case 8:
			return codec.LayoutU8, nil
		case 16:
			return codec.LayoutI16LE, nil
		case 24:
			return codec.LayoutI24LE, nil
		case 32:
			return codec.LayoutI32LE, nil
		}
		return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedWavLayout, bitDepth)
	case formatIEEEFloat:
		if bitDepth == 32 {
			return codec.LayoutF32LE, nil
		}
		return 0, fmt.Errorf("%w: %d-bit float", ErrUnsupportedWavLayout, bitDepth)
	}
	return 0, fmt.Errorf("%w: audio format %d", ErrUnsupportedWavLayout, audioFormat)
}

// demuxer reads raw PCM blocks out of the data chunk. Native stream
// time counts sample frames.
type demuxer struct {
	rs          io.ReadSeeker
	props       codec.Properties
	dataStart   int64
	totalFrames int64
	blockAlign  int64
	pos         int64 // frame position of the next read
	buf         []byte
}

func (d *demuxer) Properties() codec.Properties { return d.props }

func (d *demuxer) ReadPacket(p *codec.Packet) error {
	count := min(int64(packetFrames), d.totalFrames-d.pos)
	if count <= 0 {
		return io.EOF
	}
	size := count * d.blockAlign
	if int64(cap(d.buf)) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]

	n, err := io.ReadFull(d.rs, d.buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// A truncated data chunk still yields the complete frames read.
		count = int64(n) / d.blockAlign
		if count == 0 {
			return io.EOF
		}
		d.buf = d.buf[:count*d.blockAlign]
	} else if err != nil {
		return fmt.Errorf("reading PCM data: %w", err)
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
	if _, err := d.rs.Seek(d.dataStart+frame*d.blockAlign, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to frame %d: %w", frame, err)
	}
	d.pos = frame
	return nil
}

// Close is a no-op: the underlying reader belongs to the caller.
func (d *demuxer) Close() error { return nil }
