// SPDX-License-Identifier: EPL-2.0

package alac

import (
	"fmt"
	"io"

	gomp4 "github.com/abema/go-mp4"
	goalac "github.com/mycophonic/saprobe-alac"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// packetFrames is the number of sample frames carried per packet.
const packetFrames = 4096

// Opener opens ALAC audio inside M4A/MP4 containers via
// github.com/mycophonic/saprobe-alac. The decoder only reads forward,
// so backward seeks reopen it and skip ahead; the total frame count
// comes from probing the container with github.com/abema/go-mp4.
type Opener struct{}

func (Opener) Open(rs io.ReadSeeker) (codec.Demuxer, codec.Decoder, error) {
	stream, err := goalac.NewDecoder(rs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotAlacFile, err)
	}

	format := stream.Format()
	channels := format.Channels
	sampleRate := format.SampleRate
	bitDepth := format.BitDepth
	if channels < 1 || sampleRate < 1 {
		return nil, nil, fmt.Errorf("%w: %d channels at %d Hz",
			ErrUnsupportedAlacLayout, channels, sampleRate)
	}

	layout, err := payloadLayout(bitDepth)
	if err != nil {
		return nil, nil, err
	}
	pcm, err := codec.NewPCMDecoder(layout, bitDepth, channels)
	if err != nil {
		return nil, nil, err
	}

	totalFrames, err := probeFrameCount(rs, sampleRate)
	if err != nil {
		return nil, nil, err
	}

	// The probe moved the read position; reopen so decoding starts
	// from the first packet.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("rewinding ALAC stream: %w", err)
	}
	stream, err = goalac.NewDecoder(rs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotAlacFile, err)
	}

	return &demuxer{
		reader: stream,
		reopen: func() (io.Reader, error) {
			if _, err := rs.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			return goalac.NewDecoder(rs)
		},
		frameBytes: channels * layout.BytesPerSample(),
		props: codec.Properties{
			Family:     timebase.FamilyALAC,
			Channels:   channels,
			SampleRate: sampleRate,
			TimeBase:   timebase.Rational{Num: 1, Den: int64(sampleRate)},
			StartTime:  0,
			Duration:   totalFrames,
		},
		totalFrames: totalFrames,
	}, pcm, nil
}

// payloadLayout picks the packet encoding matching the decoder's
// native output width: 20 and 24-bit samples travel as 3 bytes.
func payloadLayout(bitDepth int) (codec.PCMLayout, error) {
	switch bitDepth {
	case 16:
		return codec.LayoutI16LE, nil
	case 20, 24:
		return codec.LayoutI24LE, nil
	case 32:
		return codec.LayoutI32LE, nil
	}
	return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedAlacLayout, bitDepth)
}

// probeFrameCount reads the container's track table for the total
// sample frame count. Track durations already count in the track's
// timescale, which for ALAC audio is the sample rate.
func probeFrameCount(rs io.ReadSeeker, sampleRate int) (int64, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewinding for probe: %w", err)
	}
	info, err := gomp4.Probe(rs)
	if err != nil {
		return 0, fmt.Errorf("%w: probing container: %w", ErrNotAlacFile, err)
	}
	return frameCountFromTracks(info.Tracks, sampleRate)
}

// frameCountFromTracks picks the audio track's duration in sample
// frames. A track running at the decoder's sample rate or carrying an
// audio sample entry wins over any longer non-audio track.
func frameCountFromTracks(tracks []*gomp4.TrackInfo, sampleRate int) (int64, error) {
	var best, bestAudio int64
	for _, track := range tracks {
		if track == nil || track.Timescale == 0 || track.Duration == 0 {
			continue
		}
		frames := int64(track.Duration)
		if int(track.Timescale) != sampleRate {
			frames = int64(track.Duration) * int64(sampleRate) / int64(track.Timescale)
		}
		if int(track.Timescale) == sampleRate || track.MP4A != nil {
			bestAudio = max(bestAudio, frames)
		}
		best = max(best, frames)
	}
	if bestAudio > 0 {
		return bestAudio, nil
	}
	if best <= 0 {
		return 0, ErrUnknownDuration
	}
	return best, nil
}

// demuxer reads decoded PCM bytes in fixed packets. Native stream
// time counts sample frames.
type demuxer struct {
	reader      io.Reader
	reopen      func() (io.Reader, error)
	frameBytes  int
	props       codec.Properties
	totalFrames int64
	pos         int64
	buf         []byte
}

func (d *demuxer) Properties() codec.Properties { return d.props }

func (d *demuxer) ReadPacket(p *codec.Packet) error {
	count := min(int64(packetFrames), d.totalFrames-d.pos)
	if count <= 0 {
		return io.EOF
	}
	size := int(count) * d.frameBytes
	if cap(d.buf) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]

	n, err := io.ReadFull(d.reader, d.buf)
	n -= n % d.frameBytes
	if n == 0 {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return io.EOF
		}
		return fmt.Errorf("decoding ALAC stream: %w", err)
	}

	p.Stream = d.props.Stream
	p.StreamTime = d.pos
	p.Data = d.buf[:n]
	d.pos += int64(n / d.frameBytes)
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
	if frame < d.pos {
		reader, err := d.reopen()
		if err != nil {
			return fmt.Errorf("seeking to frame %d: %w", frame, err)
		}
		d.reader = reader
		d.pos = 0
	}
	// Forward only: decode and discard up to the target.
	if skip := (frame - d.pos) * int64(d.frameBytes); skip > 0 {
		n, err := io.CopyN(io.Discard, d.reader, skip)
		d.pos += n / int64(d.frameBytes)
		if err != nil && err != io.EOF {
			return fmt.Errorf("skipping to frame %d: %w", frame, err)
		}
	}
	return nil
}

// Close is a no-op: the underlying reader belongs to the caller.
func (d *demuxer) Close() error { return nil }
