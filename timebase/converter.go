// SPDX-License-Identifier: EPL-2.0

package timebase

import (
	"math"

	"github.com/ik5/framesource/frames"
)

// NoTime marks a stream time the container did not report.
const NoTime int64 = math.MinInt64

// Rational is an exact time base: one tick lasts Num/Den seconds.
type Rational struct {
	Num int64
	Den int64
}

// Valid reports whether the time base can be used for rescaling.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// rescale computes a*b/c without overflowing for the magnitudes that
// occur in stream timestamps, truncating towards zero.
func rescale(a, b, c int64) int64 {
	q := a / c
	r := a % c
	return q*b + r*b/c
}

// Family identifies a codec family for policy decisions (start-time
// defaults and seek preroll). It deliberately does not identify the
// decoding library in use.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyPCM
	FamilyMP3
	FamilyAAC
	FamilyVorbis
	FamilyFLAC
	FamilyALAC
	FamilyOpus
)

func (f Family) String() string {
	switch f {
	case FamilyPCM:
		return "pcm"
	case FamilyMP3:
		return "mp3"
	case FamilyAAC:
		return "aac"
	case FamilyVorbis:
		return "vorbis"
	case FamilyFLAC:
		return "flac"
	case FamilyALAC:
		return "alac"
	case FamilyOpus:
		return "opus"
	default:
		return "unknown"
	}
}

// AACDecoderDelayFrames is the fixed AAC encoder lead-in assumed when a
// stream reports no start time. Apple TN2258: playback systems must
// trim 2112 samples from AAC decoder output when starting from any
// point in the bitstream.
const AACDecoderDelayFrames = 2112

// Converter maps between a stream's native timestamp domain and the
// internal zero-based frame-index domain. Immutable after creation.
type Converter struct {
	timeBase   Rational
	startTime  int64
	endTime    int64
	sampleRate int
}

// StartTimeFor resolves a possibly missing native start time. Streams
// that do not report one start at 0, except codec families with a
// documented fixed encoder lead-in.
func StartTimeFor(family Family, reported int64, tb Rational, sampleRate int) int64 {
	if reported != NoTime {
		return reported
	}
	if family == FamilyAAC {
		// Express the lead-in in native units.
		leadIn := rescale(AACDecoderDelayFrames, tb.Den, int64(sampleRate)*tb.Num)
		return max(0, leadIn)
	}
	return 0
}

// NewConverter derives the time mapping for one stream. endTime is the
// stream duration in native units; NoTime or an end before the start
// yields ErrUnsupportedDuration, a backward range ErrBackwardRange.
func NewConverter(tb Rational, startTime, endTime int64, sampleRate int) (*Converter, error) {
	if !tb.Valid() || sampleRate <= 0 {
		return nil, ErrInvalidTimeBase
	}
	if endTime == NoTime {
		return nil, ErrUnsupportedDuration
	}
	if endTime < startTime {
		return nil, ErrBackwardRange
	}
	return &Converter{
		timeBase:   tb,
		startTime:  startTime,
		endTime:    endTime,
		sampleRate: sampleRate,
	}, nil
}

// ToFrameIndex rescales a native timestamp into the frame-index domain.
// The first audible frame at startTime maps to index 0. The caller must
// not pass NoTime.
func (c *Converter) ToFrameIndex(streamTime int64) frames.Index {
	return rescale(streamTime-c.startTime, c.timeBase.Num*int64(c.sampleRate), c.timeBase.Den)
}

// ToStreamTime is the exact inverse of ToFrameIndex within the
// resolution of the native time base.
func (c *Converter) ToStreamTime(idx frames.Index) int64 {
	return c.startTime + rescale(idx, c.timeBase.Den, c.timeBase.Num*int64(c.sampleRate))
}

// StreamFrameRange returns the frame span covered by the stream in
// raw, un-offset frame units: a stream with an encoder lead-in starts
// at the lead-in frame count, not at 0. Callers present the normalized
// range Forward(0, StreamFrameRange().Length()) to consumers.
func (c *Converter) StreamFrameRange() frames.IndexRange {
	factor := c.timeBase.Num * int64(c.sampleRate)
	return frames.Between(
		rescale(c.startTime, factor, c.timeBase.Den),
		rescale(c.endTime, factor, c.timeBase.Den),
	)
}

// SampleRate returns the stream sample rate the index domain is based on.
func (c *Converter) SampleRate() int { return c.sampleRate }
