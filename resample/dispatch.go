// SPDX-License-Identifier: EPL-2.0

// Package resample adapts decoded frames to the engine's target sample
// format.
//
// The dispatcher is a pure per-frame function: when the decoded frame
// already matches the target it is returned unchanged, otherwise the
// samples are converted into a scratch buffer that stays valid until
// the next call. Channel-count changes are deliberately refused: the
// engine decodes in the stream's native channel count and defers any
// remixing to the caller, to avoid conflicting with downstream mixing
// policy. Sample-rate changes are refused as well, because all frame
// arithmetic in the engine is based on the stream's native rate.
package resample

import (
	"errors"
	"fmt"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/frames"
)

var (
	ErrChannelMismatch = errors.New("channel count conversion not supported")
	ErrUnknownFormat   = errors.New("unknown sample format")
)

// Dispatcher converts decoded frames into interleaved float32 matching
// the target signal. Not safe for concurrent use; the returned slice
// is only valid until the next Convert call.
type Dispatcher struct {
	target  frames.Signal
	scratch []float32
}

func NewDispatcher(target frames.Signal) *Dispatcher {
	return &Dispatcher{target: target}
}

// Convert returns f's samples as interleaved float32. The input frame
// is borrowed only for the duration of the call.
func (d *Dispatcher) Convert(f *codec.Frame) ([]float32, error) {
	if f.Channels != d.target.Channels {
		return nil, fmt.Errorf("%w: stream %d, target %d",
			ErrChannelMismatch, f.Channels, d.target.Channels)
	}

	switch f.Format {
	case codec.FormatF32:
		return f.F32[:f.NumFrames*f.Channels], nil
	case codec.FormatI16:
		samples := f.NumFrames * f.Channels
		if cap(d.scratch) < samples {
			d.scratch = make([]float32, samples)
		}
		d.scratch = d.scratch[:samples]
		for i, v := range f.I16[:samples] {
			d.scratch[i] = float32(v) / 32768.0
		}
		return d.scratch, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, f.Format)
	}
}
