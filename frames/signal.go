// SPDX-License-Identifier: EPL-2.0

package frames

// Signal describes the fixed PCM layout of a frame source: the number
// of interleaved channels and the sample rate in Hz.
type Signal struct {
	Channels   int
	SampleRate int
}

// Valid reports whether both channel count and sample rate are usable.
func (s Signal) Valid() bool {
	return s.Channels > 0 && s.SampleRate > 0
}

// Samples converts a frame count into an interleaved sample count.
func (s Signal) Samples(frameCount int64) int64 {
	return frameCount * int64(s.Channels)
}

// Frames converts an interleaved sample count into a frame count.
func (s Signal) Frames(sampleCount int64) int64 {
	return sampleCount / int64(s.Channels)
}

// WriteSilence zeroes dst. The slice may alias previously decoded data.
func WriteSilence(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
}

// Readable is a borrowed view of decoded sample data covering Range.
// Data holds Range.Length() frames interleaved according to the signal
// it was decoded with.
type Readable struct {
	Range IndexRange
	Data  []float32
}

// Writable is a caller-supplied destination covering Range.
type Writable struct {
	Range IndexRange
	Data  []float32
}
