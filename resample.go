// SPDX-License-Identifier: EPL-2.0

package framesource

import (
	"fmt"
	"io"

	"github.com/ik5/framesource/audio"
	"github.com/ik5/framesource/engine"
	"github.com/ik5/framesource/frames"
)

// defaultStreamBufFrames sizes the sequential read window of Samples.
const defaultStreamBufFrames = 4096

// frameStream adapts a SoundSource into a forward-only audio.Source
// for the resampling pipeline.
type frameStream struct {
	src     *SoundSource
	signal  frames.Signal
	next    frames.Index
	end     frames.Index
	bufSize int
}

// Samples returns a sequential audio.Source reading the whole stream
// from the first frame. bufFrames bounds one read; 0 picks a default.
func (s *SoundSource) Samples(bufFrames int) audio.Source {
	if bufFrames <= 0 {
		bufFrames = defaultStreamBufFrames
	}
	all := s.FrameIndexRange()
	return &frameStream{
		src:     s,
		signal:  s.Signal(),
		next:    all.Start(),
		end:     all.End(),
		bufSize: bufFrames,
	}
}

func (f *frameStream) SampleRate() int { return f.signal.SampleRate }
func (f *frameStream) Channels() int   { return f.signal.Channels }
func (f *frameStream) BufSize() int    { return f.bufSize * f.signal.Channels }

// ReadSamples fills dst with interleaved samples, whole frames only.
func (f *frameStream) ReadSamples(dst []float32) (int, error) {
	if f.next >= f.end {
		return 0, io.EOF
	}
	count := int64(len(dst)) / int64(f.signal.Channels)
	if count > int64(f.bufSize) {
		count = int64(f.bufSize)
	}
	if count > f.end-f.next {
		count = f.end - f.next
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: %d samples for %d channels",
			engine.ErrShortBuffer, len(dst), f.signal.Channels)
	}

	want := frames.Forward(f.next, count)
	got, err := f.src.ReadFrames(want, dst[:f.signal.Samples(count)])
	f.next = got.End()
	n := int(f.signal.Samples(got.Length()))
	if err != nil {
		return n, fmt.Errorf("reading frames %v: %w", want, err)
	}
	return n, nil
}

// Close is a no-op: the SoundSource stays owned by the caller.
func (f *frameStream) Close() error { return nil }

// ResampleToMono16 resamples src to targetRate, mixes it down to mono
// and collects the whole stream as 16-bit PCM. It is a convenience
// wrapper over the audio pipeline:
//
//	pcm16, rate, err := framesource.ResampleToMono16(src.Samples(0), 8000, 4096)
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	resampler := audio.NewResampler(src, targetRate)
	mono := audio.NewMonoMixer(resampler)

	pcm16 := make([]int16, 0, targetRate*2)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		if n > 0 {
			if cap(pcm16)-len(pcm16) < n {
				newCap := len(pcm16) + max(n, cap(pcm16))
				newSlice := make([]int16, len(pcm16), newCap)
				copy(newSlice, pcm16)
				pcm16 = newSlice
			}

			startIdx := len(pcm16)
			pcm16 = pcm16[:startIdx+n]
			const maxInt16 float32 = 32768.0
			for i := range n {
				x := buf[i]
				if x > 1 {
					x = 1
				} else if x < -1 {
					x = -1
				}
				pcm16[startIdx+i] = int16(x * maxInt16)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	return pcm16, targetRate, nil
}
