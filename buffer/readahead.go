// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"github.com/ik5/framesource/frames"
)

// BufferingMode selects how BufferFrames treats a gap between the
// buffered range and newly offered data.
type BufferingMode int

const (
	// SkipGap refuses data that does not continue the buffered range.
	SkipGap BufferingMode = iota
	// FillGapWithSilence bridges a gap with silent frames before
	// accepting the offered data.
	FillGapWithSilence
)

// ReadAhead is a bounded, index-addressed staging buffer for decoded
// frames that have not yet been consumed by the caller. It is owned
// and mutated exclusively by one decode loop.
//
// The buffer is in one of three states: invalid (after Invalidate,
// terminal until the next Reset), empty at a position (possibly
// frames.UnknownIndex right after a seek), or holding a non-empty
// contiguous frame range.
type ReadAhead struct {
	signal   frames.Signal
	capacity int64 // frames
	valid    bool
	first    frames.Index // position when empty, range start when holding
	data     []float32    // interleaved samples of the held range
}

// NewReadAhead creates a buffer for the given signal holding at most
// capacityFrames frames. The buffer starts valid and empty at an
// unknown position.
func NewReadAhead(signal frames.Signal, capacityFrames int64) *ReadAhead {
	if !signal.Valid() || capacityFrames <= 0 {
		panic("buffer: invalid signal or capacity")
	}
	return &ReadAhead{
		signal:   signal,
		capacity: capacityFrames,
		valid:    true,
		first:    frames.UnknownIndex,
		data:     make([]float32, 0, signal.Samples(capacityFrames)),
	}
}

func (b *ReadAhead) Signal() frames.Signal { return b.signal }

// IsValid reports whether the buffer survived all operations since the
// last Reset. An invalid buffer answers every query as invalid until
// the next Reset; this is how an unrecoverable decode or seek error
// propagates to the next read attempt.
func (b *ReadAhead) IsValid() bool { return b.valid }

func (b *ReadAhead) IsEmpty() bool { return len(b.data) == 0 }

// FirstFrame returns the start of the held range, the empty position,
// or frames.InvalidIndex when invalid.
func (b *ReadAhead) FirstFrame() frames.Index {
	if !b.valid {
		return frames.InvalidIndex
	}
	return b.first
}

// BufferedRange returns the held frame range. For an empty buffer at a
// known position the result is the empty range at that position.
func (b *ReadAhead) BufferedRange() frames.IndexRange {
	if !b.valid || !frames.IsValidIndex(b.first) {
		return frames.IndexRange{}
	}
	return frames.Forward(b.first, b.bufferedFrames())
}

func (b *ReadAhead) bufferedFrames() int64 {
	return b.signal.Frames(int64(len(b.data)))
}

// Reset clears the buffer and marks it valid and empty at pos, which
// may be frames.UnknownIndex when the position is only known once real
// data arrives.
func (b *ReadAhead) Reset(pos frames.Index) {
	b.valid = true
	b.first = pos
	b.data = b.data[:0]
}

// Invalidate discards everything and poisons the buffer until the next
// Reset.
func (b *ReadAhead) Invalidate() {
	b.valid = false
	b.first = frames.InvalidIndex
	b.data = b.data[:0]
}

// TrySeekToFirstFrame succeeds without any decode work if the buffer
// already is, or can be advanced to, exactly the target position.
func (b *ReadAhead) TrySeekToFirstFrame(target frames.Index) bool {
	if !b.valid || !frames.IsValidIndex(b.first) {
		return false
	}
	if b.IsEmpty() {
		return b.first == target
	}
	held := b.BufferedRange()
	if held.Contains(target) {
		b.DiscardFirstBufferedFrames(target - held.Start())
		return true
	}
	if target == held.End() {
		b.DiscardAllBufferedFrames()
		b.first = target
		return true
	}
	return false
}

// ConsumeBufferedFrames copies the overlap between the held range and
// the request into the request's destination, shrinking both. It never
// blocks and never decodes; the shrunken request is returned.
func (b *ReadAhead) ConsumeBufferedFrames(w frames.Writable) frames.Writable {
	if !b.valid || b.IsEmpty() || w.Range.Empty() {
		return w
	}
	held := b.BufferedRange()
	if !held.Contains(w.Range.Start()) {
		return w
	}
	b.DiscardFirstBufferedFrames(w.Range.Start() - held.Start())

	consumable := min(b.bufferedFrames(), w.Range.Length())
	samples := b.signal.Samples(consumable)
	copy(w.Data[:samples], b.data[:samples])
	b.DiscardFirstBufferedFrames(consumable)

	return frames.Writable{
		Range: w.Range.ShrinkFront(consumable),
		Data:  w.Data[samples:],
	}
}

// BufferFrames stages newly decoded data and returns the unaccepted
// remainder, which is empty when everything fit. A gap before the
// offered range is bridged with silence in FillGapWithSilence mode;
// data overlapping the already held range is dropped. When capacity is
// exceeded the excess is returned to the caller rather than silently
// dropped.
func (b *ReadAhead) BufferFrames(mode BufferingMode, r frames.Readable) frames.Readable {
	if !b.valid || r.Range.Empty() {
		return r
	}
	if !frames.IsValidIndex(b.first) {
		// First data after a seek establishes the position.
		b.first = r.Range.Start()
	}

	writePos := b.first + b.bufferedFrames()
	if r.Range.Start() < writePos {
		// Overlap with frames already staged: keep the staged data,
		// it has been accounted for already.
		drop := min(writePos-r.Range.Start(), r.Range.Length())
		r = frames.Readable{
			Range: r.Range.ShrinkFront(drop),
			Data:  r.Data[b.signal.Samples(drop):],
		}
		if r.Range.Empty() {
			return r
		}
	}

	if gap := r.Range.Start() - writePos; gap > 0 {
		if mode != FillGapWithSilence {
			return r
		}
		accepted := min(gap, b.freeFrames())
		b.appendSilence(accepted)
		if accepted < gap {
			return r
		}
	}

	accepted := min(r.Range.Length(), b.freeFrames())
	samples := b.signal.Samples(accepted)
	b.data = append(b.data, r.Data[:samples]...)

	return frames.Readable{
		Range: r.Range.ShrinkFront(accepted),
		Data:  r.Data[samples:],
	}
}

func (b *ReadAhead) freeFrames() int64 {
	return b.capacity - b.bufferedFrames()
}

func (b *ReadAhead) appendSilence(frameCount int64) {
	samples := b.signal.Samples(frameCount)
	for range samples {
		b.data = append(b.data, 0)
	}
}

// DiscardFirstBufferedFrames drops up to n frames from the front of
// the held range and returns the number actually discarded. The empty
// position advances past the discarded frames.
func (b *ReadAhead) DiscardFirstBufferedFrames(n int64) int64 {
	if !b.valid || n <= 0 {
		return 0
	}
	discard := min(n, b.bufferedFrames())
	samples := b.signal.Samples(discard)
	b.data = b.data[:copy(b.data, b.data[samples:])]
	b.first += discard
	return discard
}

// DiscardLastBufferedFrames drops up to n frames from the back of the
// held range and returns the number actually discarded.
func (b *ReadAhead) DiscardLastBufferedFrames(n int64) int64 {
	if !b.valid || n <= 0 {
		return 0
	}
	discard := min(n, b.bufferedFrames())
	b.data = b.data[:int64(len(b.data))-b.signal.Samples(discard)]
	return discard
}

// DiscardAllBufferedFrames clears the held range. The buffer stays
// valid, empty at the position following the previously held range.
func (b *ReadAhead) DiscardAllBufferedFrames() {
	if !b.valid {
		return
	}
	if frames.IsValidIndex(b.first) {
		b.first += b.bufferedFrames()
	}
	b.data = b.data[:0]
}
