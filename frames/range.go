// SPDX-License-Identifier: EPL-2.0

package frames

import "fmt"

// Index of a single sample frame within the normalized, zero-based
// coordinate space of a stream.
type Index = int64

const (
	// InvalidIndex marks a position that cannot be recovered without a
	// fresh seek.
	InvalidIndex Index = -1 << 63

	// UnknownIndex marks a position that will only be known once the
	// decoder delivers data with a timestamp, e.g. right after a seek.
	UnknownIndex Index = InvalidIndex + 1
)

// IsValidIndex reports whether idx denotes an actual frame position.
func IsValidIndex(idx Index) bool {
	return idx != InvalidIndex && idx != UnknownIndex
}

// IndexRange is a half-open range [Start, End) of frame indices.
// The zero value is the empty range at position 0.
type IndexRange struct {
	start Index
	end   Index
}

// Between creates the range [start, end). start must not exceed end.
func Between(start, end Index) IndexRange {
	if start > end {
		panic(fmt.Sprintf("frames: backward range [%d, %d)", start, end))
	}
	return IndexRange{start: start, end: end}
}

// Forward creates the range [start, start+length).
func Forward(start Index, length int64) IndexRange {
	return Between(start, start+length)
}

func (r IndexRange) Start() Index  { return r.start }
func (r IndexRange) End() Index    { return r.end }
func (r IndexRange) Length() int64 { return r.end - r.start }
func (r IndexRange) Empty() bool   { return r.start >= r.end }

// Contains reports whether idx lies within the half-open range.
func (r IndexRange) Contains(idx Index) bool {
	return idx >= r.start && idx < r.end
}

// ContainsRange reports whether other lies fully within r.
func (r IndexRange) ContainsRange(other IndexRange) bool {
	if other.Empty() {
		return true
	}
	return other.start >= r.start && other.end <= r.end
}

// Intersect returns the overlap of both ranges, or an empty range
// positioned at the clamped start when they do not overlap.
func Intersect(a, b IndexRange) IndexRange {
	start := max(a.start, b.start)
	end := min(a.end, b.end)
	if start > end {
		return IndexRange{start: start, end: start}
	}
	return IndexRange{start: start, end: end}
}

// ShrinkFront drops up to n frames from the front and returns the
// shrunken range.
func (r IndexRange) ShrinkFront(n int64) IndexRange {
	if n < 0 {
		panic("frames: negative shrink")
	}
	start := r.start + n
	if start > r.end {
		start = r.end
	}
	return IndexRange{start: start, end: r.end}
}

// ShrinkBack drops up to n frames from the back and returns the
// shrunken range.
func (r IndexRange) ShrinkBack(n int64) IndexRange {
	if n < 0 {
		panic("frames: negative shrink")
	}
	end := r.end - n
	if end < r.start {
		end = r.start
	}
	return IndexRange{start: r.start, end: end}
}

// SpanAdjacent merges two ranges where b starts exactly at the end
// of a. It reports false when the ranges are neither adjacent nor
// overlapping in that order.
func SpanAdjacent(a, b IndexRange) (IndexRange, bool) {
	if a.Empty() {
		return b, true
	}
	if b.Empty() {
		return a, true
	}
	if b.start != a.end {
		return IndexRange{}, false
	}
	return IndexRange{start: a.start, end: b.end}, true
}

func (r IndexRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.start, r.end)
}
