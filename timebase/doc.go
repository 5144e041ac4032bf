// SPDX-License-Identifier: EPL-2.0

// Package timebase maps between a stream's native timestamp domain and
// the internal zero-based frame-index domain.
//
// Containers report timestamps in a rational time base (ticks of
// Num/Den seconds). The Converter rescales such timestamps into
// 1/sampleRate units relative to the stream's start time, so that the
// first audible frame sits at index 0 regardless of encoder lead-in.
//
// The package also owns the seek-preroll policy: seeking to a native
// codec frame boundary is not sufficient for every codec, because
// decoder-internal state (bit reservoirs, window overlap) requires
// decoding extra frames before the target that are then discarded.
// PrerollPolicy produces that frame count per codec family, bounded
// below by the container's own preroll hint.
package timebase
