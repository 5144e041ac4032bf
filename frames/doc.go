// SPDX-License-Identifier: EPL-2.0

// Package frames defines the normalized frame-index coordinate space
// shared by all decoding components.
//
// A frame is one sample per channel at a single time instant, not a
// container packet. Frame indices are zero-based and count frames from
// the start of the audible stream. IndexRange values describe spans of
// frames as half-open intervals [Start, End) and are immutable; every
// mutation returns a new value.
//
// Two sentinel indices exist outside the valid space: UnknownIndex for
// positions that will only be known once the decoder reports a
// timestamp (e.g. right after a seek), and InvalidIndex for positions
// lost to an unrecoverable error.
package frames
