// SPDX-License-Identifier: EPL-2.0

// Package engine contains the decode loop that turns an imprecise
// demuxer/decoder pair into a sample-accurate frame source.
//
// Real-world codecs do not guarantee aligned output after a random
// seek: timestamps go missing, decoded runs overlap or skip frames,
// trailing encoder padding extends past the declared duration, and a
// packet may need several send attempts. The Reader compensates for
// all of this with a per-request state machine:
//
//	AdjustPosition -> Feeding -> Reconciling -> Draining -> Done | Aborted
//
// AdjustPosition reuses staged data or seeks the demuxer ahead of the
// target by the codec family's preroll. Feeding pulls packets and
// retries partial sends. Reconciling places every decoded run into the
// frame-index space and fixes overlaps (rewind), gaps (silence) and
// leftover preroll (discard) before copying into the caller's buffer
// and staging the remainder. Draining pads a short tail with silence
// once the decoder is flushed.
//
// Each read call drives the machine to completion synchronously; one
// Reader must never be shared between goroutines. Callers that need
// concurrent decoding open independent instances.
package engine
