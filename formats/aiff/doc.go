// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF audio file decoding for the
// frame-accurate decode loop.
//
// Decoding is built on github.com/go-audio/aiff. The library only
// reads forward, so the demuxer implements backward seeks by reopening
// the decoder and skipping ahead; the skip is frame exact, so seeking
// remains sample accurate at the cost of re-decoding on rewinds.
//
// # Supported Formats
//
//   - PCM 8/16/24/32-bit big-endian (AIFF integer samples are signed)
//   - Any channel count and sample rate
//
// # Usage
//
//	file, _ := os.Open("audio.aiff")
//	demux, dec, err := aiff.Opener{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
package aiff
