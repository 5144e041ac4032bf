// SPDX-License-Identifier: EPL-2.0

// Package flac provides FLAC audio decoding for the frame-accurate
// decode loop.
//
// Decoding is built on github.com/mewkiz/flac. Seeks are coarse: the
// library lands on the frame boundary at or before the requested
// sample, and the demuxer reports the landing position through packet
// timestamps so callers can discard the lead-in exactly.
//
// # Supported Formats
//
//   - FLAC 8 to 32-bit, any channel count and sample rate
//   - Streams with a known total sample count (STREAMINFO)
//
// # Usage
//
//	file, _ := os.Open("audio.flac")
//	demux, dec, err := flac.Opener{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
package flac
