// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio decoding for the
// frame-accurate decode loop.
//
// Decoding is built on github.com/jfreymuth/oggvorbis, which decodes
// to interleaved float32 samples and positions sample exactly using
// the Ogg granule positions. Packets carry fixed-size runs of decoded
// samples with their frame timestamps.
//
// # Usage
//
//	file, _ := os.Open("audio.ogg")
//	demux, dec, err := vorbis.Opener{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//
// A stream whose total length cannot be determined is rejected with
// ErrUnknownDuration: without it the frame index range is unbounded
// and random access is impossible.
package vorbis
