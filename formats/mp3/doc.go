// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio decoding for the frame-accurate
// decode loop.
//
// Decoding is built on github.com/hajimehoshi/go-mp3, which emits
// 16-bit stereo PCM and positions on MP3 frame boundaries (1152 sample
// frames). Packets carry one MP3 frame worth of PCM; seeking lands on
// the preceding frame boundary and the decode loop discards the
// difference.
//
// MP3 decoders need to warm up after a seek before their output is
// bit exact, so the decode loop applies a preroll of several frames
// when jumping into an MP3 stream; see the timebase package.
//
// # Usage
//
//	file, _ := os.Open("audio.mp3")
//	demux, dec, err := mp3.Opener{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//
// A stream whose total length cannot be determined is rejected with
// ErrUnknownDuration: without it the frame index range is unbounded
// and random access is impossible.
package mp3
