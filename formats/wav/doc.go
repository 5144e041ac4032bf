// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding is exposed through Opener, which yields a demuxer/decoder
// pair for the frame-accurate decode loop. Header parsing is handled by
// github.com/go-audio/wav; the PCM payload itself is read directly from
// the data chunk, which makes seeking sample exact.
//
// # Supported Formats
//
//   - PCM 8/16/24/32-bit integer
//   - IEEE float 32-bit
//   - Any channel count and sample rate
//
// # Decoding
//
//	file, _ := os.Open("audio.wav")
//	demux, dec, err := wav.Opener{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//
// The pair is normally handed to the decode loop rather than driven by
// hand; see the framesource package.
//
// # Writing WAV Files
//
// Use WriteWAV16 to create mono 16-bit files:
//
//	samples := []int16{100, -100, 200, -200}
//	file, _ := os.Create("output.wav")
//	err := wav.WriteWAV16(file, 8000, samples)
//
// The encoder is optimized for minimal allocations and writes large
// files in chunks.
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a valid WAV file
//   - ErrUnsupportedWavLayout: valid WAV, but an unsupported sample
//     format or layout
package wav
