// SPDX-License-Identifier: EPL-2.0

// Package framesource provides sample-accurate, randomly seekable
// access to decoded audio streams.
//
// A stream is addressed in frame indices: one frame is one sample per
// channel, and index zero is the first decodable frame. Any half-open
// frame range inside the stream can be requested in any order, and
// re-reading a range always yields identical samples, regardless of
// how coarsely the underlying container seeks.
//
// # Supported Formats
//
// The package bundles openers for the following formats:
//   - WAV (PCM and IEEE float) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//   - FLAC via formats/flac
//   - ALAC (M4A/MP4) via formats/alac
//
// # Quick Start
//
// Open a file and read a frame range:
//
//	src, err := framesource.OpenFile("audio.flac", framesource.Params{})
//	if err != nil {
//	    // Handle error
//	}
//	defer src.Close()
//
//	all := src.FrameIndexRange()
//	dst := make([]float32, 1000*src.Signal().Channels)
//	got, err := src.ReadFrames(frames.Forward(44100, 1000), dst)
//
// ReadFrames fills dst with interleaved float32 samples in [-1, 1].
// Reads never fail over data anomalies: decoder gaps, overlaps and
// short tails are compensated with rewinds, silence and truncation,
// and Stats reports what was fixed up.
//
// # Sequential Processing
//
// For streaming pipelines, Samples adapts a source into a sequential
// audio.Source that composes with the resampling primitives:
//
//	resampler := audio.NewResampler(src.Samples(0), 16000)
//	mono := audio.NewMonoMixer(resampler)
//
//	buf := make([]float32, 4096)
//	n, err := mono.ReadSamples(buf)
//
// Or use the one-call convenience wrapper:
//
//	pcm16, rate, err := framesource.ResampleToMono16(src.Samples(0), 8000, 4096)
//
// # Custom Registries
//
// Formats are looked up in a registry of openers. DefaultRegistry
// carries every bundled format; callers can register their own:
//
//	reg := codec.NewRegistry()
//	reg.Register("wav", wav.Opener{})
//	src, err := framesource.OpenWith(reg, reader, "wav", framesource.Params{})
//
// # Writing WAV Files
//
// The wav subpackage can also write PCM WAV files:
//
//	samples := []int16{100, -100, 200, -200}
//	file, _ := os.Create("output.wav")
//	wav.WriteWAV16(file, 8000, samples)
//
// See the individual subpackages for more detailed documentation.
package framesource
