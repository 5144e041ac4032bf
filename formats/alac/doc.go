// SPDX-License-Identifier: EPL-2.0

// Package alac provides Apple Lossless (ALAC) audio decoding for the
// frame-accurate decode loop.
//
// Decoding is built on github.com/mycophonic/saprobe-alac, which
// streams interleaved little-endian signed PCM out of M4A/MP4
// containers. The decoder only reads forward, so the demuxer
// implements backward seeks by reopening it and skipping ahead. The
// total frame count comes from the container's track table, probed
// with github.com/abema/go-mp4.
//
// # Supported Formats
//
//   - ALAC 16/20/24/32-bit in M4A or MP4 containers
//   - Any channel count and sample rate
//
// # Usage
//
//	file, _ := os.Open("audio.m4a")
//	demux, dec, err := alac.Opener{}.Open(file)
//	if err != nil {
//	    // Handle error
//	}
package alac
