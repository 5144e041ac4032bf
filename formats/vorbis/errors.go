// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	// ErrNotVorbisFile indicates the input is not an Ogg Vorbis stream.
	ErrNotVorbisFile = errors.New("not an Ogg Vorbis file")

	// ErrUnknownDuration indicates the stream length could not be
	// determined, which random access requires.
	ErrUnknownDuration = errors.New("Vorbis stream duration unknown")
)
