// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrNotMP3File indicates the input is not a decodable MP3 stream.
	ErrNotMP3File = errors.New("not an MP3 file")

	// ErrUnknownDuration indicates the stream length could not be
	// determined, which random access requires.
	ErrUnknownDuration = errors.New("MP3 stream duration unknown")
)
