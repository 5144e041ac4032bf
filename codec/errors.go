// SPDX-License-Identifier: EPL-2.0

package codec

import "errors"

var (
	// ErrAgain signals a transient condition: the decoder needs the
	// packet to be resent, or needs more input before it can produce
	// a frame. Never surfaced to callers of the decode loop.
	ErrAgain = errors.New("codec busy, try again")

	// ErrNoAudioStream indicates the container holds no decodable
	// audio stream.
	ErrNoAudioStream = errors.New("no audio stream found")

	// ErrUnsupportedLayout indicates a PCM payload encoding the
	// built-in PCM decoder cannot handle.
	ErrUnsupportedLayout = errors.New("unsupported PCM layout")
)
