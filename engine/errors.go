// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrUnsupportedStream covers streams that cannot be opened at
	// all: unknown or unlimited duration, backward frame ranges,
	// unusable signal parameters.
	ErrUnsupportedStream = errors.New("unsupported stream")

	// ErrFrameRangeOutOfBounds is returned for read requests starting
	// outside the stream's frame index range.
	ErrFrameRangeOutOfBounds = errors.New("frame range out of bounds")

	// ErrShortBuffer is returned when the destination cannot hold the
	// requested range.
	ErrShortBuffer = errors.New("destination buffer too small")

	ErrSeek       = errors.New("seek failed")
	ErrReadPacket = errors.New("reading packet failed")
	ErrDecode     = errors.New("decoding failed")
	ErrResample   = errors.New("resampling failed")
)
