// SPDX-License-Identifier: EPL-2.0

package alac

import "errors"

var (
	// ErrNotAlacFile is returned when the stream is not an M4A/MP4
	// container with an ALAC track.
	ErrNotAlacFile = errors.New("not an ALAC file")

	// ErrUnsupportedAlacLayout is returned when the track uses a bit
	// depth or channel layout the decoder cannot handle.
	ErrUnsupportedAlacLayout = errors.New("unsupported ALAC layout")

	// ErrUnknownDuration is returned when the container does not
	// record a usable track duration.
	ErrUnknownDuration = errors.New("unknown ALAC duration")
)
