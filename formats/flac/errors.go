// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	// ErrNotFlacFile is returned when the stream is not a FLAC file.
	ErrNotFlacFile = errors.New("not a FLAC file")

	// ErrUnsupportedFlacLayout is returned when the stream uses a bit
	// depth or channel layout the decoder cannot handle.
	ErrUnsupportedFlacLayout = errors.New("unsupported FLAC layout")

	// ErrUnknownDuration is returned when the STREAMINFO block does
	// not record the total sample count.
	ErrUnknownDuration = errors.New("unknown FLAC duration")
)
