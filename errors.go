// SPDX-License-Identifier: EPL-2.0

package framesource

import "errors"

var (
	// ErrUnknownFormat is returned when no opener is registered for
	// the requested format key.
	ErrUnknownFormat = errors.New("unknown audio format")
)
