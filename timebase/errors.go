// SPDX-License-Identifier: EPL-2.0

package timebase

import "errors"

var (
	ErrInvalidTimeBase     = errors.New("invalid stream time base")
	ErrUnsupportedDuration = errors.New("unknown or unlimited stream duration")
	ErrBackwardRange       = errors.New("backward stream frame range")
)
