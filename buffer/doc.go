// SPDX-License-Identifier: EPL-2.0

// Package buffer provides the read-ahead staging buffer used by the
// decode loop.
//
// Decoders routinely produce more frames than a read request asked
// for; the remainder is staged here so the next sequential read can be
// served without touching the decoder. The buffer also carries the
// decode loop's position between reads and, through its invalid state,
// forwards unrecoverable errors to the next read attempt.
package buffer
