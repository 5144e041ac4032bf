// SPDX-License-Identifier: EPL-2.0

// Package codec defines the contracts between the decode engine and
// the external demuxing/decoding collaborators.
//
// A Demuxer pulls encoded packets out of a container and seeks
// coarsely; a Decoder turns packets into runs of decoded frames using
// a feed/drain protocol with explicit backpressure (ErrAgain) and an
// end-of-stream drain marker. Neither side is expected to be sample
// accurate: timestamps may be missing, seeks may land early, and
// decoded runs may overlap or fall short. Compensating for all of
// that is the engine's job, not the collaborator's.
//
// Concrete collaborators for common formats live under formats/.
// Formats whose libraries already emit decoded PCM pair their demuxer
// with the shared PCMDecoder, carrying raw PCM bytes as the packet
// payload.
package codec
