// SPDX-License-Identifier: EPL-2.0

package timebase

// FramesPerMP3Packet is the fixed number of samples one MP3 packet
// decodes to, across all channels.
const FramesPerMP3Packet = 1152

// DefaultMP3PrerollPackets is the number of MP3 packets decoded and
// discarded before a seek target. Up to 29 packets could be required
// in the worst case (bit reservoir spanning), but decoding that many
// after every seek raises the chance of dropouts. 9 packets drain the
// bit reservoir and produced exact results across VBR and CBR test
// material, so that is the default compromise. Tunable per source via
// PrerollPolicy.
const DefaultMP3PrerollPackets = 9

// PrerollPolicy yields the number of frames that must be decoded and
// discarded before a requested position so that decoder-internal state
// (bit reservoirs, window overlap) is primed for sample accuracy.
// The zero value uses the default MP3 packet count.
type PrerollPolicy struct {
	// MP3PrerollPackets overrides DefaultMP3PrerollPackets when > 0.
	MP3PrerollPackets int
}

// PrerollFrameCount returns the seek preroll for a codec family.
// containerHint is the container's own reported preroll; the result is
// never smaller than the hint, and never zero for families known to
// require state priming.
func (p PrerollPolicy) PrerollFrameCount(family Family, channelCount int, containerHint int64) int64 {
	if containerHint < 0 {
		containerHint = 0
	}
	switch family {
	case FamilyMP3:
		packets := p.MP3PrerollPackets
		if packets <= 0 {
			packets = DefaultMP3PrerollPackets
		}
		if channelCount <= 0 {
			channelCount = 1
		}
		preroll := int64(packets) * int64(FramesPerMP3Packet/channelCount)
		return max(preroll, containerHint)
	case FamilyAAC:
		return max(int64(AACDecoderDelayFrames), containerHint)
	default:
		return containerHint
	}
}
