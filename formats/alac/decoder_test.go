// SPDX-License-Identifier: EPL-2.0

package alac

import (
	"errors"
	"io"
	"testing"

	gomp4 "github.com/abema/go-mp4"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// mockPCMStream simulates a forward-only StreamDecoder emitting 16-bit
// mono samples whose value is the frame they belong to.
type mockPCMStream struct {
	totalFrames int64
	pos         int64
	maxRead     int
}

func (m *mockPCMStream) Read(p []byte) (int, error) {
	if m.pos >= m.totalFrames {
		return 0, io.EOF
	}
	if m.maxRead > 0 && len(p) > m.maxRead {
		p = p[:m.maxRead]
	}
	n := 0
	for len(p)-n >= 2 && m.pos < m.totalFrames {
		v := uint16(int16(m.pos % 30000))
		p[n] = byte(v)
		p[n+1] = byte(v >> 8)
		n += 2
		m.pos++
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func newMockDemuxer(totalFrames int64) (*demuxer, *mockPCMStream) {
	stream := &mockPCMStream{totalFrames: totalFrames}
	return &demuxer{
		reader: stream,
		reopen: func() (io.Reader, error) {
			stream.pos = 0
			return stream, nil
		},
		frameBytes: 2,
		props: codec.Properties{
			Family:     timebase.FamilyALAC,
			Channels:   1,
			SampleRate: 44100,
			TimeBase:   timebase.Rational{Num: 1, Den: 44100},
			Duration:   totalFrames,
		},
		totalFrames: totalFrames,
	}, stream
}

func TestDemuxer_SequentialPackets(t *testing.T) {
	t.Parallel()

	demux, _ := newMockDemuxer(packetFrames + 300)

	var p codec.Packet
	if err := demux.ReadPacket(&p); err != nil {
		t.Fatalf("ReadPacket() = %v", err)
	}
	if p.StreamTime != 0 || len(p.Data) != packetFrames*2 {
		t.Fatalf("packet 1: time %d, %d bytes", p.StreamTime, len(p.Data))
	}
	if err := demux.ReadPacket(&p); err != nil {
		t.Fatalf("ReadPacket() 2 = %v", err)
	}
	if p.StreamTime != packetFrames || len(p.Data) != 300*2 {
		t.Fatalf("packet 2: time %d, %d bytes", p.StreamTime, len(p.Data))
	}
	if err := demux.ReadPacket(&p); err != io.EOF {
		t.Errorf("ReadPacket() at end = %v, want io.EOF", err)
	}
}

func TestDemuxer_PayloadRoundTrip(t *testing.T) {
	t.Parallel()

	demux, _ := newMockDemuxer(150)
	dec, err := codec.NewPCMDecoder(codec.LayoutI16LE, 16, 1)
	if err != nil {
		t.Fatalf("NewPCMDecoder() = %v", err)
	}

	var p codec.Packet
	if err := demux.ReadPacket(&p); err != nil {
		t.Fatalf("ReadPacket() = %v", err)
	}
	dec.SendPacket(&p)
	var f codec.Frame
	if err := dec.ReceiveFrame(&f); err != nil {
		t.Fatalf("ReceiveFrame() = %v", err)
	}
	if f.NumFrames != 150 {
		t.Fatalf("NumFrames = %d", f.NumFrames)
	}
	for i, v := range f.I16 {
		if v != int16(i) {
			t.Fatalf("I16[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestDemuxer_BackwardSeekReopens(t *testing.T) {
	t.Parallel()

	demux, _ := newMockDemuxer(20000)
	var p codec.Packet
	if err := demux.ReadPacket(&p); err != nil {
		t.Fatalf("ReadPacket() = %v", err)
	}

	if err := demux.Seek(777, true); err != nil {
		t.Fatalf("Seek() = %v", err)
	}
	if err := demux.ReadPacket(&p); err != nil {
		t.Fatalf("ReadPacket() after seek = %v", err)
	}
	if p.StreamTime != 777 {
		t.Errorf("StreamTime = %d, want 777", p.StreamTime)
	}
	first := int16(uint16(p.Data[0]) | uint16(p.Data[1])<<8)
	if first != 777 {
		t.Errorf("first sample = %d, want 777", first)
	}
}

func TestDemuxer_ForwardSeekSkips(t *testing.T) {
	t.Parallel()

	demux, stream := newMockDemuxer(20000)
	if err := demux.Seek(19500, true); err != nil {
		t.Fatalf("Seek() = %v", err)
	}
	if stream.pos != 19500 {
		t.Errorf("stream pos = %d, want 19500", stream.pos)
	}
	var p codec.Packet
	if err := demux.ReadPacket(&p); err != nil {
		t.Fatalf("ReadPacket() = %v", err)
	}
	if p.StreamTime != 19500 || len(p.Data) != 500*2 {
		t.Errorf("packet: time %d, %d bytes", p.StreamTime, len(p.Data))
	}
}

func TestDemuxer_SeekClampsToRange(t *testing.T) {
	t.Parallel()

	demux, _ := newMockDemuxer(5000)
	if err := demux.Seek(1<<40, false); err != nil {
		t.Fatalf("Seek(big) = %v", err)
	}
	var p codec.Packet
	if err := demux.ReadPacket(&p); err != io.EOF {
		t.Errorf("ReadPacket() past end = %v, want io.EOF", err)
	}
}

func TestDemuxer_ReopenFailure(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("stream vanished")
	demux, _ := newMockDemuxer(5000)
	demux.pos = 4000
	demux.reopen = func() (io.Reader, error) { return nil, errBroken }
	if err := demux.Seek(100, true); !errors.Is(err, errBroken) {
		t.Errorf("Seek() = %v, want wrapped reopen error", err)
	}
}

func TestFrameCountPrefersAudioTrack(t *testing.T) {
	t.Parallel()

	// Chapter or video tracks can outlast the audio; their duration
	// must not inflate the frame count. The track running at the
	// decoder's sample rate wins.
	tracks := []*gomp4.TrackInfo{
		{TrackID: 1, Timescale: 600, Duration: 2400},
		{TrackID: 2, Timescale: 44100, Duration: 44100},
	}
	got, err := frameCountFromTracks(tracks, 44100)
	if err != nil {
		t.Fatalf("frameCountFromTracks() = %v", err)
	}
	if got != 44100 {
		t.Errorf("frame count = %d, want 44100 from the audio track", got)
	}
}

func TestFrameCountFallsBackToLongestTrack(t *testing.T) {
	t.Parallel()

	// Without any track identifiable as audio the longest duration,
	// rescaled to the sample rate, still yields a usable length.
	tracks := []*gomp4.TrackInfo{
		{TrackID: 1, Timescale: 1000, Duration: 2000},
	}
	got, err := frameCountFromTracks(tracks, 44100)
	if err != nil {
		t.Fatalf("frameCountFromTracks() = %v", err)
	}
	if got != 2*44100 {
		t.Errorf("frame count = %d, want %d", got, 2*44100)
	}

	if _, err := frameCountFromTracks(nil, 44100); !errors.Is(err, ErrUnknownDuration) {
		t.Errorf("empty track table = %v, want ErrUnknownDuration", err)
	}
}

func TestPayloadLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		want     codec.PCMLayout
		wantErr  bool
	}{
		{16, codec.LayoutI16LE, false},
		{20, codec.LayoutI24LE, false},
		{24, codec.LayoutI24LE, false},
		{32, codec.LayoutI32LE, false},
		{8, 0, true},
	}
	for _, tt := range tests {
		got, err := payloadLayout(tt.bitDepth)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedAlacLayout) {
				t.Errorf("payloadLayout(%d) err = %v", tt.bitDepth, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("payloadLayout(%d) = %v, %v", tt.bitDepth, got, err)
		}
	}
}
