// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/timebase"
)

// ErrInjected is returned by mock streams configured to fail.
var ErrInjected = errors.New("injected failure")

// StreamConfig scripts a mock demuxer/decoder pair. The native time
// domain uses a 1/SampleRate time base, so native timestamps count
// raw stream frames.
//
// Waveform generates the sample at an absolute native frame for a
// channel. Keeping it a pure function of the frame number makes
// bit-identity checks across seeks trivial.
type StreamConfig struct {
	Channels   int
	SampleRate int
	Family     timebase.Family

	// StartTime and Duration are reported to the reader as-is;
	// StartTime may be timebase.NoTime.
	StartTime int64
	Duration  int64

	// DataStart and DataEnd bound the frames the decoder can really
	// produce. A DataEnd short of Duration models files that decode
	// shorter than declared; one past it models trailing encoder
	// padding. DataEnd defaults to Duration.
	DataStart int64
	DataEnd   int64

	PacketFrames int
	// SeekGranularity rounds seek targets down to a multiple of the
	// given frame count, modeling keyframe-only container seeking.
	// 0 seeks exactly.
	SeekGranularity int64
	FrameSize       int
	SeekPreroll     int64

	// OmitFrameTimestamps makes the decoder report a timestamp only
	// on the first run after a flush, forcing the reader to infer
	// continuation for everything that follows.
	OmitFrameTimestamps bool
	// RunsPerPacket splits each accepted packet into that many decoded
	// runs of roughly equal size. 0 decodes one run per packet.
	RunsPerPacket int
	// LeadInOverlap makes the second packet after a flush decode into
	// a run starting that many frames before the packet, re-emitting
	// data the first packet already delivered.
	LeadInOverlap int64
	// SkipAtStart makes the first packet after a flush decode into a
	// run starting that many frames after the packet, dropping data.
	SkipAtStart int64
	// AgainInterval refuses every Nth packet once with codec.ErrAgain
	// before accepting it on resend.
	AgainInterval int
	// OtherStreamEvery interleaves a packet of a non-audio stream
	// every N packets.
	OtherStreamEvery int

	FailSeek bool
	// FailReadAt makes ReadPacket fail once the demuxer position
	// reaches the given native frame. 0 disables.
	FailReadAt int64

	Waveform func(frame int64, ch int) float32
}

// SineStreamWaveform returns a deterministic per-channel sine keyed on
// absolute frame numbers.
func SineStreamWaveform(sampleRate int) func(frame int64, ch int) float32 {
	return func(frame int64, ch int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * (440 + 7*float64(ch)) * t))
	}
}

type decodedRun struct {
	start   int64 // absolute native frame
	count   int64
	withPTS bool
}

// MockStream implements codec.Demuxer and codec.Decoder over a
// scripted waveform. Pass the same value for both collaborators.
type MockStream struct {
	cfg StreamConfig

	pos        int64 // demuxer read position, absolute native frame
	packetSeq  int
	sendSeq    int
	refusedSeq int

	queue             []decodedRun
	draining          bool
	packetsSinceFlush int
	runsSinceFlush    int

	frameBuf []float32

	Seeks      int
	FlushCalls int
	Closed     bool
}

// NewMockStream builds a scripted stream. Zero-value fields get usable
// defaults (mono 44.1 kHz ramp data, 1024-frame packets).
func NewMockStream(cfg StreamConfig) *MockStream {
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 44100
	}
	if cfg.PacketFrames == 0 {
		cfg.PacketFrames = 1024
	}
	if cfg.DataEnd == 0 {
		cfg.DataEnd = cfg.Duration
	}
	if cfg.Waveform == nil {
		cfg.Waveform = func(frame int64, ch int) float32 {
			return float32(frame%997) / 997
		}
	}
	return &MockStream{
		cfg: cfg,
		pos: cfg.DataStart,
	}
}

func (s *MockStream) Properties() codec.Properties {
	return codec.Properties{
		Family:      s.cfg.Family,
		Stream:      0,
		Channels:    s.cfg.Channels,
		SampleRate:  s.cfg.SampleRate,
		TimeBase:    timebase.Rational{Num: 1, Den: int64(s.cfg.SampleRate)},
		StartTime:   s.cfg.StartTime,
		Duration:    s.cfg.Duration,
		FrameSize:   s.cfg.FrameSize,
		SeekPreroll: s.cfg.SeekPreroll,
	}
}

func (s *MockStream) ReadPacket(p *codec.Packet) error {
	if s.cfg.FailReadAt > 0 && s.pos >= s.cfg.FailReadAt {
		return ErrInjected
	}
	if s.pos >= s.cfg.DataEnd {
		return io.EOF
	}

	s.packetSeq++
	if s.cfg.OtherStreamEvery > 0 && s.packetSeq%s.cfg.OtherStreamEvery == 0 {
		p.Stream = 1
		p.StreamTime = timebase.NoTime
		p.Data = []byte{0}
		return nil
	}

	count := int64(s.cfg.PacketFrames)
	if rest := s.cfg.DataEnd - s.pos; count > rest {
		count = rest
	}
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[0:8], uint64(s.pos))
	binary.LittleEndian.PutUint64(data[8:16], uint64(count))

	p.Stream = 0
	p.StreamTime = s.pos
	p.Data = data
	s.pos += count
	return nil
}

func (s *MockStream) Seek(streamTime int64, backward bool) error {
	if s.cfg.FailSeek {
		return ErrInjected
	}
	s.Seeks++
	target := streamTime
	if g := s.cfg.SeekGranularity; g > 0 {
		if rel := target - s.cfg.DataStart; rel > 0 {
			target -= rel % g
		}
	}
	if target < s.cfg.DataStart {
		target = s.cfg.DataStart
	}
	if target > s.cfg.DataEnd {
		target = s.cfg.DataEnd
	}
	s.pos = target
	return nil
}

func (s *MockStream) SendPacket(p *codec.Packet) error {
	if p.Drain() {
		s.draining = true
		return nil
	}
	if p.Stream != 0 {
		return nil
	}

	s.sendSeq++
	if s.cfg.AgainInterval > 0 &&
		s.sendSeq%s.cfg.AgainInterval == 0 &&
		s.refusedSeq != s.sendSeq {
		s.refusedSeq = s.sendSeq
		s.sendSeq--
		return codec.ErrAgain
	}

	start := int64(binary.LittleEndian.Uint64(p.Data[0:8]))
	count := int64(binary.LittleEndian.Uint64(p.Data[8:16]))

	switch s.packetsSinceFlush {
	case 0:
		if skip := s.cfg.SkipAtStart; skip > 0 {
			if skip > count {
				skip = count
			}
			start += skip
			count -= skip
		}
	case 1:
		if s.cfg.LeadInOverlap > 0 {
			from := start - s.cfg.LeadInOverlap
			if from < s.cfg.DataStart {
				from = s.cfg.DataStart
			}
			count += start - from
			start = from
		}
	}
	s.packetsSinceFlush++

	runs := int64(s.cfg.RunsPerPacket)
	if runs <= 0 {
		runs = 1
	}
	per := count / runs
	if per <= 0 {
		per = count
	}
	for count > 0 {
		n := min(per, count)
		s.queue = append(s.queue, decodedRun{
			start:   start,
			count:   n,
			withPTS: !s.cfg.OmitFrameTimestamps || s.runsSinceFlush == 0,
		})
		s.runsSinceFlush++
		start += n
		count -= n
	}
	return nil
}

func (s *MockStream) ReceiveFrame(f *codec.Frame) error {
	if len(s.queue) == 0 {
		if s.draining {
			return io.EOF
		}
		return codec.ErrAgain
	}
	run := s.queue[0]
	s.queue = s.queue[1:]

	samples := run.count * int64(s.cfg.Channels)
	if int64(cap(s.frameBuf)) < samples {
		s.frameBuf = make([]float32, samples)
	}
	s.frameBuf = s.frameBuf[:samples]
	for i := int64(0); i < run.count; i++ {
		for ch := 0; ch < s.cfg.Channels; ch++ {
			s.frameBuf[i*int64(s.cfg.Channels)+int64(ch)] =
				s.cfg.Waveform(run.start+i, ch)
		}
	}

	f.StreamTime = timebase.NoTime
	if run.withPTS {
		f.StreamTime = run.start
	}
	f.NumFrames = int(run.count)
	f.Format = codec.FormatF32
	f.Channels = s.cfg.Channels
	f.F32 = s.frameBuf
	f.I16 = nil
	return nil
}

func (s *MockStream) Flush() {
	s.FlushCalls++
	s.queue = s.queue[:0]
	s.draining = false
	s.packetsSinceFlush = 0
	s.runsSinceFlush = 0
}

func (s *MockStream) Close() error {
	s.Closed = true
	return nil
}
