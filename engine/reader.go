// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"

	"github.com/ik5/framesource/buffer"
	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/frames"
	"github.com/ik5/framesource/resample"
	"github.com/ik5/framesource/timebase"
)

// A stream packet may produce multiple decoded frame runs. Staging
// more than a few runs in advance should be unlikely; a value too low
// only costs extra loop iterations because the same packet is fed to
// the decoder multiple times.
const maxDecodedRunsPerPacket = 4

// defaultPacketFrames sizes the staging buffer for codecs without a
// fixed frame size.
const defaultPacketFrames = 4096

// Config carries the tunable policies of a Reader.
type Config struct {
	Preroll timebase.PrerollPolicy
}

// Stats counts data anomalies the reader compensated for. Anomalies
// are not errors: overlapping, skipped and trailing frames are fixed
// up with rewinds, silence and truncation so that playback never
// aborts over them.
type Stats struct {
	// RewoundFrames counts frames discarded again after the decoder
	// re-emitted an overlapping range.
	RewoundFrames int64
	// SilenceFrames counts frames the decoder never produced that
	// were filled with silence (gaps, encoder lead-in, short tails).
	SilenceFrames int64
	// TrailingFramesDiscarded counts decoded frames past the
	// stream's declared end that were truncated.
	TrailingFramesDiscarded int64
	// DroppedFrames counts staged frames lost to buffer capacity.
	DroppedFrames int64
	// Seeks counts native demuxer seeks issued.
	Seeks int64
}

// Reader drives one demuxer/decoder pair and turns it into a
// sample-accurate, randomly seekable frame source. It owns the
// staging buffer and the in-flight packet exclusively and must not be
// used from multiple goroutines.
type Reader struct {
	demux    codec.Demuxer
	dec      codec.Decoder
	props    codec.Properties
	conv     *timebase.Converter
	signal   frames.Signal
	all      frames.IndexRange // normalized [0, length)
	preroll  int64
	dispatch *resample.Dispatcher
	buf      *buffer.ReadAhead
	stats    Stats

	packet  codec.Packet
	pending bool // packet not yet accepted by the decoder
	frame   codec.Frame
	// nextDecodedStart continues the index space across frames whose
	// timestamp the decoder did not report.
	nextDecodedStart frames.Index
}

// New derives the stream timing and builds a reader. The demuxer and
// decoder are adopted; Close releases both.
func New(demux codec.Demuxer, dec codec.Decoder, cfg Config) (*Reader, error) {
	props := demux.Properties()
	signal := frames.Signal{Channels: props.Channels, SampleRate: props.SampleRate}
	if !signal.Valid() {
		return nil, fmt.Errorf("%w: %d channels at %d Hz",
			ErrUnsupportedStream, props.Channels, props.SampleRate)
	}

	startTime := timebase.StartTimeFor(props.Family, props.StartTime, props.TimeBase, props.SampleRate)
	conv, err := timebase.NewConverter(props.TimeBase, startTime, props.Duration, props.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedStream, err)
	}

	// The stream's nominal range is mapped onto the internal range
	// starting at frame index 0.
	all := frames.Forward(0, conv.StreamFrameRange().Length())

	packetFrames := int64(props.FrameSize)
	if packetFrames <= 0 {
		packetFrames = defaultPacketFrames
	}

	return &Reader{
		demux:            demux,
		dec:              dec,
		props:            props,
		conv:             conv,
		signal:           signal,
		all:              all,
		preroll:          cfg.Preroll.PrerollFrameCount(props.Family, props.Channels, props.SeekPreroll),
		dispatch:         resample.NewDispatcher(signal),
		buf:              buffer.NewReadAhead(signal, maxDecodedRunsPerPacket*packetFrames),
		nextDecodedStart: frames.UnknownIndex,
	}, nil
}

func (r *Reader) Signal() frames.Signal              { return r.signal }
func (r *Reader) FrameIndexRange() frames.IndexRange { return r.all }
func (r *Reader) BitrateKbps() int64                 { return r.props.BitrateKbps }
func (r *Reader) Stats() Stats                       { return r.stats }

// Close releases the decoder and demuxer.
func (r *Reader) Close() error {
	decErr := r.dec.Close()
	demuxErr := r.demux.Close()
	if decErr != nil {
		return fmt.Errorf("closing decoder: %w", decErr)
	}
	if demuxErr != nil {
		return fmt.Errorf("closing demuxer: %w", demuxErr)
	}
	return nil
}

// readState names the phases of one read request.
type readState int

const (
	stateAdjustPosition readState = iota
	stateFeeding
	stateReconciling
	stateDraining
	stateDone
	stateAborted
)

// request is the mutable cursor of one ReadFrames call.
type request struct {
	state readState
	// base is the first frame index the output buffer maps to; the
	// sample at out[0] belongs to frame base.
	base frames.Index
	out  []float32
	// writable is the still unfilled part of the request.
	writable frames.IndexRange
	// readIndex is the position the engine believes it is at.
	readIndex frames.Index
	err       error
}

func (q *request) outSlice(n int64, signal frames.Signal) []float32 {
	off := signal.Samples(q.writable.Start() - q.base)
	return q.out[off : off+signal.Samples(n)]
}

func (q *request) abort(err error) {
	q.state = stateAborted
	q.err = err
}

// ReadFrames fills dst with the frames of want, which must start
// within FrameIndexRange. The returned range is the readable result
// starting at want.Start(); it is shorter than requested only at the
// end of the stream, where the request is clamped to the readable
// part, or after an unrecoverable error, in which case the error is
// returned as well. Data anomalies (overlaps, gaps, trailing overflow)
// are compensated and never fail a read.
func (r *Reader) ReadFrames(want frames.IndexRange, dst []float32) (frames.IndexRange, error) {
	if want.Start() < r.all.Start() || want.Start() > r.all.End() {
		return frames.Forward(want.Start(), 0),
			fmt.Errorf("%w: %v outside %v", ErrFrameRangeOutOfBounds, want, r.all)
	}
	want = frames.Intersect(want, r.all)
	if int64(len(dst)) < r.signal.Samples(want.Length()) {
		return frames.Forward(want.Start(), 0),
			fmt.Errorf("%w: %d samples for %v", ErrShortBuffer, len(dst), want)
	}
	resultStart := want.Start()

	// Consume all staged data before decoding anything new.
	after := r.buf.ConsumeBufferedFrames(frames.Writable{Range: want, Data: dst})
	if after.Range.Empty() {
		return frames.Between(resultStart, after.Range.Start()), nil
	}

	q := &request{
		state:     stateAdjustPosition,
		base:      after.Range.Start(),
		out:       after.Data,
		writable:  after.Range,
		readIndex: frames.UnknownIndex,
	}
	for q.state != stateDone && q.state != stateAborted {
		switch q.state {
		case stateAdjustPosition:
			r.stepAdjustPosition(q)
		case stateFeeding:
			r.stepFeeding(q)
		case stateReconciling:
			r.stepReconciling(q)
		case stateDraining:
			r.stepDraining(q)
		}
	}

	return frames.Between(resultStart, q.writable.Start()), q.err
}

// stepAdjustPosition establishes a decode position for the request
// start, reusing the staging buffer when possible and seeking the
// demuxer otherwise.
func (r *Reader) stepAdjustPosition(q *request) {
	start := q.writable.Start()

	if r.buf.IsValid() && r.buf.TrySeekToFirstFrame(start) {
		q.readIndex = r.buf.FirstFrame()
		q.state = stateFeeding
		return
	}
	r.buf.DiscardAllBufferedFrames()

	// Start decoding before the target to prime decoder state.
	seekIndex := max(0, start-r.preroll)
	// Seek to codec frame boundaries when the frame size is fixed.
	if r.props.FrameSize > 0 {
		seekIndex -= seekIndex % int64(r.props.FrameSize)
	}

	heldStart := r.buf.FirstFrame()
	if frames.IsValidIndex(heldStart) && heldStart >= seekIndex && heldStart <= start {
		// The decoder already sits shortly before the target; decoding
		// forward is cheaper than flushing and seeking. The established
		// position carries over so that frames without timestamps can
		// still be placed.
		q.readIndex = frames.UnknownIndex
		q.state = stateFeeding
		return
	}

	r.dec.Flush()
	r.stats.Seeks++
	if err := r.demux.Seek(r.conv.ToStreamTime(seekIndex), true); err != nil {
		// Unrecoverable: invalidate the position and abort.
		r.buf.Invalidate()
		q.abort(fmt.Errorf("%w: seeking to frame %d: %w", ErrSeek, seekIndex, err))
		return
	}

	// The position remains unknown until data actually arrives;
	// encoders may not report exact timestamps right after a seek.
	r.buf.Reset(frames.UnknownIndex)
	r.nextDecodedStart = frames.UnknownIndex
	q.readIndex = frames.UnknownIndex
	q.state = stateFeeding
}

// readNextPacket pulls the next packet of the target stream, entering
// drain mode at end of stream. It reports false on hard read errors.
func (r *Reader) readNextPacket(q *request) bool {
	for {
		err := r.demux.ReadPacket(&r.packet)
		if err == io.EOF {
			// Drain mode: flush residual frames out of the decoder
			// with a final empty packet instead of failing at EOF.
			r.packet = codec.Packet{
				Stream:     r.props.Stream,
				StreamTime: timebase.NoTime,
				Data:       nil,
			}
			return true
		}
		if err != nil {
			r.buf.Invalidate()
			q.abort(fmt.Errorf("%w: %w", ErrReadPacket, err))
			return false
		}
		if r.packet.Stream == r.props.Stream {
			return true
		}
		// Packets of other streams are discarded.
	}
}

// stepFeeding sends the pending or next packet to the decoder. A
// partial send (codec.ErrAgain) keeps the packet for the next round;
// a packet the decoder did not accept is never dropped.
func (r *Reader) stepFeeding(q *request) {
	if !r.buf.IsValid() {
		q.state = stateDone
		return
	}
	if !r.pending && q.writable.Empty() {
		q.state = stateDone
		return
	}
	if !r.pending {
		if !r.readNextPacket(q) {
			return
		}
		r.pending = true
	}

	switch err := r.dec.SendPacket(&r.packet); {
	case err == nil:
		// Ownership transferred on a successful send.
		r.pending = false
	case err == codec.ErrAgain:
		// Resend the same packet after draining frames.
	default:
		r.pending = false
		r.buf.Invalidate()
		q.abort(fmt.Errorf("%w: %w", ErrDecode, err))
		return
	}
	q.state = stateReconciling
}

// stepReconciling receives one decoded frame and reconciles it against
// the request. It loops on itself while frames keep coming.
func (r *Reader) stepReconciling(q *request) {
	if !r.buf.IsValid() {
		q.state = stateDone
		return
	}

	switch err := r.dec.ReceiveFrame(&r.frame); {
	case err == nil:
		r.reconcileFrame(q)
	case err == codec.ErrAgain:
		// Decoder needs more input.
		q.state = stateFeeding
	case err == io.EOF:
		q.state = stateDraining
	default:
		r.buf.Invalidate()
		q.abort(fmt.Errorf("%w: %w", ErrDecode, err))
	}
}

// stepDraining handles a fully flushed decoder. Due to encoder lead-in
// some files are shorter than reported; the unmet tail is padded with
// silence rather than aborting playback. Without any established
// position the whole read fails.
func (r *Reader) stepDraining(q *request) {
	if frames.IsValidIndex(q.readIndex) {
		if !q.writable.Empty() {
			length := q.writable.Length()
			frames.WriteSilence(q.outSlice(length, r.signal))
			r.stats.SilenceFrames += length
			q.writable = q.writable.ShrinkFront(length)
		}
		r.buf.Invalidate()
		q.state = stateDone
		return
	}
	r.buf.Invalidate()
	q.abort(fmt.Errorf("%w: end of stream before any readable position", ErrDecode))
}

// decodedFrameRange derives the frame-index span of the frame just
// received, inheriting "continues right after the previous frame"
// when the decoder reported no timestamp.
func (r *Reader) decodedFrameRange(q *request) (frames.IndexRange, bool) {
	start := r.nextDecodedStart
	if r.frame.StreamTime != timebase.NoTime {
		start = r.conv.ToFrameIndex(r.frame.StreamTime)
	} else if !frames.IsValidIndex(start) {
		start = q.readIndex
	}
	if !frames.IsValidIndex(start) {
		return frames.IndexRange{}, false
	}
	decoded := frames.Forward(start, int64(r.frame.NumFrames))
	r.nextDecodedStart = decoded.End()
	return decoded, true
}

// reconcileFrame is the core correctness logic, executed once per
// decoded frame: overlap rewind, gap silence, excess discard, consume
// and staging of the remainder.
func (r *Reader) reconcileFrame(q *request) {
	decoded, ok := r.decodedFrameRange(q)
	if !ok {
		// Neither the decoder nor any previous frame pinned down a
		// position; nothing can be placed in the index space.
		r.buf.Invalidate()
		q.abort(fmt.Errorf("%w: decoded data without any position", ErrDecode))
		return
	}
	if q.readIndex == frames.UnknownIndex {
		q.readIndex = decoded.Start()
	}

	// 1st step: the decoder re-emitted samples already accounted for.
	// Expected near the stream start due to encoder lead-in; rewind
	// staged and already copied output back to the overlap start.
	if decoded.Start() < q.readIndex {
		overlap := frames.Between(decoded.Start(), q.readIndex)
		consumed := frames.Between(q.base, max(q.readIndex, q.base))
		rewind := frames.Intersect(overlap, consumed)
		if !rewind.Empty() {
			r.stats.RewoundFrames += rewind.Length()
			// Drop staged read-ahead, then re-enter the rewound span of
			// the output into the writable window.
			r.buf.DiscardLastBufferedFrames(rewind.Length())
			q.writable = frames.Between(rewind.Start(), q.writable.End())
		}
		q.readIndex = decoded.Start()
	}

	decodedData, err := r.dispatch.Convert(&r.frame)
	if err != nil {
		r.buf.Invalidate()
		q.abort(fmt.Errorf("%w: %w", ErrResample, err))
		return
	}

	// 2nd step: the request starts before the current position; the
	// decoder skipped samples. Fill the missing span with silence.
	if q.writable.Start() < q.readIndex {
		missing := frames.Between(q.writable.Start(), min(q.readIndex, q.writable.End()))
		if !missing.Empty() {
			frames.WriteSilence(q.outSlice(missing.Length(), r.signal))
			r.stats.SilenceFrames += missing.Length()
			q.writable = q.writable.ShrinkFront(missing.Length())
		}
	}

	// 3rd step: decoded data precedes the request (leftover preroll).
	// Discard the non-overlapping prefix without emitting anything.
	if q.writable.Start() > q.readIndex {
		cut := min(q.writable.Start(), decoded.End())
		if cut > decoded.Start() {
			n := cut - decoded.Start()
			decodedData = decodedData[r.signal.Samples(n):]
			decoded = decoded.ShrinkFront(n)
		}
		q.readIndex = cut
		if decoded.Empty() {
			r.buf.Reset(q.readIndex)
			return
		}
	}

	// 4th step: bridge any remaining gap with silence, copy the
	// overlap into the output, stage the remainder.
	if !q.writable.Empty() && decoded.Start() > q.writable.Start() {
		gap := frames.Between(q.writable.Start(), min(decoded.Start(), q.writable.End()))
		if !gap.Empty() {
			frames.WriteSilence(q.outSlice(gap.Length(), r.signal))
			r.stats.SilenceFrames += gap.Length()
			q.writable = q.writable.ShrinkFront(gap.Length())
			q.readIndex += gap.Length()
		}
	}
	q.readIndex = decoded.Start()
	if !q.writable.Empty() {
		copyable := min(decoded.End(), q.writable.End()) - q.readIndex
		if copyable > 0 {
			samples := r.signal.Samples(copyable)
			copy(q.outSlice(copyable, r.signal), decodedData[:samples])
			decodedData = decodedData[samples:]
			decoded = decoded.ShrinkFront(copyable)
			q.writable = q.writable.ShrinkFront(copyable)
			q.readIndex += copyable
		}
	}

	// Record the position, then stage the unread remainder. Read-ahead
	// already staged up to exactly this position stays; a later decode
	// run of the same packet must not wipe an earlier run's remainder.
	if held := r.buf.BufferedRange(); held.Empty() || held.End() != q.readIndex {
		r.buf.Reset(q.readIndex)
	}
	left := r.buf.BufferFrames(buffer.FillGapWithSilence, frames.Readable{
		Range: decoded,
		Data:  decodedData,
	})
	if !left.Range.Empty() {
		r.stats.DroppedFrames += left.Range.Length()
	}

	// Trailing-sample overflow: some encodings decode a few frames
	// past the declared end. Truncate instead of extending the
	// stream's reported duration.
	if held := r.buf.BufferedRange(); held.End() > r.all.End() {
		overflow := held.End() - r.all.End()
		r.buf.DiscardLastBufferedFrames(overflow)
		r.stats.TrailingFramesDiscarded += overflow
	}
}
