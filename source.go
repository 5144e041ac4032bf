// SPDX-License-Identifier: EPL-2.0

package framesource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/framesource/codec"
	"github.com/ik5/framesource/engine"
	"github.com/ik5/framesource/formats/aiff"
	"github.com/ik5/framesource/formats/alac"
	"github.com/ik5/framesource/formats/flac"
	"github.com/ik5/framesource/formats/mp3"
	"github.com/ik5/framesource/formats/vorbis"
	"github.com/ik5/framesource/formats/wav"
	"github.com/ik5/framesource/frames"
	"github.com/ik5/framesource/timebase"
)

// DefaultRegistry builds a registry with every bundled format opener.
func DefaultRegistry() *codec.Registry {
	reg := codec.NewRegistry()
	reg.Register("wav", wav.Opener{})
	reg.Register("mp3", mp3.Opener{})
	reg.Register("ogg", vorbis.Opener{})
	reg.Register("aiff", aiff.Opener{})
	reg.Register("flac", flac.Opener{})
	reg.Register("m4a", alac.Opener{})
	return reg
}

// formatForExtension maps a file extension to a registry format key.
func formatForExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav", "wave":
		return "wav"
	case "mp3":
		return "mp3"
	case "ogg", "oga":
		return "ogg"
	case "aiff", "aif", "aifc":
		return "aiff"
	case "flac":
		return "flac"
	case "m4a", "mp4", "alac":
		return "m4a"
	}
	return ""
}

// Params carries the facade's tunable policies. The zero value is
// ready to use.
type Params struct {
	// Preroll tunes the per-family seek warm-up, e.g. the MP3 preroll
	// packet count.
	Preroll timebase.PrerollPolicy
}

// SoundSource is a sample-accurate, randomly seekable frame source
// over one audio stream. It is not safe for concurrent use.
type SoundSource struct {
	reader *engine.Reader
	file   *os.File
}

// Open decodes the stream in rs as the given format key (e.g. "wav",
// "flac") using the default registry. The reader stays owned by the
// caller and must outlive the source.
func Open(rs io.ReadSeeker, format string, params Params) (*SoundSource, error) {
	return OpenWith(DefaultRegistry(), rs, format, params)
}

// OpenWith is Open with a caller-built registry.
func OpenWith(reg *codec.Registry, rs io.ReadSeeker, format string, params Params) (*SoundSource, error) {
	opener, ok := reg.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	demux, dec, err := opener.Open(rs)
	if err != nil {
		return nil, fmt.Errorf("opening %s stream: %w", format, err)
	}
	reader, err := engine.New(demux, dec, engine.Config{Preroll: params.Preroll})
	if err != nil {
		dec.Close()
		demux.Close()
		return nil, err
	}
	return &SoundSource{reader: reader}, nil
}

// OpenFile opens the audio file at path, picking the format from the
// file extension. Close releases the file.
func OpenFile(path string, params Params) (*SoundSource, error) {
	format := formatForExtension(filepath.Ext(path))
	if format == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	src, err := Open(f, format, params)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.file = f
	return src, nil
}

// Signal returns the channel count and sample rate of the stream.
func (s *SoundSource) Signal() frames.Signal { return s.reader.Signal() }

// FrameIndexRange returns the half-open range of readable frame
// indices, always starting at zero.
func (s *SoundSource) FrameIndexRange() frames.IndexRange { return s.reader.FrameIndexRange() }

// BitrateKbps returns the stream's average bitrate, or 0 when unknown.
func (s *SoundSource) BitrateKbps() int64 { return s.reader.BitrateKbps() }

// Stats returns counters of compensated data anomalies.
func (s *SoundSource) Stats() engine.Stats { return s.reader.Stats() }

// ReadFrames decodes the requested frame range into dst as interleaved
// float32 samples. The returned range is the prefix that was actually
// produced; it is shorter than want only when the request is clamped
// at the stream end or after a decode error.
func (s *SoundSource) ReadFrames(want frames.IndexRange, dst []float32) (frames.IndexRange, error) {
	return s.reader.ReadFrames(want, dst)
}

// Close releases the decoder pair and, for sources opened via
// OpenFile, the underlying file.
func (s *SoundSource) Close() error {
	err := s.reader.Close()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
