package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// Source yields consecutive mono frames of a fixed size. A source with no
// more usable input returns an error wrapping common.ErrAnalysisUnavailable.
type Source interface {
	Next(ctx context.Context) ([]float64, error)
}

// SliceSource serves frames cut from an in-memory signal
type SliceSource struct {
	samples []float64
	size    int
	pos     int
	loop    bool
	sync.Mutex
}

// NewSliceSource returns a source over samples. When loop is set, the signal
// repeats instead of running out.
func NewSliceSource(samples []float64, size int, loop bool) *SliceSource {
	return &SliceSource{samples: samples, size: size, loop: loop}
}

// Next implements Source
func (s *SliceSource) Next(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()
	if len(s.samples) == 0 || (!s.loop && s.pos+s.size > len(s.samples)) {
		return nil, fmt.Errorf(`%w: signal exhausted`, common.ErrAnalysisUnavailable)
	}
	frame := make([]float64, s.size)
	for i := range frame {
		if s.pos >= len(s.samples) {
			s.pos = 0
		}
		frame[i] = s.samples[s.pos]
		s.pos++
	}
	return frame, nil
}

// StreamSource reads frames from a beep.Streamer, mixing stereo down to mono
type StreamSource struct {
	streamer beep.Streamer
	closer   func() error
	size     int
	buf      [][2]float64
	sync.Mutex
}

// NewStreamSource wraps s. The streamer must already run at the analysis
// sample rate.
func NewStreamSource(s beep.Streamer, size int) *StreamSource {
	return &StreamSource{
		streamer: s,
		size:     size,
		buf:      make([][2]float64, size),
	}
}

// Next implements Source
func (s *StreamSource) Next(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()

	filled := 0
	for filled < s.size {
		n, ok := s.streamer.Stream(s.buf[filled:])
		filled += n
		if !ok {
			break
		}
	}
	if filled < s.size {
		if err := s.streamer.Err(); err != nil {
			return nil, fmt.Errorf(`%w: %v`, common.ErrAnalysisUnavailable, err)
		}
		return nil, fmt.Errorf(`%w: stream ended`, common.ErrAnalysisUnavailable)
	}

	frame := make([]float64, s.size)
	for i, sample := range s.buf {
		frame[i] = (sample[0] + sample[1]) / 2
	}
	return frame, nil
}

// Close releases the underlying stream, if it owns one
func (s *StreamSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// OpenFile decodes a WAV or MP3 file and resamples it to sampleRate
func OpenFile(path string, sampleRate, size int) (*StreamSource, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case `.wav`:
		stream, format, err = wav.Decode(f)
	case `.mp3`:
		stream, format, err = mp3.Decode(f)
	default:
		err = fmt.Errorf(`unsupported audio file %s`, path)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}

	var streamer beep.Streamer = stream
	target := beep.SampleRate(sampleRate)
	if format.SampleRate != target {
		common.Log.Debugf("Resampling %s from %d Hz to %d Hz", path, format.SampleRate, target)
		streamer = beep.Resample(4, format.SampleRate, target, stream)
	}

	src := NewStreamSource(streamer, size)
	src.closer = func() error {
		err := stream.Close()
		if ferr := f.Close(); err == nil && !errors.Is(ferr, os.ErrClosed) {
			err = ferr
		}
		return err
	}
	return src, format, nil
}
