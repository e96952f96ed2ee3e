// Package audio turns an audio signal into the per-tick features that drive
// music sync: three band levels, the dominant frequency, beat strength and
// tempo.
//
// A live Analyzer and the Simulator both implement FeatureSource, so consumers
// never need to know which one is feeding them.
package audio

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// ErrFrameSize is returned when a frame does not match the extractor size
var ErrFrameSize = errors.New(`audio frame has the wrong size`)

// Analysis is the spectral summary of one frame
type Analysis struct {
	Bands             common.BandEnergies
	DominantFrequency float64
	// Magnitudes holds Size/2 normalised bin magnitudes. It is reused by the
	// next call to Extract.
	Magnitudes []float64
}

// Extractor applies a Hann window and a real FFT to fixed-size frames. It
// reuses its buffers and is not safe for concurrent use.
type Extractor struct {
	sampleRate float64
	size       int
	fft        *fourier.FFT
	window     []float64
	gain       float64
	buf        []float64
	coeffs     []complex128
	mags       []float64
}

// NewExtractor returns an Extractor for frames of size samples at sampleRate
func NewExtractor(sampleRate, size int) (*Extractor, error) {
	if size < 4 || size&(size-1) != 0 {
		return nil, fmt.Errorf(`frame size must be a power of two >= 4, got %d`, size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf(`sample rate must be positive, got %d`, sampleRate)
	}

	w := make([]float64, size)
	for i := range w {
		w[i] = 1
	}
	w = window.Hann(w)
	var sum float64
	for _, v := range w {
		sum += v
	}

	return &Extractor{
		sampleRate: float64(sampleRate),
		size:       size,
		fft:        fourier.NewFFT(size),
		window:     w,
		// a full-scale sinusoid centred on a bin peaks at sum(w)/2
		gain:   sum / 2,
		buf:    make([]float64, size),
		coeffs: make([]complex128, size/2+1),
		mags:   make([]float64, size/2),
	}, nil
}

// Size returns the frame length in samples
func (e *Extractor) Size() int {
	return e.size
}

// BinWidth is the frequency resolution in Hz
func (e *Extractor) BinWidth() float64 {
	return e.sampleRate / float64(e.size)
}

// Extract analyses one frame. The three bands split the magnitude bins into
// equal contiguous thirds, the last band taking any remainder. Each band level
// is the root of the summed squared magnitudes, so a full-scale tone reads
// close to 1, clamped to [0,1].
func (e *Extractor) Extract(frame []float64) (Analysis, error) {
	if len(frame) == 0 {
		return Analysis{}, common.ErrAnalysisUnavailable
	}
	if len(frame) != e.size {
		return Analysis{}, fmt.Errorf(`%w: got %d, want %d`, ErrFrameSize, len(frame), e.size)
	}

	for i, v := range frame {
		e.buf[i] = v * e.window[i]
	}
	e.coeffs = e.fft.Coefficients(e.coeffs, e.buf)

	peak, peakIdx := -1.0, 0
	for i := range e.mags {
		m := cmplx.Abs(e.coeffs[i]) / e.gain
		e.mags[i] = m
		if m > peak {
			peak, peakIdx = m, i
		}
	}

	third := len(e.mags) / 3
	bands := common.BandEnergies{
		Bass:   bandLevel(e.mags[:third]),
		Mid:    bandLevel(e.mags[third : 2*third]),
		Treble: bandLevel(e.mags[2*third:]),
	}

	return Analysis{
		Bands:             bands,
		DominantFrequency: float64(peakIdx) * e.BinWidth(),
		Magnitudes:        e.mags,
	}, nil
}

func bandLevel(mags []float64) float64 {
	var sum float64
	for _, m := range mags {
		sum += m * m
	}
	return common.ClampFloat(math.Sqrt(sum), 0, 1)
}
