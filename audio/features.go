package audio

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// FeatureSource produces one FeatureVector per analysis tick
type FeatureSource interface {
	Features(ctx context.Context, now time.Time) (common.FeatureVector, error)
}

// Analyzer extracts features from a live Source
type Analyzer struct {
	source    Source
	extractor *Extractor
	detector  *BeatDetector
	sync.Mutex
}

// NewAnalyzer builds an Analyzer over src using the analysis settings of cfg
func NewAnalyzer(src Source, cfg common.Config) (*Analyzer, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(cfg.SampleRate, cfg.FFTWindowSize)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		source:    src,
		extractor: extractor,
		detector:  NewBeatDetector(cfg.BeatHistoryLength, cfg.BeatMinInterval()),
	}, nil
}

// Features implements FeatureSource
func (a *Analyzer) Features(ctx context.Context, now time.Time) (common.FeatureVector, error) {
	frame, err := a.source.Next(ctx)
	if err != nil {
		return common.FeatureVector{}, err
	}

	a.Lock()
	defer a.Unlock()
	analysis, err := a.extractor.Extract(frame)
	if err != nil {
		return common.FeatureVector{}, err
	}
	strength, beat, bpm := a.detector.Process(now, analysis.Bands)
	return common.FeatureVector{
		Time:              now,
		Bands:             analysis.Bands,
		DominantFrequency: analysis.DominantFrequency,
		BeatStrength:      strength,
		BPM:               bpm,
		Beat:              beat,
	}, nil
}

// SimulatedBPM is the fixed tempo of the Simulator
const SimulatedBPM = 120.0

// Simulator synthesises plausible features from phase-shifted sinusoids. It
// stands in when no audio input is available.
type Simulator struct {
	lastBeat time.Time
	strength float64
	sync.Mutex
}

// NewSimulator returns a Simulator
func NewSimulator() *Simulator {
	return new(Simulator)
}

// Features implements FeatureSource
func (s *Simulator) Features(ctx context.Context, now time.Time) (common.FeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return common.FeatureVector{}, err
	}
	t := float64(now.UnixNano()) / float64(time.Second)

	s.Lock()
	defer s.Unlock()

	var beat *common.BeatEvent
	interval := time.Duration(float64(time.Minute) / SimulatedBPM)
	if s.lastBeat.IsZero() || now.Sub(s.lastBeat) >= interval {
		s.lastBeat = now
		s.strength = 1
		beat = &common.BeatEvent{Time: now, BPM: SimulatedBPM}
	} else {
		s.strength = math.Max(0, s.strength-0.1)
	}

	return common.FeatureVector{
		Time: now,
		Bands: common.BandEnergies{
			Bass:   math.Abs(math.Sin(t*2)) * 0.8,
			Mid:    math.Abs(math.Sin(t*3)) * 0.6,
			Treble: math.Abs(math.Sin(t*5)) * 0.4,
		},
		DominantFrequency: 440 + math.Sin(t)*200,
		BeatStrength:      s.strength,
		BPM:               SimulatedBPM,
		Beat:              beat,
		Simulated:         true,
	}, nil
}

// FallbackSource serves the primary source until it reports that analysis is
// unavailable, then switches to the simulator for good
type FallbackSource struct {
	primary   FeatureSource
	simulator FeatureSource
	fallen    bool
	sync.RWMutex
}

// Fallback returns a FeatureSource that degrades from primary to sim. A nil
// primary starts in simulation.
func Fallback(primary, sim FeatureSource) *FallbackSource {
	return &FallbackSource{primary: primary, simulator: sim, fallen: primary == nil}
}

// Simulated reports whether the simulator is in use
func (f *FallbackSource) Simulated() bool {
	f.RLock()
	defer f.RUnlock()
	return f.fallen
}

// Features implements FeatureSource
func (f *FallbackSource) Features(ctx context.Context, now time.Time) (common.FeatureVector, error) {
	if !f.Simulated() {
		fv, err := f.primary.Features(ctx, now)
		if err == nil || !errors.Is(err, common.ErrAnalysisUnavailable) {
			return fv, err
		}
		common.Log.Warnf("Audio analysis unavailable, switching to simulation: %v", err)
		f.Lock()
		f.fallen = true
		f.Unlock()
	}
	fv, err := f.simulator.Features(ctx, now)
	fv.Simulated = true
	return fv, err
}
