package audio

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

const (
	// BeatSensitivity is the number of standard deviations above the mean
	// energy a sample must reach to count as a beat
	BeatSensitivity = 1.5
	MinBPM          = 60.0
	MaxBPM          = 180.0
	// MaxBPMJump is the largest accepted change of an existing estimate
	MaxBPMJump = 30.0
	// BeatDecay is subtracted from the beat strength on every tick without a
	// beat
	BeatDecay = 0.05
	// MinBeatInterval is the shortest gap between two beats any detector allows
	MinBeatInterval = common.DefaultBeatMinIntervalMs * time.Millisecond
)

// BeatDetector flags beats in the bass-weighted energy of successive ticks
type BeatDetector struct {
	minInterval time.Duration
	history     []float64
	index       int
	count       int
	lastBeat    time.Time
	bpm         float64
	strength    float64
}

// NewBeatDetector keeps historyLength energy samples and fires at most once
// per minInterval. Intervals below MinBeatInterval are raised to it.
func NewBeatDetector(historyLength int, minInterval time.Duration) *BeatDetector {
	if historyLength < 2 {
		historyLength = common.DefaultBeatHistoryLength
	}
	if minInterval < MinBeatInterval {
		minInterval = MinBeatInterval
	}
	return &BeatDetector{
		minInterval: minInterval,
		history:     make([]float64, historyLength),
	}
}

// Energy is the detection signal: bass plus half the mid band
func Energy(b common.BandEnergies) float64 {
	return b.Bass + 0.5*b.Mid
}

// Process ingests the bands of the tick at ts. It returns the current beat
// strength, the beat event if one fired, and the tempo estimate (0 until two
// beats were seen).
func (d *BeatDetector) Process(ts time.Time, bands common.BandEnergies) (float64, *common.BeatEvent, float64) {
	energy := Energy(bands)
	d.history[d.index] = energy
	d.index = (d.index + 1) % len(d.history)
	if d.count < len(d.history) {
		d.count++
	}

	mean, std := stat.PopMeanStdDev(d.window(), nil)
	threshold := mean + BeatSensitivity*std

	if energy > threshold && (d.lastBeat.IsZero() || ts.Sub(d.lastBeat) >= d.minInterval) {
		if !d.lastBeat.IsZero() {
			d.updateBPM(ts.Sub(d.lastBeat))
		}
		d.lastBeat = ts
		d.strength = 1
		return d.strength, &common.BeatEvent{Time: ts, BPM: d.bpm}, d.bpm
	}

	d.strength -= BeatDecay
	if d.strength < 0 {
		d.strength = 0
	}
	return d.strength, nil, d.bpm
}

func (d *BeatDetector) window() []float64 {
	if d.count < len(d.history) {
		return d.history[:d.count]
	}
	return d.history
}

func (d *BeatDetector) updateBPM(interval time.Duration) {
	if interval <= 0 {
		return
	}
	candidate := common.ClampFloat(60/interval.Seconds(), MinBPM, MaxBPM)
	if d.bpm == 0 {
		d.bpm = candidate
		return
	}
	diff := candidate - d.bpm
	if diff < 0 {
		diff = -diff
	}
	if diff > MaxBPMJump {
		common.Log.Debugf("Rejected tempo estimate %.1f (current %.1f)", candidate, d.bpm)
		return
	}
	d.bpm = candidate
}

// BPM returns the current tempo estimate
func (d *BeatDetector) BPM() float64 {
	return d.bpm
}
