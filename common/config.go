package common

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeout is the default duration after which operations time out
	DefaultTimeout = 2 * time.Second

	// DefaultTickRateHz is the analysis tick rate, ~43 windows per second at
	// 44.1kHz with a 1024 sample window
	DefaultTickRateHz = 43
	// DefaultBeatMinIntervalMs is the minimum spacing between beat events, and
	// the lowest value Validate accepts
	DefaultBeatMinIntervalMs = 300
	// DefaultBeatHistoryLength is the number of energy samples kept for beat
	// thresholding, ~1s at the default tick rate
	DefaultBeatHistoryLength = 43
	// DefaultFFTWindowSize is the analysis frame length in samples
	DefaultFFTWindowSize = 1024
	// DefaultSampleRate of analysed audio, in Hz
	DefaultSampleRate = 44100
	// DefaultProbeInterWriteDelayMs is the delay between catalog probe writes,
	// long enough for a human to notice an LED change
	DefaultProbeInterWriteDelayMs = 1200
	// DefaultMinWriteSpacingMs is the minimum spacing between two writes to the
	// same characteristic
	DefaultMinWriteSpacingMs = 50
)

// Config carries the tunables recognised by the core. It is passed explicitly;
// nothing in the library reads files or the environment.
type Config struct {
	TickRateHz             int `yaml:"tickRateHz" json:"tickRateHz"`
	BeatMinIntervalMs      int `yaml:"beatMinIntervalMs" json:"beatMinIntervalMs"`
	BeatHistoryLength      int `yaml:"beatHistoryLength" json:"beatHistoryLength"`
	FFTWindowSize          int `yaml:"fftWindowSize" json:"fftWindowSize"`
	ProbeInterWriteDelayMs int `yaml:"probeInterWriteDelayMs" json:"probeInterWriteDelayMs"`
	MinWriteSpacingMs      int `yaml:"minWriteSpacingMs" json:"minWriteSpacingMs"`
	SampleRate             int `yaml:"sampleRate" json:"sampleRate"`
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() Config {
	return Config{
		TickRateHz:             DefaultTickRateHz,
		BeatMinIntervalMs:      DefaultBeatMinIntervalMs,
		BeatHistoryLength:      DefaultBeatHistoryLength,
		FFTWindowSize:          DefaultFFTWindowSize,
		ProbeInterWriteDelayMs: DefaultProbeInterWriteDelayMs,
		MinWriteSpacingMs:      DefaultMinWriteSpacingMs,
		SampleRate:             DefaultSampleRate,
	}
}

// WithDefaults fills zero fields from DefaultConfig
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.TickRateHz == 0 {
		c.TickRateHz = d.TickRateHz
	}
	if c.BeatMinIntervalMs == 0 {
		c.BeatMinIntervalMs = d.BeatMinIntervalMs
	}
	if c.BeatHistoryLength == 0 {
		c.BeatHistoryLength = d.BeatHistoryLength
	}
	if c.FFTWindowSize == 0 {
		c.FFTWindowSize = d.FFTWindowSize
	}
	if c.ProbeInterWriteDelayMs == 0 {
		c.ProbeInterWriteDelayMs = d.ProbeInterWriteDelayMs
	}
	if c.MinWriteSpacingMs == 0 {
		c.MinWriteSpacingMs = d.MinWriteSpacingMs
	}
	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	return c
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	switch {
	case c.TickRateHz <= 0:
		return fmt.Errorf(`tickRateHz must be positive, got %d`, c.TickRateHz)
	case c.BeatMinIntervalMs < DefaultBeatMinIntervalMs:
		return fmt.Errorf(`beatMinIntervalMs must be at least %d, got %d`, DefaultBeatMinIntervalMs, c.BeatMinIntervalMs)
	case c.BeatHistoryLength < 2:
		return fmt.Errorf(`beatHistoryLength must be at least 2, got %d`, c.BeatHistoryLength)
	case c.FFTWindowSize < 4 || c.FFTWindowSize&(c.FFTWindowSize-1) != 0:
		return fmt.Errorf(`fftWindowSize must be a power of two >= 4, got %d`, c.FFTWindowSize)
	case c.ProbeInterWriteDelayMs < 0:
		return fmt.Errorf(`probeInterWriteDelayMs must not be negative, got %d`, c.ProbeInterWriteDelayMs)
	case c.MinWriteSpacingMs < 0:
		return fmt.Errorf(`minWriteSpacingMs must not be negative, got %d`, c.MinWriteSpacingMs)
	case c.SampleRate <= 0:
		return fmt.Errorf(`sampleRate must be positive, got %d`, c.SampleRate)
	}
	return nil
}

// TickInterval is the duration of one analysis tick
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRateHz)
}

// BeatMinInterval as a duration
func (c Config) BeatMinInterval() time.Duration {
	return time.Duration(c.BeatMinIntervalMs) * time.Millisecond
}

// ProbeInterWriteDelay as a duration
func (c Config) ProbeInterWriteDelay() time.Duration {
	return time.Duration(c.ProbeInterWriteDelayMs) * time.Millisecond
}

// MinWriteSpacing as a duration
func (c Config) MinWriteSpacing() time.Duration {
	return time.Duration(c.MinWriteSpacingMs) * time.Millisecond
}
