package common

import "time"

// BandEnergies are the per-band levels of one analysis tick, each in [0,1]
type BandEnergies struct {
	Bass   float64 `json:"bass"`
	Mid    float64 `json:"mid"`
	Treble float64 `json:"treble"`
}

// Volume is the mean of the three bands
func (b BandEnergies) Volume() float64 {
	return (b.Bass + b.Mid + b.Treble) / 3
}

// BeatEvent marks a detected beat
type BeatEvent struct {
	Time time.Time `json:"time"`
	BPM  float64   `json:"bpm"`
}

// FeatureVector is what the audio pipeline hands to music sync once per tick
type FeatureVector struct {
	Time              time.Time    `json:"time"`
	Bands             BandEnergies `json:"bands"`
	DominantFrequency float64      `json:"dominantFrequency"`
	BeatStrength      float64      `json:"beatStrength"`
	BPM               float64      `json:"bpm"`
	Beat              *BeatEvent   `json:"beat,omitempty"`
	Simulated         bool         `json:"simulated"`
}

// EventProfileBound is emitted by a Controller when a device profile is bound
type EventProfileBound struct {
	Format         string
	Characteristic Characteristic
	Acknowledged   bool
}

// EventProfileReleased is emitted by a Controller when its profile is dropped
type EventProfileReleased struct {
	Format string
}

// EventWriteFailed is emitted whenever a transport write fails. The write is
// not retried.
type EventWriteFailed struct {
	Characteristic Characteristic
	Payload        []byte
	Err            error
}

// EventNotification is emitted for every notification received from the
// peripheral
type EventNotification struct {
	Notification Notification
	Hint         string
}

// EventBeat is emitted by the audio pipeline for each beat
type EventBeat struct {
	Beat BeatEvent
}

// EventFeatures is emitted by the audio pipeline once per tick
type EventFeatures struct {
	Features FeatureVector
}

// EventProbeStep is emitted by the probe runner after each attempted write
type EventProbeStep struct {
	Index          int
	Total          int
	Label          string
	Characteristic Characteristic
	Payload        []byte
	Err            error
}
