package audio_test

import (
	"context"
	"math"
	"time"

	. "github.com/Exquve/BluetoothARGBController-APP/audio"

	"github.com/faiface/beep"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

const (
	sampleRate = 44100
	frameSize  = 1024
)

func tone(freq, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

// spikes drives d with a quiet baseline sampled every tick and a loud bass hit
// every period, returning the beats fired
func spikes(d *BeatDetector, start time.Time, tick, period, length time.Duration) []common.BeatEvent {
	var beats []common.BeatEvent
	next := start.Add(period)
	for ts := start; ts.Sub(start) < length; ts = ts.Add(tick) {
		bands := common.BandEnergies{Bass: 0.1, Mid: 0.05}
		if !ts.Before(next) {
			bands = common.BandEnergies{Bass: 1, Mid: 0.5}
			next = next.Add(period)
		}
		if _, beat, _ := d.Process(ts, bands); beat != nil {
			beats = append(beats, *beat)
		}
	}
	return beats
}

var _ = Describe("Audio", func() {
	var ctx = context.Background()

	Describe("Extractor", func() {
		var extractor *Extractor

		BeforeEach(func() {
			var err error
			extractor, err = NewExtractor(sampleRate, frameSize)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should find the dominant frequency of a tone", func() {
			analysis, err := extractor.Extract(tone(440, 0.5, frameSize))
			Expect(err).NotTo(HaveOccurred())
			Expect(analysis.DominantFrequency).To(BeNumerically("~", 440, sampleRate/frameSize))
			Expect(analysis.Magnitudes).To(HaveLen(frameSize / 2))
		})

		It("should put a low tone in the bass band", func() {
			analysis, err := extractor.Extract(tone(440, 0.5, frameSize))
			Expect(err).NotTo(HaveOccurred())
			Expect(analysis.Bands.Bass).To(BeNumerically(">", 0.3))
			Expect(analysis.Bands.Bass).To(BeNumerically("<=", 1))
			Expect(analysis.Bands.Mid).To(BeNumerically("<", 0.05))
			Expect(analysis.Bands.Treble).To(BeNumerically("<", 0.05))
		})

		It("should put a high tone in the treble band", func() {
			analysis, err := extractor.Extract(tone(18000, 0.5, frameSize))
			Expect(err).NotTo(HaveOccurred())
			Expect(analysis.Bands.Treble).To(BeNumerically(">", analysis.Bands.Bass))
			Expect(analysis.Bands.Treble).To(BeNumerically(">", analysis.Bands.Mid))
		})

		It("should read silence as zero", func() {
			analysis, err := extractor.Extract(make([]float64, frameSize))
			Expect(err).NotTo(HaveOccurred())
			Expect(analysis.Bands).To(Equal(common.BandEnergies{}))
		})

		It("should reject frames of the wrong size", func() {
			_, err := extractor.Extract(make([]float64, 10))
			Expect(err).To(MatchError(ErrFrameSize))
			_, err = extractor.Extract(nil)
			Expect(err).To(MatchError(common.ErrAnalysisUnavailable))
			_, err = NewExtractor(sampleRate, 1000)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("BeatDetector", func() {
		var (
			detector *BeatDetector
			start    = time.Unix(1700000000, 0)
			tick     = time.Second / 43
		)

		BeforeEach(func() {
			detector = NewBeatDetector(43, 300*time.Millisecond)
		})

		It("should detect a steady beat and estimate its tempo", func() {
			beats := spikes(detector, start, tick, 500*time.Millisecond, 5*time.Second)
			Expect(len(beats)).To(BeNumerically(">=", 8))
			Expect(detector.BPM()).To(BeNumerically("~", 120, 8))
		})

		It("should never fire twice within the minimum interval", func() {
			beats := spikes(detector, start, tick, 100*time.Millisecond, 5*time.Second)
			Expect(beats).NotTo(BeEmpty())
			for i := 1; i < len(beats); i++ {
				Expect(beats[i].Time.Sub(beats[i-1].Time)).To(BeNumerically(">=", 300*time.Millisecond))
			}
		})

		It("should raise shorter intervals to the minimum", func() {
			fast := NewBeatDetector(43, 50*time.Millisecond)
			beats := spikes(fast, start, tick, 100*time.Millisecond, 5*time.Second)
			Expect(beats).NotTo(BeEmpty())
			for i := 1; i < len(beats); i++ {
				Expect(beats[i].Time.Sub(beats[i-1].Time)).To(BeNumerically(">=", MinBeatInterval))
			}
		})

		It("should clamp slow tempos", func() {
			spikes(detector, start, tick, 2*time.Second, 9*time.Second)
			Expect(detector.BPM()).To(Equal(MinBPM))
		})

		It("should not fire on constant energy", func() {
			for i := 0; i < 100; i++ {
				_, beat, _ := detector.Process(start.Add(time.Duration(i)*tick), common.BandEnergies{Bass: 0.5})
				Expect(beat).To(BeNil())
			}
		})

		It("should decay beat strength between beats", func() {
			spikes(detector, start, tick, 500*time.Millisecond, 520*time.Millisecond)
			strength, _, _ := detector.Process(start.Add(time.Second), common.BandEnergies{Bass: 0.1, Mid: 0.05})
			Expect(strength).To(BeNumerically("~", 0.95, 1e-9))
		})

		It("should reject tempo jumps larger than 30 BPM", func() {
			quiet := common.BandEnergies{Bass: 0.1}
			loud := common.BandEnergies{Bass: 1}
			ts := start
			for i := 0; i < 20; i++ {
				detector.Process(ts, quiet)
				ts = ts.Add(25 * time.Millisecond)
			}
			_, first, _ := detector.Process(ts, loud)
			Expect(first).NotTo(BeNil())
			for i := 0; i < 19; i++ {
				ts = ts.Add(25 * time.Millisecond)
				detector.Process(ts, quiet)
			}
			ts = ts.Add(25 * time.Millisecond)
			_, second, bpm := detector.Process(ts, loud)
			Expect(second).NotTo(BeNil())
			Expect(bpm).To(BeNumerically("~", 120, 1e-6))

			for i := 0; i < 11; i++ {
				ts = ts.Add(25 * time.Millisecond)
				detector.Process(ts, quiet)
			}
			ts = ts.Add(25 * time.Millisecond)
			_, third, bpm := detector.Process(ts, loud)
			Expect(third).NotTo(BeNil())
			Expect(bpm).To(BeNumerically("~", 120, 1e-6))
		})
	})

	Describe("sources", func() {
		It("should cut frames from a slice", func() {
			src := NewSliceSource(tone(440, 1, frameSize*2), frameSize, false)
			for i := 0; i < 2; i++ {
				frame, err := src.Next(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(frame).To(HaveLen(frameSize))
			}
			_, err := src.Next(ctx)
			Expect(err).To(MatchError(common.ErrAnalysisUnavailable))
		})

		It("should mix a stream down to mono", func() {
			stereo := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
				for i := range samples {
					samples[i] = [2]float64{0.5, 0.1}
				}
				return len(samples), true
			})
			frame, err := NewStreamSource(stereo, frameSize).Next(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(frame[0]).To(BeNumerically("~", 0.3, 1e-9))
		})

		It("should report the end of a stream as unavailable", func() {
			src := NewStreamSource(beep.Silence(frameSize+10), frameSize)
			_, err := src.Next(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = src.Next(ctx)
			Expect(err).To(MatchError(common.ErrAnalysisUnavailable))
		})

		It("should refuse unknown file types", func() {
			_, _, err := OpenFile(`/nonexistent/file.flac`, sampleRate, frameSize)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("feature sources", func() {
		now := time.Unix(1700000000, 0)

		It("should analyse a live source", func() {
			src := NewSliceSource(tone(440, 0.5, frameSize), frameSize, true)
			analyzer, err := NewAnalyzer(src, common.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			fv, err := analyzer.Features(ctx, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(fv.Simulated).To(BeFalse())
			Expect(fv.DominantFrequency).To(BeNumerically("~", 440, 44))
		})

		It("should simulate a 120 BPM signal", func() {
			sim := NewSimulator()
			fv, err := sim.Features(ctx, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(fv.Simulated).To(BeTrue())
			Expect(fv.Beat).NotTo(BeNil())
			Expect(fv.BPM).To(Equal(SimulatedBPM))
			Expect(fv.Bands.Bass).To(BeNumerically("<=", 0.8))
			Expect(fv.Bands.Mid).To(BeNumerically("<=", 0.6))
			Expect(fv.Bands.Treble).To(BeNumerically("<=", 0.4))
			Expect(fv.DominantFrequency).To(BeNumerically("~", 440, 200))

			fv, _ = sim.Features(ctx, now.Add(100*time.Millisecond))
			Expect(fv.Beat).To(BeNil())
			Expect(fv.BeatStrength).To(BeNumerically("~", 0.9, 1e-9))

			fv, _ = sim.Features(ctx, now.Add(500*time.Millisecond))
			Expect(fv.Beat).NotTo(BeNil())
		})

		It("should fall back to simulation when analysis is unavailable", func() {
			src := NewSliceSource(tone(440, 0.5, frameSize), frameSize, false)
			analyzer, err := NewAnalyzer(src, common.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			source := Fallback(analyzer, NewSimulator())

			fv, err := source.Features(ctx, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(fv.Simulated).To(BeFalse())

			fv, err = source.Features(ctx, now.Add(time.Second))
			Expect(err).NotTo(HaveOccurred())
			Expect(fv.Simulated).To(BeTrue())
			Expect(source.Simulated()).To(BeTrue())
		})
	})

	Describe("Pipeline", func() {
		It("should tick and publish features until cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			pipeline := NewPipeline(NewSimulator(), common.DefaultConfig())
			Expect(pipeline.Interval()).To(Equal(time.Second / 43))
			sub, _ := pipeline.NewSubscription()

			done := make(chan error, 1)
			go func() {
				done <- pipeline.Run(ctx, 5*time.Millisecond)
			}()

			var fv common.FeatureVector
			Eventually(pipeline.Features()).Should(Receive(&fv))
			Expect(fv.Simulated).To(BeTrue())
			Eventually(sub.Events()).Should(Receive())
			Expect(sub.Close()).To(Succeed())

			cancel()
			Eventually(done).Should(Receive(BeNil()))
			Eventually(pipeline.Features()).Should(BeClosed())
		})
	})
})
