// Package musicsync turns audio feature vectors into LED commands
package musicsync

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// Strategy selects how a feature vector is turned into a color
type Strategy int

const (
	// StrategyBands maps bass, mid and treble directly to red, green and blue
	StrategyBands Strategy = iota
	// StrategyFrequency maps the dominant frequency onto the hue wheel
	StrategyFrequency
)

func (s Strategy) String() string {
	switch s {
	case StrategyBands:
		return `bands`
	case StrategyFrequency:
		return `frequency`
	default:
		return fmt.Sprintf(`strategy(%d)`, int(s))
	}
}

// ParseStrategy returns the Strategy named s
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case `bands`, `rgb`:
		return StrategyBands, nil
	case `frequency`, `hue`:
		return StrategyFrequency, nil
	}
	return 0, fmt.Errorf(`unknown music sync strategy %q`, s)
}

const (
	// MinVolume is the floor applied to the volume before scaling brightness
	MinVolume = 0.1
	// FlashThreshold is the bass level, on a 0..255 scale, above which a tick
	// is sent as a flash
	FlashThreshold = 200
	// MaxFrequency maps to the top of the hue wheel
	MaxFrequency = 20000.0
	minSpeed     = 10.0
	maxSpeed     = 100.0
)

// Sink receives the commands produced by a Bridge. *argbled.Controller
// implements it.
type Sink interface {
	Send(ctx context.Context, cmd common.Command) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, cmd common.Command) error

// Send implements Sink
func (f SinkFunc) Send(ctx context.Context, cmd common.Command) error {
	return f(ctx, cmd)
}

// Bridge maps feature vectors to commands. It starts disabled.
type Bridge struct {
	strategy       Strategy
	userBrightness float64
	enabled        bool
	sync.RWMutex
}

// New returns a disabled Bridge. userBrightness is clamped to [0,1].
func New(strategy Strategy, userBrightness float64) *Bridge {
	return &Bridge{
		strategy:       strategy,
		userBrightness: common.ClampFloat(userBrightness, 0, 1),
	}
}

// Enable turns music sync on
func (b *Bridge) Enable() {
	b.Lock()
	b.enabled = true
	b.Unlock()
}

// Disable turns music sync off. Ticks received while disabled are dropped.
func (b *Bridge) Disable() {
	b.Lock()
	b.enabled = false
	b.Unlock()
}

// Enabled reports whether music sync is on
func (b *Bridge) Enabled() bool {
	b.RLock()
	defer b.RUnlock()
	return b.enabled
}

// Strategy returns the color strategy in use
func (b *Bridge) Strategy() Strategy {
	b.RLock()
	defer b.RUnlock()
	return b.strategy
}

// SetStrategy changes the color strategy
func (b *Bridge) SetStrategy(s Strategy) {
	b.Lock()
	b.strategy = s
	b.Unlock()
}

// UserBrightness returns the brightness scale applied to every tick
func (b *Bridge) UserBrightness() float64 {
	b.RLock()
	defer b.RUnlock()
	return b.userBrightness
}

// SetUserBrightness changes the brightness scale, clamped to [0,1]
func (b *Bridge) SetUserBrightness(v float64) {
	b.Lock()
	b.userBrightness = common.ClampFloat(v, 0, 1)
	b.Unlock()
}

// Map returns the commands for one tick. A strong bass hit yields a Flash
// followed by full brightness; any other tick yields brightness then color.
// Speed always comes last.
func (b *Bridge) Map(fv common.FeatureVector) []common.Command {
	b.RLock()
	strategy, user := b.strategy, b.userBrightness
	b.RUnlock()

	bands := fv.Bands
	speed := common.SetSpeed{Speed: Speed(bands.Bass)}

	var color common.Command
	switch strategy {
	case StrategyFrequency:
		color = common.SetHSV{Hue: FrequencyHue(fv.DominantFrequency), Saturation: common.MaxSaturation}
	default:
		color = common.SetRGB{Color: BandColor(bands)}
	}

	if Strong(bands.Bass) {
		return []common.Command{
			common.Flash{Color: flashColor(color), Speed: speed.Speed},
			common.SetBrightness{Level: common.MaxBrightness},
			speed,
		}
	}
	return []common.Command{
		common.SetBrightness{Level: Brightness(bands.Volume(), user)},
		color,
		speed,
	}
}

func flashColor(cmd common.Command) common.Color {
	switch c := cmd.(type) {
	case common.SetHSV:
		return common.HSVToRGB(common.HSV{Hue: c.Hue, Saturation: c.Saturation})
	case common.SetRGB:
		return c.Color
	}
	return common.White
}

// Brightness is clamp(volume, 0.1, 1) scaled by user, on the 0..1000 wire
// scale
func Brightness(volume, user float64) int {
	level := common.ClampFloat(volume, MinVolume, 1) * common.ClampFloat(user, 0, 1)
	return common.ClampInt(int(math.Round(level*common.MaxBrightness)), 0, common.MaxBrightness)
}

// BandColor maps bass, mid and treble to red, green and blue
func BandColor(b common.BandEnergies) common.Color {
	return common.Color{
		R: toByte(b.Bass),
		G: toByte(b.Mid),
		B: toByte(b.Treble),
	}
}

// FrequencyHue places f on the hue wheel, 0 Hz at 0° and 20 kHz at 360°
func FrequencyHue(f float64) int {
	return int(math.Round(common.ClampFloat(f/MaxFrequency, 0, 1) * common.MaxHue))
}

// Speed is clamp(bass×100, 10, 100) rescaled to the 0..255 wire range
func Speed(bass float64) int {
	s := common.ClampFloat(bass*100, minSpeed, maxSpeed)
	return int(math.Round(s / maxSpeed * common.MaxSpeed))
}

// Strong reports whether a bass level counts as a flash
func Strong(bass float64) bool {
	return int(common.ClampFloat(bass, 0, 1)*255) > FlashThreshold
}

func toByte(v float64) uint8 {
	return uint8(math.Round(common.ClampFloat(v, 0, 1) * 255))
}

// Run maps every vector received on features and sends the result to sink
// until ctx is done or features is closed. Commands identical to the last one
// of their kind are not resent. Send errors are logged and the tick is
// abandoned.
func (b *Bridge) Run(ctx context.Context, features <-chan common.FeatureVector, sink Sink) error {
	last := make(map[common.CommandKind]common.Command)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fv, ok := <-features:
			if !ok {
				return nil
			}
			if !b.Enabled() {
				continue
			}
			for _, cmd := range b.Map(fv) {
				if cmd.Kind() != common.KindFlash && last[cmd.Kind()] == cmd {
					continue
				}
				if err := sink.Send(ctx, cmd); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					common.Log.Warnf("Music sync dropped %s: %v", common.FormatCommand(cmd), err)
					delete(last, cmd.Kind())
					break
				}
				last[cmd.Kind()] = cmd
			}
		}
	}
}
