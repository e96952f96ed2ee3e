// Package probe generates and runs byte sequences against characteristics of
// an unknown LED controller.
//
// Probing has no feedback channel: most controllers never acknowledge a frame,
// so a plan ends when it is exhausted or cancelled. Whether a payload did
// anything is for the person watching the strip to decide.
package probe

import (
	"fmt"
	"time"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/dispatch"
	"github.com/Exquve/BluetoothARGBController-APP/protocol"
)

// Plan is an ordered list of payloads with per-payload delay
type Plan = dispatch.Plan

// Step is one payload of a Plan
type Step = dispatch.Step

const (
	SingleByteDelay = 500 * time.Millisecond
	// CriticalByteDwell is added after single bytes that commonly act as
	// opcodes, so their effect can be observed
	CriticalByteDwell = 1500 * time.Millisecond
	PairDelay         = 300 * time.Millisecond
	FramedDelay       = 800 * time.Millisecond
	MinimalDelay      = 2 * time.Second
)

var (
	// CriticalBytes get a longer dwell in Phase1
	CriticalBytes = []byte{0x01, 0x02, 0x10, 0x20, 0x78, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	// InterestingBytes is the reduced set Phase2 combines
	InterestingBytes = []byte{0x00, 0x01, 0x02, 0x10, 0x20, 0x56, 0x78, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	// Prefixes are the leading bytes tried by Phase3
	Prefixes = []byte{0x00, 0x01, 0x02, 0x10, 0x20, 0x56, 0x7E, 0x78, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	// Suffixes are the trailing bytes tried by Phase4
	Suffixes = []byte{0x00, 0x01, 0x0F, 0x33, 0x44, 0x77, 0xAA, 0xEF, 0xFF}
)

func isCritical(b byte) bool {
	for _, c := range CriticalBytes {
		if c == b {
			return true
		}
	}
	return false
}

// Phase1 sweeps every single byte value in ascending order
func Phase1() Plan {
	plan := make(Plan, 0, 256)
	for i := 0; i < 256; i++ {
		b := byte(i)
		delay := SingleByteDelay
		if isCritical(b) {
			delay += CriticalByteDwell
		}
		plan = append(plan, Step{
			Payload: []byte{b},
			Delay:   delay,
			Label:   fmt.Sprintf(`single %02X`, b),
		})
	}
	return plan
}

// Phase2 writes every ordered pair drawn from set
func Phase2(set []byte) Plan {
	plan := make(Plan, 0, len(set)*len(set))
	for _, first := range set {
		for _, second := range set {
			plan = append(plan, Step{
				Payload: []byte{first, second},
				Delay:   PairDelay,
				Label:   fmt.Sprintf(`pair %02X %02X`, first, second),
			})
		}
	}
	return plan
}

// Phase3 writes red and white behind each prefix
func Phase3(prefixes []byte) Plan {
	plan := make(Plan, 0, len(prefixes)*2)
	for _, p := range prefixes {
		plan = append(plan,
			Step{Payload: []byte{p, 0xFF, 0x00, 0x00}, Delay: FramedDelay, Label: fmt.Sprintf(`red prefix %02X`, p)},
			Step{Payload: []byte{p, 0xFF, 0xFF, 0xFF}, Delay: FramedDelay, Label: fmt.Sprintf(`white prefix %02X`, p)},
		)
	}
	return plan
}

// Phase4 writes red followed by each suffix
func Phase4(suffixes []byte) Plan {
	plan := make(Plan, 0, len(suffixes))
	for _, s := range suffixes {
		plan = append(plan, Step{
			Payload: []byte{0xFF, 0x00, 0x00, s},
			Delay:   FramedDelay,
			Label:   fmt.Sprintf(`red suffix %02X`, s),
		})
	}
	return plan
}

// Options selects the phases of a systematic plan. Nil byte sets use the
// package defaults.
type Options struct {
	SkipPhase1 bool
	SkipPhase2 bool
	SkipPhase3 bool
	SkipPhase4 bool
	Pairs      []byte
	Prefixes   []byte
	Suffixes   []byte
}

// Systematic concatenates the selected phases in order
func Systematic(opts Options) Plan {
	var phases []Plan
	if !opts.SkipPhase1 {
		phases = append(phases, Phase1())
	}
	if !opts.SkipPhase2 {
		phases = append(phases, Phase2(orDefault(opts.Pairs, InterestingBytes)))
	}
	if !opts.SkipPhase3 {
		phases = append(phases, Phase3(orDefault(opts.Prefixes, Prefixes)))
	}
	if !opts.SkipPhase4 {
		phases = append(phases, Phase4(orDefault(opts.Suffixes, Suffixes)))
	}
	return Plan{}.Concat(phases...)
}

func orDefault(set, def []byte) []byte {
	if set == nil {
		return def
	}
	return set
}

// CatalogPlan encodes cmd with every catalog format able to, in catalog order
func CatalogPlan(cat *protocol.Catalog, cmd common.Command, delay time.Duration) (Plan, error) {
	var plan Plan
	for _, f := range cat.Supporting(cmd.Kind()) {
		frame, err := f.Encode(cmd)
		if err != nil {
			return nil, fmt.Errorf(`%s: %w`, f.Name, err)
		}
		plan = append(plan, Step{
			Payload: frame,
			Delay:   delay,
			Label:   fmt.Sprintf(`%s %s`, f.Name, common.FormatCommand(cmd)),
		})
	}
	return plan, nil
}

// MinimalPlan is a short list of the most likely power and color frames
func MinimalPlan() Plan {
	steps := []struct {
		label   string
		payload []byte
	}{
		{`single 01`, []byte{0x01}},
		{`single 02`, []byte{0x02}},
		{`single 00`, []byte{0x00}},
		{`single FF`, []byte{0xFF}},
		{`pair 01 FF`, []byte{0x01, 0xFF}},
		{`pair FF 01`, []byte{0xFF, 0x01}},
		{`pair 00 FF`, []byte{0x00, 0xFF}},
		{`rgb red`, []byte{0xFF, 0x00, 0x00}},
		{`rgb green`, []byte{0x00, 0xFF, 0x00}},
		{`rgb blue`, []byte{0x00, 0x00, 0xFF}},
		{`rgb white`, []byte{0xFF, 0xFF, 0xFF}},
		{`rgbw red`, []byte{0xFF, 0x00, 0x00, 0x00}},
		{`rgbw white`, []byte{0x00, 0x00, 0x00, 0xFF}},
		{`prefix AA red`, []byte{0xAA, 0xFF, 0x00, 0x00}},
		{`prefix 55 red`, []byte{0x55, 0xFF, 0x00, 0x00}},
		{`prefix 01 red`, []byte{0x01, 0xFF, 0x00, 0x00}},
		{`prefix FF red`, []byte{0xFF, 0xFF, 0x00, 0x00}},
	}
	plan := make(Plan, len(steps))
	for i, s := range steps {
		plan[i] = Step{Payload: s.payload, Delay: MinimalDelay, Label: s.label}
	}
	return plan
}

// UniversalPlan runs the catalog red, green, blue and power frames, followed
// by status queries and variants seen on unbranded controllers
func UniversalPlan(cat *protocol.Catalog, delay time.Duration) (Plan, error) {
	var plan Plan
	for _, cmd := range []common.Command{
		common.Power{On: true},
		common.SetRGB{Color: common.Color{R: 0xFF}},
		common.SetRGB{Color: common.Color{G: 0xFF}},
		common.SetRGB{Color: common.Color{B: 0xFF}},
	} {
		p, err := CatalogPlan(cat, cmd, delay)
		if err != nil {
			return nil, err
		}
		plan = plan.Concat(p)
	}
	extras := []Step{
		{Label: `zj red`, Payload: []byte{0x56, 0xFF, 0x00, 0x00, 0x00, 0x0F, 0xAA}},
		{Label: `triones mode 25`, Payload: []byte{0xBB, 0x25, 0x10, 0x44}},
		{Label: `status query 1`, Payload: []byte{0xEF, 0x01, 0x77}},
		{Label: `status query 2`, Payload: []byte{0x81, 0x8A, 0x8B}},
		{Label: `query all`, Payload: []byte{0xF0, 0x01, 0x02, 0x03}},
		{Label: `alt A1 red`, Payload: []byte{0xA1, 0xFF, 0x00, 0x00}},
	}
	for _, s := range extras {
		s.Delay = delay
		plan = append(plan, s)
	}
	return plan, nil
}
