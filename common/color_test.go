package common_test

import (
	"fmt"

	. "github.com/Exquve/BluetoothARGBController-APP/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func hueDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > MaxHue/2 {
		d = MaxHue - d
	}
	return d
}

// hueTolerance is how far hue may drift through one HSV to RGB to HSV cycle.
// Low saturations leave too few distinct 8-bit channel values to recover hue.
func hueTolerance(saturation int) int {
	switch {
	case saturation >= 132:
		return 1
	case saturation >= 77:
		return 2
	default:
		return 10
	}
}

var _ = Describe("Color", func() {
	It("should convert primaries", func() {
		Expect(RGBToHSV(Color{R: 255})).To(Equal(HSV{Hue: 0, Saturation: 997}))
		Expect(RGBToHSV(Color{G: 255})).To(Equal(HSV{Hue: 120, Saturation: 997}))
		Expect(RGBToHSV(Color{B: 255})).To(Equal(HSV{Hue: 240, Saturation: 997}))
		Expect(RGBToHSV(Color{R: 255, B: 255})).To(Equal(HSV{Hue: 300, Saturation: 997}))
	})

	It("should treat greys as hue 0 saturation 0", func() {
		Expect(RGBToHSV(Color{})).To(Equal(HSV{}))
		Expect(RGBToHSV(Color{R: 80, G: 80, B: 80})).To(Equal(HSV{}))
		Expect(RGBToHSV(White)).To(Equal(HSV{}))
	})

	It("should keep hue in [0,360)", func() {
		for r := 0; r < 256; r += 15 {
			for g := 0; g < 256; g += 15 {
				for b := 0; b < 256; b += 15 {
					h := RGBToHSV(Color{R: uint8(r), G: uint8(g), B: uint8(b)})
					Expect(h.Hue).To(BeNumerically(">=", 0))
					Expect(h.Hue).To(BeNumerically("<", MaxHue))
					Expect(h.Saturation).To(BeNumerically("<=", MaxSaturation))
				}
			}
		}
	})

	It("should round-trip hue and saturation for every color", func() {
		var failures []string
		for r := 0; r < 256; r++ {
			for g := 0; g < 256; g++ {
				for b := 0; b < 256; b++ {
					c := Color{R: uint8(r), G: uint8(g), B: uint8(b)}
					first := RGBToHSV(c)
					second := RGBToHSV(HSVToRGB(first))
					ds := first.Saturation - second.Saturation
					if ds < 0 {
						ds = -ds
					}
					if ds <= 2 && hueDistance(first.Hue, second.Hue) <= hueTolerance(first.Saturation) {
						continue
					}
					if len(failures) < 10 {
						failures = append(failures, fmt.Sprintf(`%v: %v -> %v`, c, first, second))
					}
				}
			}
		}
		Expect(failures).To(BeEmpty())
	})

	It("should clamp HSV input", func() {
		Expect(HSVToRGB(HSV{Hue: -10, Saturation: 5000})).To(Equal(Color{R: 255}))
		Expect(HSVToRGB(HSV{Hue: 120, Saturation: 0})).To(Equal(White))
	})

	It("should scale colors", func() {
		Expect(Color{R: 255, G: 100}.Scale(0.5)).To(Equal(Color{R: 128, G: 50}))
		Expect(Color{R: 255}.Scale(2)).To(Equal(Color{R: 255}))
		Expect(Color{R: 255}.Scale(-1)).To(Equal(Color{}))
	})
})
