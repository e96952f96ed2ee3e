package common

import "math"

const (
	// MaxHue is the upper bound of the hue field, in degrees
	MaxHue = 360
	// MaxSaturation is the saturation scale used on the wire. Fully saturated
	// colors are 997, not 1000.
	MaxSaturation = 997
	// MaxBrightness is the upper bound of the brightness field
	MaxBrightness = 1000
	// MaxSpeed is the upper bound of the animation speed field
	MaxSpeed = 255
	// MaxTemperature is the upper bound of the white temperature field
	MaxTemperature = 360
)

// Color is an 8 bit per channel RGB color
type Color struct {
	R uint8
	G uint8
	B uint8
}

// White is the only color the color frame special-cases
var White = Color{R: 255, G: 255, B: 255}

// HSV is a color expressed in wire units: hue in degrees [0,360), saturation
// in [0,997]. Value is carried by a separate brightness command.
type HSV struct {
	Hue        int
	Saturation int
}

// RGBToHSV converts c with the max/min/delta formulation, rounding to the
// nearest wire unit
func RGBToHSV(c Color) HSV {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	var hue float64
	if delta != 0 {
		switch maxC {
		case r:
			hue = 60 * math.Mod((g-b)/delta, 6)
		case g:
			hue = 60 * ((b-r)/delta + 2)
		default:
			hue = 60 * ((r-g)/delta + 4)
		}
	}
	if hue < 0 {
		hue += 360
	}

	var sat float64
	if maxC != 0 {
		sat = delta / maxC
	}

	h := int(math.Round(hue)) % MaxHue
	return HSV{
		Hue:        h,
		Saturation: int(math.Round(sat * MaxSaturation)),
	}
}

// HSVToRGB converts h at full value back to RGB. Inputs are clamped first.
func HSVToRGB(h HSV) Color {
	hue := float64(ClampInt(h.Hue, 0, MaxHue)) / MaxHue
	sat := float64(ClampInt(h.Saturation, 0, MaxSaturation)) / MaxSaturation
	const v = 1.0

	c := v * sat
	x := c * (1 - math.Abs(math.Mod(hue*6, 2)-1))
	m := v - c

	var r, g, b float64
	switch segment := hue * 6; {
	case segment < 1:
		r, g, b = c, x, 0
	case segment < 2:
		r, g, b = x, c, 0
	case segment < 3:
		r, g, b = 0, c, x
	case segment < 4:
		r, g, b = 0, x, c
	case segment < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return Color{
		R: unitToByte(r + m),
		G: unitToByte(g + m),
		B: unitToByte(b + m),
	}
}

// Scale multiplies every channel by f, clamped to [0,1]
func (c Color) Scale(f float64) Color {
	f = ClampFloat(f, 0, 1)
	return Color{
		R: unitToByte(float64(c.R) / 255 * f),
		G: unitToByte(float64(c.G) / 255 * f),
		B: unitToByte(float64(c.B) / 255 * f),
	}
}

func unitToByte(v float64) uint8 {
	return uint8(math.Round(ClampFloat(v, 0, 1) * 255))
}

// ClampInt limits v to [lo,hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat limits v to [lo,hi]. NaN clamps to lo.
func ClampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
