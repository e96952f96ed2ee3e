package protocol

import (
	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// NeoPixelColor is the structured color write understood by Adafruit-style
// NeoPixel BLE firmware
type NeoPixelColor struct {
	Start      uint16 `struc:"uint16,big"`
	Length     uint16 `struc:"uint16,big"`
	Red        uint8
	Green      uint8
	Blue       uint8
	Alpha      uint8
	Brightness uint8
}

// DefaultNeoPixelLength is the strip length addressed by catalog color writes
const DefaultNeoPixelLength = 60

// Encode packs the structure
func (n *NeoPixelColor) Encode() ([]byte, error) {
	return pack(n)
}

// colorTemplate builds an RGB template whose layout is produced by frame.
// SetHSV and Flash are served by the same layout.
func colorTemplates(format string, opcode, terminator byte, size int, frame func(c common.Color) []byte) []Template {
	encode := func(cmd common.Command) ([]byte, error) {
		c, ok := colorOf(cmd)
		if !ok {
			return nil, unexpected(format, cmd)
		}
		return frame(c), nil
	}
	return []Template{
		{Name: `color`, Kind: common.KindRGB, Opcode: opcode, Terminator: terminator, Size: size, Encode: encode},
		{Name: `color-hsv`, Kind: common.KindHSV, Opcode: opcode, Terminator: terminator, Size: size, Encode: encode},
		{Name: `flash`, Kind: common.KindFlash, Opcode: opcode, Terminator: terminator, Size: size, Encode: encode},
	}
}

func powerTemplate(format string, opcode, terminator byte, size int, frame func(on bool) []byte) Template {
	return Template{
		Name: `power`, Kind: common.KindPower, Opcode: opcode, Terminator: terminator, Size: size,
		Encode: func(cmd common.Command) ([]byte, error) {
			c, ok := cmd.(common.Power)
			if !ok {
				return nil, unexpected(format, cmd)
			}
			return frame(c.On), nil
		},
	}
}

func simpleFormat(name, description string, frame func(c common.Color) []byte, size int, opcode byte) *Format {
	return NewFormat(name, description, colorTemplates(name, opcode, 0, size, frame)...)
}

func vendorFormats() []*Format {
	formats := []*Format{
		simpleFormat(`simple-rgb`, `bare r,g,b`, func(c common.Color) []byte {
			return []byte{c.R, c.G, c.B}
		}, 3, 0),
		simpleFormat(`rgba`, `r,g,b with opaque alpha`, func(c common.Color) []byte {
			return []byte{c.R, c.G, c.B, 0xFF}
		}, 4, 0),
		simpleFormat(`wrgb`, `white channel first`, func(c common.Color) []byte {
			return []byte{0x00, c.R, c.G, c.B}
		}, 4, 0x00),
		simpleFormat(`prefix-ff`, `0xFF prefixed r,g,b`, func(c common.Color) []byte {
			return []byte{0xFF, c.R, c.G, c.B}
		}, 4, 0xFF),
		simpleFormat(`cmd-rgb`, `0x01 command prefixed r,g,b`, func(c common.Color) []byte {
			return []byte{0x01, c.R, c.G, c.B}
		}, 4, 0x01),
	}

	elk := `elk-bledom`
	formats = append(formats, NewFormat(elk, `ELK-BLEDOM 0x7E...0xEF frames`,
		append(colorTemplates(elk, 0x7E, 0xEF, 9, func(c common.Color) []byte {
			return []byte{0x7E, 0x00, 0x05, 0x03, c.R, c.G, c.B, 0x00, 0xEF}
		}), powerTemplate(elk, 0x7E, 0xEF, 8, func(on bool) []byte {
			return []byte{0x7E, 0x00, 0x04, boolByte(on), 0x00, 0x00, 0x00, 0xEF}
		}))...))

	triones := `triones`
	formats = append(formats, NewFormat(triones, `Triones / HappyLighting 0x56 family`,
		append(colorTemplates(triones, 0x56, 0xAA, 7, func(c common.Color) []byte {
			return []byte{0x56, c.R, c.G, c.B, 0x00, 0xF0, 0xAA}
		}),
			powerTemplate(triones, 0xCC, 0x33, 3, func(on bool) []byte {
				if on {
					return []byte{0xCC, 0x23, 0x33}
				}
				return []byte{0xCC, 0x24, 0x33}
			}),
			Template{
				Name: `mode`, Kind: common.KindMode, Opcode: 0xBB, Terminator: 0x44, Size: 4,
				Encode: func(cmd common.Command) ([]byte, error) {
					c, ok := cmd.(common.SetMode)
					if !ok {
						return nil, unexpected(triones, cmd)
					}
					return []byte{0xBB, uint8(common.ClampInt(c.Index, 0, 0xFF)), 0x10, 0x44}, nil
				},
			},
		)...))

	magic := `magic-home`
	formats = append(formats, NewFormat(magic, `Magic Home / Flux 0x31 family`,
		append(colorTemplates(magic, 0x31, 0x0F, 7, func(c common.Color) []byte {
			return []byte{0x31, c.R, c.G, c.B, 0x00, 0xF0, 0x0F}
		}), powerTemplate(magic, 0x71, 0x0F, 3, func(on bool) []byte {
			if on {
				return []byte{0x71, 0x23, 0x0F}
			}
			return []byte{0x71, 0x24, 0x0F}
		}))...))

	formats = append(formats,
		simpleFormat(`govee`, `Govee 0x33 0x01 color`, func(c common.Color) []byte {
			return []byte{0x33, 0x01, c.R, c.G, c.B, 0x00, 0x00, 0x00}
		}, 8, 0x33),
		simpleFormat(`happy-lighting`, `0x51 color with additive checksum`, func(c common.Color) []byte {
			sum := byte(0x51) + c.R + c.G + c.B
			return []byte{0x51, c.R, c.G, c.B, 0x00, sum}
		}, 6, 0x51),
		simpleFormat(`generic-cc`, `0xCC r,g,b 0x33`, func(c common.Color) []byte {
			return []byte{0xCC, c.R, c.G, c.B, 0x33}
		}, 5, 0xCC),
		simpleFormat(`wled-binary`, `WLED binary segment color`, func(c common.Color) []byte {
			return []byte{0x01, 0x00, 0x00, c.R, c.G, c.B}
		}, 6, 0x01),
	)

	neo := `neopixel`
	neoTemplates := colorTemplates(neo, 0, 0, 9, nil)
	for i := range neoTemplates {
		neoTemplates[i].Encode = func(cmd common.Command) ([]byte, error) {
			c, ok := colorOf(cmd)
			if !ok {
				return nil, unexpected(neo, cmd)
			}
			frame := &NeoPixelColor{
				Length:     DefaultNeoPixelLength,
				Red:        c.R,
				Green:      c.G,
				Blue:       c.B,
				Alpha:      0xFF,
				Brightness: 0xFF,
			}
			return frame.Encode()
		}
	}
	formats = append(formats, NewFormat(neo, `NeoPixel structured color`, neoTemplates...))

	return formats
}

func boolByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
