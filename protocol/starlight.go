package protocol

import (
	"github.com/Exquve/BluetoothARGBController-APP/common"
)

const (
	StarlightHeader byte = 0xBC
	StarlightFooter byte = 0x55

	StarlightPower       byte = 0x01
	StarlightColor       byte = 0x04
	StarlightBrightness  byte = 0x05
	StarlightMode        byte = 0x06
	StarlightDirection   byte = 0x07
	StarlightSpeed       byte = 0x08
	StarlightTemperature byte = 0x13

	// MaxModeIndex keeps the remapped mode index inside two base-255 digits
	MaxModeIndex = 255*255 + 254 - 2
)

// The controller firmware splits hue, saturation and mode with base 255 but
// brightness and temperature with base 256. Do not unify.
const (
	hsvBase    = 255
	levelBase  = 256
	modeGap    = 112
	modeShift  = 2
	starlightN = `starlight`
)

type starlightColorFrame struct {
	Header    uint8
	Command   uint8
	Length    uint8
	HueHigh   uint8
	HueLow    uint8
	SatHigh   uint8
	SatLow    uint8
	Reserved0 uint8
	Reserved1 uint8
	Red       uint8
	Green     uint8
	Blue      uint8
	Footer    uint8
}

type starlightLevelFrame struct {
	Header    uint8
	Command   uint8
	Length    uint8
	High      uint8
	Low       uint8
	Reserved0 uint8
	Reserved1 uint8
	Reserved2 uint8
	Reserved3 uint8
	Footer    uint8
}

type starlightWordFrame struct {
	Header  uint8
	Command uint8
	Length  uint8
	High    uint8
	Low     uint8
	Footer  uint8
}

type starlightByteFrame struct {
	Header  uint8
	Command uint8
	Length  uint8
	Value   uint8
	Footer  uint8
}

// StarlightColorFrame encodes a color frame carrying both the hue/saturation pair
// and the raw channels. Pure white zeroes the saturation bytes.
func StarlightColorFrame(c common.Color, hsv common.HSV) ([]byte, error) {
	hue := common.ClampInt(hsv.Hue, 0, common.MaxHue)
	sat := common.ClampInt(hsv.Saturation, 0, common.MaxSaturation)
	if c == common.White {
		sat = 0
	}
	return pack(&starlightColorFrame{
		Header:  StarlightHeader,
		Command: StarlightColor,
		Length:  0x06,
		HueHigh: uint8(hue / hsvBase),
		HueLow:  uint8(hue % hsvBase),
		SatHigh: uint8(sat / hsvBase),
		SatLow:  uint8(sat % hsvBase),
		Red:     c.R,
		Green:   c.G,
		Blue:    c.B,
		Footer:  StarlightFooter,
	})
}

// StarlightPowerFrame encodes power. The device reads 0x00 as on.
func StarlightPowerFrame(on bool) ([]byte, error) {
	var v uint8 = 0x01
	if on {
		v = 0x00
	}
	return starlightByte(StarlightPower, v)
}

// StarlightBrightnessFrame encodes a brightness level in [0,1000]
func StarlightBrightnessFrame(level int) ([]byte, error) {
	level = common.ClampInt(level, 0, common.MaxBrightness)
	return pack(&starlightLevelFrame{
		Header:  StarlightHeader,
		Command: StarlightBrightness,
		Length:  0x06,
		High:    uint8(level / levelBase),
		Low:     uint8(level % levelBase),
		Footer:  StarlightFooter,
	})
}

// StarlightModeIndex maps a raw mode index to the index the firmware expects.
// Index 112 does not exist on the device: 112 becomes 113 and everything from
// 113 upwards shifts by two.
func StarlightModeIndex(raw int) int {
	raw = common.ClampInt(raw, 0, MaxModeIndex)
	switch {
	case raw == modeGap:
		return modeGap + 1
	case raw > modeGap:
		return raw + modeShift
	}
	return raw
}

// StarlightModeFrame encodes a built-in animation selection
func StarlightModeFrame(raw int) ([]byte, error) {
	m := StarlightModeIndex(raw)
	return pack(&starlightWordFrame{
		Header:  StarlightHeader,
		Command: StarlightMode,
		Length:  0x02,
		High:    uint8(m / hsvBase),
		Low:     uint8(m % hsvBase),
		Footer:  StarlightFooter,
	})
}

// StarlightSpeedFrame encodes animation speed in [0,255]
func StarlightSpeedFrame(speed int) ([]byte, error) {
	return starlightByte(StarlightSpeed, uint8(common.ClampInt(speed, 0, common.MaxSpeed)))
}

// StarlightDirectionFrame encodes animation direction
func StarlightDirectionFrame(reverse bool) ([]byte, error) {
	var v uint8
	if reverse {
		v = 0x01
	}
	return starlightByte(StarlightDirection, v)
}

// StarlightTemperatureFrame encodes a white temperature in [0,360]
func StarlightTemperatureFrame(theta int) ([]byte, error) {
	theta = common.ClampInt(theta, 0, common.MaxTemperature)
	return pack(&starlightWordFrame{
		Header:  StarlightHeader,
		Command: StarlightTemperature,
		Length:  0x02,
		High:    uint8(theta / levelBase),
		Low:     uint8(theta % levelBase),
		Footer:  StarlightFooter,
	})
}

func starlightByte(cmd, v uint8) ([]byte, error) {
	return pack(&starlightByteFrame{
		Header:  StarlightHeader,
		Command: cmd,
		Length:  0x01,
		Value:   v,
		Footer:  StarlightFooter,
	})
}

func starlightFormat() *Format {
	return NewFormat(starlightN, `STARLIGHT 0xBC...0x55 frames on FFF3`,
		Template{
			Name: `power`, Kind: common.KindPower, Opcode: StarlightPower, Terminator: StarlightFooter, Size: 5,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.Power)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightPowerFrame(c.On)
			},
		},
		Template{
			Name: `color`, Kind: common.KindRGB, Opcode: StarlightColor, Terminator: StarlightFooter, Size: 13,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.SetRGB)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightColorFrame(c.Color, common.RGBToHSV(c.Color))
			},
		},
		Template{
			Name: `color-hsv`, Kind: common.KindHSV, Opcode: StarlightColor, Terminator: StarlightFooter, Size: 13,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.SetHSV)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				hsv := common.HSV{Hue: c.Hue, Saturation: c.Saturation}
				return StarlightColorFrame(common.HSVToRGB(hsv), hsv)
			},
		},
		Template{
			Name: `flash`, Kind: common.KindFlash, Opcode: StarlightColor, Terminator: StarlightFooter, Size: 13,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.Flash)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightColorFrame(c.Color, common.RGBToHSV(c.Color))
			},
		},
		Template{
			Name: `brightness`, Kind: common.KindBrightness, Opcode: StarlightBrightness, Terminator: StarlightFooter, Size: 10,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.SetBrightness)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightBrightnessFrame(c.Level)
			},
		},
		Template{
			Name: `mode`, Kind: common.KindMode, Opcode: StarlightMode, Terminator: StarlightFooter, Size: 6,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.SetMode)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightModeFrame(c.Index)
			},
		},
		Template{
			Name: `direction`, Kind: common.KindDirection, Opcode: StarlightDirection, Terminator: StarlightFooter, Size: 5,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.SetDirection)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightDirectionFrame(c.Reverse)
			},
		},
		Template{
			Name: `speed`, Kind: common.KindSpeed, Opcode: StarlightSpeed, Terminator: StarlightFooter, Size: 5,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.SetSpeed)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightSpeedFrame(c.Speed)
			},
		},
		Template{
			Name: `temperature`, Kind: common.KindTemperature, Opcode: StarlightTemperature, Terminator: StarlightFooter, Size: 6,
			Encode: func(cmd common.Command) ([]byte, error) {
				c, ok := cmd.(common.SetTemperature)
				if !ok {
					return nil, unexpected(starlightN, cmd)
				}
				return StarlightTemperatureFrame(c.Theta)
			},
		},
	)
}
