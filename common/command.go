package common

import "fmt"

// CommandKind identifies a Command variant
type CommandKind int

const (
	KindPower CommandKind = iota + 1
	KindRGB
	KindHSV
	KindBrightness
	KindMode
	KindSpeed
	KindDirection
	KindTemperature
	KindFlash
)

var kindNames = map[CommandKind]string{
	KindPower:       `power`,
	KindRGB:         `rgb`,
	KindHSV:         `hsv`,
	KindBrightness:  `brightness`,
	KindMode:        `mode`,
	KindSpeed:       `speed`,
	KindDirection:   `direction`,
	KindTemperature: `temperature`,
	KindFlash:       `flash`,
}

func (k CommandKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf(`kind(%d)`, int(k))
}

// Command is a semantic lighting intent. It is a closed set: only the variant
// types in this package implement it.
type Command interface {
	Kind() CommandKind
	command()
}

// Power switches the strip on or off
type Power struct {
	On bool
}

// SetRGB sets every LED to one color
type SetRGB struct {
	Color Color
}

// SetHSV sets every LED from the color wheel. Hue is in [0,360], Saturation
// in [0,997].
type SetHSV struct {
	Hue        int
	Saturation int
}

// SetBrightness sets the global brightness in [0,1000]
type SetBrightness struct {
	Level int
}

// SetMode selects a built-in animation by its raw index
type SetMode struct {
	Index int
}

// SetSpeed sets animation speed in [0,255]
type SetSpeed struct {
	Speed int
}

// SetDirection sets animation direction
type SetDirection struct {
	Reverse bool
}

// SetTemperature selects a white temperature in [0,360], warm to cool
type SetTemperature struct {
	Theta int
}

// Flash is a short, full intensity color hit used for strong beats
type Flash struct {
	Color Color
	Speed int
}

func (Power) Kind() CommandKind          { return KindPower }
func (SetRGB) Kind() CommandKind         { return KindRGB }
func (SetHSV) Kind() CommandKind         { return KindHSV }
func (SetBrightness) Kind() CommandKind  { return KindBrightness }
func (SetMode) Kind() CommandKind        { return KindMode }
func (SetSpeed) Kind() CommandKind       { return KindSpeed }
func (SetDirection) Kind() CommandKind   { return KindDirection }
func (SetTemperature) Kind() CommandKind { return KindTemperature }
func (Flash) Kind() CommandKind          { return KindFlash }

func (Power) command()          {}
func (SetRGB) command()         {}
func (SetHSV) command()         {}
func (SetBrightness) command()  {}
func (SetMode) command()        {}
func (SetSpeed) command()       {}
func (SetDirection) command()   {}
func (SetTemperature) command() {}
func (Flash) command()          {}

// Clamped returns the command with hue and saturation limited to their ranges
func (c SetHSV) Clamped() SetHSV {
	return SetHSV{
		Hue:        ClampInt(c.Hue, 0, MaxHue),
		Saturation: ClampInt(c.Saturation, 0, MaxSaturation),
	}
}

// Clamped returns the command with the level limited to [0,1000]
func (c SetBrightness) Clamped() SetBrightness {
	return SetBrightness{Level: ClampInt(c.Level, 0, MaxBrightness)}
}

// Clamped returns the command with the speed limited to [0,255]
func (c SetSpeed) Clamped() SetSpeed {
	return SetSpeed{Speed: ClampInt(c.Speed, 0, MaxSpeed)}
}

// Clamped returns the command with theta limited to [0,360]
func (c SetTemperature) Clamped() SetTemperature {
	return SetTemperature{Theta: ClampInt(c.Theta, 0, MaxTemperature)}
}

// FormatCommand renders a command for logs
func FormatCommand(cmd Command) string {
	switch c := cmd.(type) {
	case Power:
		return fmt.Sprintf(`power(on=%t)`, c.On)
	case SetRGB:
		return fmt.Sprintf(`rgb(%d,%d,%d)`, c.Color.R, c.Color.G, c.Color.B)
	case SetHSV:
		return fmt.Sprintf(`hsv(h=%d,s=%d)`, c.Hue, c.Saturation)
	case SetBrightness:
		return fmt.Sprintf(`brightness(%d)`, c.Level)
	case SetMode:
		return fmt.Sprintf(`mode(%d)`, c.Index)
	case SetSpeed:
		return fmt.Sprintf(`speed(%d)`, c.Speed)
	case SetDirection:
		return fmt.Sprintf(`direction(reverse=%t)`, c.Reverse)
	case SetTemperature:
		return fmt.Sprintf(`temperature(%d)`, c.Theta)
	case Flash:
		return fmt.Sprintf(`flash(%d,%d,%d,speed=%d)`, c.Color.R, c.Color.G, c.Color.B, c.Speed)
	case nil:
		return `<nil>`
	default:
		return fmt.Sprintf(`%T`, cmd)
	}
}
