package device

import (
	"fmt"
	"time"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/protocol"
)

// WriteType selects acknowledged or unacknowledged writes
type WriteType int

const (
	// WriteAuto follows the characteristic capabilities, preferring writes
	// without response
	WriteAuto WriteType = iota
	WriteWithResponse
	WriteWithoutResponse
)

func (w WriteType) String() string {
	switch w {
	case WriteWithResponse:
		return `with-response`
	case WriteWithoutResponse:
		return `without-response`
	}
	return `auto`
}

// Acknowledged resolves the write type against c's capabilities
func (w WriteType) Acknowledged(c common.Characteristic) bool {
	switch w {
	case WriteWithResponse:
		return true
	case WriteWithoutResponse:
		return false
	}
	return !c.Capabilities.Has(common.CapWriteNoResponse) && c.Capabilities.Has(common.CapWrite)
}

// Profile is the binding of a protocol to a control characteristic. It is
// immutable once created and discarded on disconnect.
type Profile struct {
	codec     protocol.Codec
	control   common.Characteristic
	writeType WriteType
	spacing   time.Duration
}

// Bind creates the profile for a mapped device. A zero spacing selects
// common.DefaultMinWriteSpacingMs.
func Bind(m *CapabilityMap, codec protocol.Codec, writeType WriteType, spacing time.Duration) (*Profile, error) {
	if codec == nil {
		return nil, common.ErrUnboundProtocol
	}
	if m == nil {
		return nil, common.ErrNoControlCharacteristic
	}
	control := m.Control()
	if !control.Capabilities.Writable() {
		return nil, common.ErrNoControlCharacteristic
	}
	if spacing <= 0 {
		spacing = common.DefaultMinWriteSpacingMs * time.Millisecond
	}
	return &Profile{
		codec:     codec,
		control:   control,
		writeType: writeType,
		spacing:   spacing,
	}, nil
}

// Format returns the bound protocol name
func (p *Profile) Format() string {
	return p.codec.Format()
}

// Codec returns the bound codec
func (p *Profile) Codec() protocol.Codec {
	return p.codec
}

// Control returns the characteristic commands are written to
func (p *Profile) Control() common.Characteristic {
	return p.control
}

// WriteType returns the configured write type
func (p *Profile) WriteType() WriteType {
	return p.writeType
}

// Acknowledged reports whether writes to the control characteristic request a
// response
func (p *Profile) Acknowledged() bool {
	return p.writeType.Acknowledged(p.control)
}

// Spacing returns the minimum spacing between writes
func (p *Profile) Spacing() time.Duration {
	return p.spacing
}

// Encode encodes cmd with the bound codec
func (p *Profile) Encode(cmd common.Command) ([]byte, error) {
	if p == nil {
		return nil, common.ErrUnboundProtocol
	}
	return protocol.Encode(p.codec, cmd)
}

func (p *Profile) String() string {
	return fmt.Sprintf(`%s on %s (%s)`, p.Format(), p.control.UUID, p.writeType)
}
