package common

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Capability is a bitmask of advertised GATT characteristic properties. Bit
// values match the Bluetooth characteristic properties field.
type Capability uint8

const (
	CapBroadcast          Capability = 0x01
	CapRead               Capability = 0x02
	CapWriteNoResponse    Capability = 0x04
	CapWrite              Capability = 0x08
	CapNotify             Capability = 0x10
	CapIndicate           Capability = 0x20
	CapSignedWrite        Capability = 0x40
	CapExtendedProperties Capability = 0x80
)

// Has reports whether every bit in o is set
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

// Writable reports whether the characteristic accepts writes of either type
func (c Capability) Writable() bool {
	return c&(CapWrite|CapWriteNoResponse) != 0
}

func (c Capability) String() string {
	var parts []string
	for _, f := range []struct {
		cap  Capability
		name string
	}{
		{CapBroadcast, `broadcast`},
		{CapRead, `read`},
		{CapWriteNoResponse, `write-without-response`},
		{CapWrite, `write`},
		{CapNotify, `notify`},
		{CapIndicate, `indicate`},
		{CapSignedWrite, `signed-write`},
		{CapExtendedProperties, `extended`},
	} {
		if c&f.cap != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return `none`
	}
	return strings.Join(parts, `|`)
}

// Characteristic is a transport-owned GATT characteristic. ID is an opaque
// handle meaningful only to the transport that produced it.
type Characteristic struct {
	ID           string
	UUID         uuid.UUID
	ServiceUUID  uuid.UUID
	Capabilities Capability
}

func (c Characteristic) String() string {
	return c.UUID.String() + ` [` + c.Capabilities.String() + `]`
}

// Service is a discovered GATT service
type Service struct {
	ID      string
	UUID    uuid.UUID
	Primary bool
}

// Peripheral is a device found while scanning
type Peripheral struct {
	ID   string
	Name string
	RSSI int16
}

// Notification carries data pushed by the peripheral on a subscribed
// characteristic
type Notification struct {
	Characteristic Characteristic
	Data           []byte
}

// Transport is the BLE collaborator consumed by the core. Writes report
// completion or failure through their return value; notification data arrives
// on the Notifications channel.
type Transport interface {
	// Scan returns peripherals seen before ctx is done
	Scan(ctx context.Context) ([]Peripheral, error)
	// Connect establishes a connection to the peripheral with id
	Connect(ctx context.Context, id string) error
	// Disconnect drops the current connection
	Disconnect() error
	// DiscoverServices lists services on the connected peripheral
	DiscoverServices(ctx context.Context) ([]Service, error)
	// DiscoverCharacteristics lists characteristics of svc
	DiscoverCharacteristics(ctx context.Context, svc Service) ([]Characteristic, error)
	// Write sends data to c, requesting an acknowledgement when ack is true
	Write(ctx context.Context, c Characteristic, data []byte, ack bool) error
	// SetNotify enables or disables notifications on c
	SetNotify(ctx context.Context, c Characteristic, enable bool) error
	// Notifications delivers incoming notification data
	Notifications() <-chan Notification
}

// bluetoothBase is the Bluetooth SIG base UUID used to expand 16 and 32 bit
// identifiers
var bluetoothBase = uuid.MustParse(`00000000-0000-1000-8000-00805f9b34fb`)

// ShortUUID expands a 16 bit assigned number (e.g. 0xFFF3) into a full UUID
func ShortUUID(short uint16) uuid.UUID {
	u := bluetoothBase
	u[2] = byte(short >> 8)
	u[3] = byte(short)
	return u
}

// ParseUUID accepts full UUIDs as well as 4 character short forms such as
// "FFF3"
func ParseUUID(s string) (uuid.UUID, error) {
	if len(s) == 4 {
		short, err := uuid.Parse(`0000` + s + bluetoothBase.String()[8:])
		if err != nil {
			return uuid.Nil, err
		}
		return short, nil
	}
	return uuid.Parse(s)
}
