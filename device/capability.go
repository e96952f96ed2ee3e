// Package device classifies the characteristics of a connected LED controller
// and binds the profile used to drive it.
//
// This package is not designed to be accessed by end users, all interaction
// should occur via the Controller in the argbled package.
package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// Role is a behaviour a characteristic can serve
type Role int

const (
	RoleUnknown Role = iota
	RoleRead
	RoleWriteNoResponse
	RoleWriteWithResponse
	RoleNotify
)

func (r Role) String() string {
	switch r {
	case RoleRead:
		return `read`
	case RoleWriteNoResponse:
		return `write-without-response`
	case RoleWriteWithResponse:
		return `write-with-response`
	case RoleNotify:
		return `notify`
	}
	return `unknown`
}

var (
	// StarlightWrite is the control characteristic of STARLIGHT controllers
	StarlightWrite = common.ShortUUID(0xFFF3)
	// GenericWrite is the FFE1 serial-style characteristic used by many
	// ELK-BLEDOM and Triones clones
	GenericWrite = common.ShortUUID(0xFFE1)
	// NeoPixelAnimation is the animation characteristic of NeoPixel firmware
	NeoPixelAnimation = uuid.MustParse(`3F1D00C3-632F-4E53-9A14-437DD54BCCCB`)
	// NeoPixelColor is the color characteristic of NeoPixel firmware
	NeoPixelColor = uuid.MustParse(`3F1D00C2-632F-4E53-9A14-437DD54BCCCB`)
	// NeoPixelStrip is the strip configuration characteristic of NeoPixel
	// firmware
	NeoPixelStrip = uuid.MustParse(`3F1D00C1-632F-4E53-9A14-437DD54BCCCB`)
)

// KnownIdentities is the default control characteristic precedence
var KnownIdentities = []uuid.UUID{StarlightWrite, NeoPixelAnimation, GenericWrite}

// Classify returns every role supported by a characteristic
func Classify(c common.Characteristic) []Role {
	var roles []Role
	if c.Capabilities.Has(common.CapRead) {
		roles = append(roles, RoleRead)
	}
	if c.Capabilities.Has(common.CapWriteNoResponse) {
		roles = append(roles, RoleWriteNoResponse)
	}
	if c.Capabilities.Has(common.CapWrite) {
		roles = append(roles, RoleWriteWithResponse)
	}
	if c.Capabilities&(common.CapNotify|common.CapIndicate) != 0 {
		roles = append(roles, RoleNotify)
	}
	if len(roles) == 0 {
		roles = append(roles, RoleUnknown)
	}
	return roles
}

// CapabilityMap is the classified view of a device's characteristics. The
// characteristics themselves belong to the transport.
type CapabilityMap struct {
	characteristics []common.Characteristic
	roles           map[string][]Role
	control         common.Characteristic
	notifyErrors    map[string]error
	sync.RWMutex
}

// MapCapabilities classifies chars, selects the control characteristic, and
// enables notifications on every notifiable characteristic. Identities in known
// take precedence over discovery order, earlier identities first; when known is
// empty KnownIdentities is used.
//
// Notification enablement failures are logged and kept in NotifyErrors, they
// do not fail the mapping. A device with nothing writable returns
// common.ErrNoControlCharacteristic.
func MapCapabilities(ctx context.Context, t common.Transport, chars []common.Characteristic, known ...uuid.UUID) (*CapabilityMap, error) {
	if len(known) == 0 {
		known = KnownIdentities
	}

	m := &CapabilityMap{
		characteristics: make([]common.Characteristic, len(chars)),
		roles:           make(map[string][]Role, len(chars)),
		notifyErrors:    make(map[string]error),
	}
	copy(m.characteristics, chars)

	for _, c := range chars {
		m.roles[c.ID] = Classify(c)
		common.Log.Debugf("Characteristic %s: %v", c, m.roles[c.ID])
	}

	control, ok := selectControl(chars, known)
	if !ok {
		return nil, common.ErrNoControlCharacteristic
	}
	m.control = control
	common.Log.Infof("Selected control characteristic %s", control)

	for _, c := range chars {
		if c.Capabilities&(common.CapNotify|common.CapIndicate) == 0 {
			continue
		}
		if err := t.SetNotify(ctx, c, true); err != nil {
			common.Log.Warnf("Failed enabling notifications on %s: %v", c, err)
			m.notifyErrors[c.ID] = err
			continue
		}
		common.Log.Debugf("Enabled notifications on %s", c)
	}

	return m, nil
}

func selectControl(chars []common.Characteristic, known []uuid.UUID) (common.Characteristic, bool) {
	for _, id := range known {
		for _, c := range chars {
			if c.UUID == id && c.Capabilities.Writable() {
				return c, true
			}
		}
	}
	for _, c := range chars {
		if c.Capabilities.Writable() {
			return c, true
		}
	}
	return common.Characteristic{}, false
}

// Control returns the selected control characteristic
func (m *CapabilityMap) Control() common.Characteristic {
	m.RLock()
	defer m.RUnlock()
	return m.control
}

// Characteristics returns every characteristic in discovery order
func (m *CapabilityMap) Characteristics() []common.Characteristic {
	m.RLock()
	defer m.RUnlock()
	out := make([]common.Characteristic, len(m.characteristics))
	copy(out, m.characteristics)
	return out
}

// Roles returns the roles of the characteristic with the given ID
func (m *CapabilityMap) Roles(id string) []Role {
	m.RLock()
	defer m.RUnlock()
	return m.roles[id]
}

// WithRole returns, in discovery order, the characteristics serving role
func (m *CapabilityMap) WithRole(role Role) []common.Characteristic {
	m.RLock()
	defer m.RUnlock()
	var out []common.Characteristic
	for _, c := range m.characteristics {
		for _, r := range m.roles[c.ID] {
			if r == role {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Writable returns every writable characteristic in discovery order
func (m *CapabilityMap) Writable() []common.Characteristic {
	m.RLock()
	defer m.RUnlock()
	var out []common.Characteristic
	for _, c := range m.characteristics {
		if c.Capabilities.Writable() {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the characteristic with the given identity
func (m *CapabilityMap) Lookup(id uuid.UUID) (common.Characteristic, error) {
	m.RLock()
	defer m.RUnlock()
	for _, c := range m.characteristics {
		if c.UUID == id {
			return c, nil
		}
	}
	return common.Characteristic{}, fmt.Errorf(`characteristic %s: %w`, id, common.ErrNotFound)
}

// NotifyErrors returns notification enablement failures keyed by
// characteristic ID
func (m *CapabilityMap) NotifyErrors() map[string]error {
	m.RLock()
	defer m.RUnlock()
	out := make(map[string]error, len(m.notifyErrors))
	for k, v := range m.notifyErrors {
		out[k] = v
	}
	return out
}

// Discover walks every service on the connected peripheral and maps the
// characteristics found
func Discover(ctx context.Context, t common.Transport, known ...uuid.UUID) (*CapabilityMap, error) {
	services, err := t.DiscoverServices(ctx)
	if err != nil {
		return nil, err
	}
	var chars []common.Characteristic
	for _, svc := range services {
		found, err := t.DiscoverCharacteristics(ctx, svc)
		if err != nil {
			common.Log.Warnf("Failed discovering characteristics of service %s: %v", svc.UUID, err)
			continue
		}
		chars = append(chars, found...)
	}
	return MapCapabilities(ctx, t, chars, known...)
}

// NotificationHint interprets the first byte of a notification payload
func NotificationHint(data []byte) string {
	if len(data) == 0 {
		return `empty`
	}
	switch data[0] {
	case 0x7E:
		return `protocol response`
	case 0x00:
		return `status response`
	case 0xFF:
		return `error response`
	case 0xBC:
		return `starlight frame`
	}
	return `unknown`
}
