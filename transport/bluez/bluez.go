// Package bluez implements common.Transport over the BlueZ D-Bus API
package bluez

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

const (
	// DefaultPollInterval is how often the object tree is re-read while
	// waiting for service resolution
	DefaultPollInterval    = 250 * time.Millisecond
	notificationBufferSize = 64
)

var flagCapabilities = map[string]common.Capability{
	`broadcast`:                   common.CapBroadcast,
	`read`:                        common.CapRead,
	`write-without-response`:      common.CapWriteNoResponse,
	`write`:                       common.CapWrite,
	`notify`:                      common.CapNotify,
	`indicate`:                    common.CapIndicate,
	`authenticated-signed-writes`: common.CapSignedWrite,
	`extended-properties`:         common.CapExtendedProperties,
}

// Capabilities converts BlueZ characteristic flags to a Capability bitmask.
// Unknown flags are ignored.
func Capabilities(flags []string) common.Capability {
	var c common.Capability
	for _, f := range flags {
		c |= flagCapabilities[f]
	}
	return c
}

// Transport drives one BlueZ adapter and at most one connected device
type Transport struct {
	bus           Bus
	pollInterval  time.Duration
	adapter       dbus.ObjectPath
	device        dbus.ObjectPath
	notifying     map[dbus.ObjectPath]common.Characteristic
	notifications chan common.Notification
	stopSignals   context.CancelFunc
	sync.RWMutex
}

// New returns a Transport on the system bus
func New() (*Transport, error) {
	bus, err := SystemBus()
	if err != nil {
		return nil, err
	}
	return NewWithBus(bus), nil
}

// NewWithBus returns a Transport using bus
func NewWithBus(bus Bus) *Transport {
	return &Transport{
		bus:           bus,
		pollInterval:  DefaultPollInterval,
		notifying:     make(map[dbus.ObjectPath]common.Characteristic),
		notifications: make(chan common.Notification, notificationBufferSize),
	}
}

// SetPollInterval changes how often Connect re-reads the object tree
func (t *Transport) SetPollInterval(d time.Duration) {
	t.Lock()
	t.pollInterval = d
	t.Unlock()
}

func (t *Transport) findAdapter(ctx context.Context) (dbus.ObjectPath, error) {
	t.RLock()
	adapter := t.adapter
	t.RUnlock()
	if adapter != `` {
		return adapter, nil
	}

	objects, err := t.bus.ManagedObjects(ctx)
	if err != nil {
		return ``, err
	}
	for _, path := range sortedPaths(objects) {
		if _, ok := objects[path][adapterInterface]; ok {
			t.Lock()
			t.adapter = path
			t.Unlock()
			return path, nil
		}
	}
	return ``, fmt.Errorf(`bluetooth adapter %w`, common.ErrNotFound)
}

// Scan runs discovery on the adapter until ctx is done, then lists the
// devices BlueZ knows about
func (t *Transport) Scan(ctx context.Context) ([]common.Peripheral, error) {
	adapter, err := t.findAdapter(ctx)
	if err != nil {
		return nil, err
	}
	if err := t.bus.Call(ctx, adapter, adapterInterface+`.StartDiscovery`); err != nil {
		common.Log.Warnf("Could not start discovery: %v", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), common.DefaultTimeout)
	defer cancel()
	if err := t.bus.Call(stopCtx, adapter, adapterInterface+`.StopDiscovery`); err != nil {
		common.Log.Debugf("Could not stop discovery: %v", err)
	}

	objects, err := t.bus.ManagedObjects(stopCtx)
	if err != nil {
		return nil, err
	}
	var peripherals []common.Peripheral
	for _, path := range sortedPaths(objects) {
		props, ok := objects[path][deviceInterface]
		if !ok || variantPath(props, `Adapter`) != adapter {
			continue
		}
		p := common.Peripheral{
			ID:   variantString(props, `Address`),
			Name: variantString(props, `Name`),
		}
		if rssi, ok := props[`RSSI`].Value().(int16); ok {
			p.RSSI = rssi
		}
		peripherals = append(peripherals, p)
	}
	common.Log.Debugf("Scan found %d devices", len(peripherals))
	return peripherals, nil
}

// resolve finds the device object for id, which may be an object path or a
// MAC address
func (t *Transport) resolve(ctx context.Context, id string) (dbus.ObjectPath, error) {
	objects, err := t.bus.ManagedObjects(ctx)
	if err != nil {
		return ``, err
	}
	for _, path := range sortedPaths(objects) {
		props, ok := objects[path][deviceInterface]
		if !ok {
			continue
		}
		if string(path) == id || strings.EqualFold(variantString(props, `Address`), id) {
			return path, nil
		}
	}
	return ``, fmt.Errorf(`device %s %w`, id, common.ErrNotFound)
}

// Connect connects to the device and waits until BlueZ has resolved its
// services
func (t *Transport) Connect(ctx context.Context, id string) error {
	path, err := t.resolve(ctx, id)
	if err != nil {
		return err
	}
	common.Log.Infof("Connecting to %s", path)
	if err := t.bus.Call(ctx, path, deviceInterface+`.Connect`); err != nil {
		return fmt.Errorf(`failed to connect to device: %w`, err)
	}

	t.RLock()
	interval := t.pollInterval
	t.RUnlock()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		objects, err := t.bus.ManagedObjects(ctx)
		if err != nil {
			return err
		}
		if resolved, _ := objects[path][deviceInterface][`ServicesResolved`].Value().(bool); resolved {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	t.Lock()
	t.device = path
	t.Unlock()
	return nil
}

// Disconnect drops the connection and stops notification delivery
func (t *Transport) Disconnect() error {
	t.Lock()
	path := t.device
	t.device = ``
	t.notifying = make(map[dbus.ObjectPath]common.Characteristic)
	stop := t.stopSignals
	t.stopSignals = nil
	t.Unlock()

	if stop != nil {
		stop()
	}
	if path == `` {
		return common.ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.DefaultTimeout)
	defer cancel()
	return t.bus.Call(ctx, path, deviceInterface+`.Disconnect`)
}

func (t *Transport) connected() (dbus.ObjectPath, error) {
	t.RLock()
	defer t.RUnlock()
	if t.device == `` {
		return ``, common.ErrNotConnected
	}
	return t.device, nil
}

// DiscoverServices lists the GATT services of the connected device in handle
// order
func (t *Transport) DiscoverServices(ctx context.Context) ([]common.Service, error) {
	device, err := t.connected()
	if err != nil {
		return nil, err
	}
	objects, err := t.bus.ManagedObjects(ctx)
	if err != nil {
		return nil, err
	}
	var services []common.Service
	for _, path := range sortedPaths(objects) {
		props, ok := objects[path][serviceInterface]
		if !ok || variantPath(props, `Device`) != device {
			continue
		}
		id, err := common.ParseUUID(variantString(props, `UUID`))
		if err != nil {
			common.Log.Warnf("Skipping service %s: %v", path, err)
			continue
		}
		primary, _ := props[`Primary`].Value().(bool)
		services = append(services, common.Service{ID: string(path), UUID: id, Primary: primary})
	}
	return services, nil
}

// DiscoverCharacteristics lists the characteristics of svc in handle order
func (t *Transport) DiscoverCharacteristics(ctx context.Context, svc common.Service) ([]common.Characteristic, error) {
	if _, err := t.connected(); err != nil {
		return nil, err
	}
	objects, err := t.bus.ManagedObjects(ctx)
	if err != nil {
		return nil, err
	}
	var chars []common.Characteristic
	for _, path := range sortedPaths(objects) {
		props, ok := objects[path][charInterface]
		if !ok || string(variantPath(props, `Service`)) != svc.ID {
			continue
		}
		id, err := common.ParseUUID(variantString(props, `UUID`))
		if err != nil {
			common.Log.Warnf("Skipping characteristic %s: %v", path, err)
			continue
		}
		flags, _ := props[`Flags`].Value().([]string)
		chars = append(chars, common.Characteristic{
			ID:           string(path),
			UUID:         id,
			ServiceUUID:  svc.UUID,
			Capabilities: Capabilities(flags),
		})
	}
	return chars, nil
}

// Write sends data with WriteValue, as a request when ack is set and as a
// command otherwise
func (t *Transport) Write(ctx context.Context, c common.Characteristic, data []byte, ack bool) error {
	if _, err := t.connected(); err != nil {
		return err
	}
	writeType := `command`
	if ack {
		writeType = `request`
	}
	options := map[string]dbus.Variant{`type`: dbus.MakeVariant(writeType)}
	return t.bus.Call(ctx, dbus.ObjectPath(c.ID), charInterface+`.WriteValue`, data, options)
}

// SetNotify starts or stops notifications on c. The first enabled
// characteristic starts signal delivery.
func (t *Transport) SetNotify(ctx context.Context, c common.Characteristic, enable bool) error {
	if _, err := t.connected(); err != nil {
		return err
	}
	path := dbus.ObjectPath(c.ID)
	if !enable {
		t.Lock()
		delete(t.notifying, path)
		t.Unlock()
		return t.bus.Call(ctx, path, charInterface+`.StopNotify`)
	}

	if err := t.startSignals(ctx); err != nil {
		return err
	}
	if err := t.bus.Call(ctx, path, charInterface+`.StartNotify`); err != nil {
		return err
	}
	t.Lock()
	t.notifying[path] = c
	t.Unlock()
	return nil
}

func (t *Transport) startSignals(ctx context.Context) error {
	t.Lock()
	defer t.Unlock()
	if t.stopSignals != nil {
		return nil
	}
	signalCtx, cancel := context.WithCancel(context.Background())
	signals, err := t.bus.Signals(signalCtx)
	if err != nil {
		cancel()
		return err
	}
	t.stopSignals = cancel
	go t.handleSignals(signalCtx, signals)
	return nil
}

func (t *Transport) handleSignals(ctx context.Context, signals <-chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			t.handleSignal(sig)
		}
	}
}

func (t *Transport) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != charInterface {
		return
	}
	t.RLock()
	c, ok := t.notifying[sig.Path]
	t.RUnlock()
	if !ok {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}
	value, ok := changed[`Value`].Value().([]byte)
	if !ok {
		return
	}

	select {
	case t.notifications <- common.Notification{Characteristic: c, Data: value}:
	default:
		common.Log.Warnf("Dropped notification from %s: consumer too slow", sig.Path)
	}
}

// Notifications implements common.Transport
func (t *Transport) Notifications() <-chan common.Notification {
	return t.notifications
}

// Close disconnects if needed and releases the bus
func (t *Transport) Close() error {
	if err := t.Disconnect(); err != nil && !errors.Is(err, common.ErrNotConnected) {
		common.Log.Warnf("Disconnect on close failed: %v", err)
	}
	return t.bus.Close()
}

func sortedPaths(objects Objects) []dbus.ObjectPath {
	paths := make([]dbus.ObjectPath, 0, len(objects))
	for path := range objects {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

func variantString(props map[string]dbus.Variant, key string) string {
	s, _ := props[key].Value().(string)
	return s
}

func variantPath(props map[string]dbus.Variant, key string) dbus.ObjectPath {
	p, _ := props[key].Value().(dbus.ObjectPath)
	return p
}
