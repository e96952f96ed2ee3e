package bluez

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// D-Bus names used by BlueZ
const (
	busName              = `org.bluez`
	adapterInterface     = `org.bluez.Adapter1`
	deviceInterface      = `org.bluez.Device1`
	serviceInterface     = `org.bluez.GattService1`
	charInterface        = `org.bluez.GattCharacteristic1`
	propertiesChanged    = `org.freedesktop.DBus.Properties.PropertiesChanged`
	objectManagerMethod  = `org.freedesktop.DBus.ObjectManager.GetManagedObjects`
	propertiesMatchRule  = `type='signal',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',arg0='org.bluez.GattCharacteristic1'`
	signalChanBufferSize = 32
)

// Objects is the result of GetManagedObjects: path → interface → property
type Objects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Bus is the slice of the system bus the transport needs
type Bus interface {
	// ManagedObjects returns every object BlueZ exports
	ManagedObjects(ctx context.Context) (Objects, error)
	// Call invokes method on the BlueZ object at path
	Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) error
	// Signals delivers characteristic PropertiesChanged signals until ctx is
	// done
	Signals(ctx context.Context) (<-chan *dbus.Signal, error)
	// Close releases the bus connection
	Close() error
}

type systemBus struct {
	conn *dbus.Conn
}

// SystemBus connects to the D-Bus system bus
func SystemBus() (Bus, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf(`connecting to system bus: %w`, err)
	}
	return &systemBus{conn: conn}, nil
}

func (b *systemBus) ManagedObjects(ctx context.Context) (Objects, error) {
	var objects Objects
	err := b.conn.Object(busName, `/`).CallWithContext(ctx, objectManagerMethod, 0).Store(&objects)
	if err != nil {
		return nil, fmt.Errorf(`failed to get managed objects: %w`, err)
	}
	return objects, nil
}

func (b *systemBus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) error {
	return b.conn.Object(busName, path).CallWithContext(ctx, method, 0, args...).Store()
}

func (b *systemBus) Signals(ctx context.Context) (<-chan *dbus.Signal, error) {
	call := b.conn.BusObject().CallWithContext(ctx, `org.freedesktop.DBus.AddMatch`, 0, propertiesMatchRule)
	if call.Err != nil {
		return nil, fmt.Errorf(`failed to add match signal: %w`, call.Err)
	}
	ch := make(chan *dbus.Signal, signalChanBufferSize)
	b.conn.Signal(ch)
	go func() {
		<-ctx.Done()
		b.conn.RemoveSignal(ch)
		b.conn.BusObject().Call(`org.freedesktop.DBus.RemoveMatch`, 0, propertiesMatchRule)
	}()
	return ch, nil
}

func (b *systemBus) Close() error {
	return b.conn.Close()
}
