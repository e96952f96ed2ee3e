package bluez_test

import (
	"context"
	"time"

	. "github.com/Exquve/BluetoothARGBController-APP/transport/bluez"

	"github.com/godbus/dbus/v5"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/device"
	"github.com/Exquve/BluetoothARGBController-APP/mocks"
)

const (
	adapterPath = dbus.ObjectPath(`/org/bluez/hci0`)
	devicePath  = dbus.ObjectPath(`/org/bluez/hci0/dev_BE_FF_20_00_12_34`)
	servicePath = dbus.ObjectPath(`/org/bluez/hci0/dev_BE_FF_20_00_12_34/service000c`)
	writePath   = dbus.ObjectPath(`/org/bluez/hci0/dev_BE_FF_20_00_12_34/service000c/char000d`)
	notifyPath  = dbus.ObjectPath(`/org/bluez/hci0/dev_BE_FF_20_00_12_34/service000c/char000f`)
)

func objects(resolved bool) Objects {
	return Objects{
		adapterPath: {
			`org.bluez.Adapter1`: {`Address`: dbus.MakeVariant(`00:1A:7D:DA:71:13`)},
		},
		devicePath: {
			`org.bluez.Device1`: {
				`Address`:          dbus.MakeVariant(`BE:FF:20:00:12:34`),
				`Name`:             dbus.MakeVariant(`STARLIGHT`),
				`Adapter`:          dbus.MakeVariant(adapterPath),
				`RSSI`:             dbus.MakeVariant(int16(-61)),
				`ServicesResolved`: dbus.MakeVariant(resolved),
			},
		},
		servicePath: {
			`org.bluez.GattService1`: {
				`UUID`:    dbus.MakeVariant(`0000fff0-0000-1000-8000-00805f9b34fb`),
				`Device`:  dbus.MakeVariant(devicePath),
				`Primary`: dbus.MakeVariant(true),
			},
		},
		notifyPath: {
			`org.bluez.GattCharacteristic1`: {
				`UUID`:    dbus.MakeVariant(`0000fff4-0000-1000-8000-00805f9b34fb`),
				`Service`: dbus.MakeVariant(servicePath),
				`Flags`:   dbus.MakeVariant([]string{`notify`}),
			},
		},
		writePath: {
			`org.bluez.GattCharacteristic1`: {
				`UUID`:    dbus.MakeVariant(`0000fff3-0000-1000-8000-00805f9b34fb`),
				`Service`: dbus.MakeVariant(servicePath),
				`Flags`:   dbus.MakeVariant([]string{`write-without-response`, `write`}),
			},
		},
	}
}

var _ = Describe("BlueZ transport", func() {
	var (
		ctx       = context.Background()
		bus       *mocks.Bus
		transport *Transport
	)

	BeforeEach(func() {
		bus = &mocks.Bus{}
		transport = NewWithBus(bus)
		transport.SetPollInterval(time.Millisecond)
	})

	It("should map BlueZ flags to capabilities", func() {
		c := Capabilities([]string{`read`, `write-without-response`, `notify`, `unheard-of`})
		Expect(c).To(Equal(common.CapRead | common.CapWriteNoResponse | common.CapNotify))
	})

	It("should refuse to work before connecting", func() {
		_, err := transport.DiscoverServices(ctx)
		Expect(err).To(MatchError(common.ErrNotConnected))
		err = transport.Write(ctx, common.Characteristic{ID: string(writePath)}, []byte{0x01}, false)
		Expect(err).To(MatchError(common.ErrNotConnected))
		Expect(transport.Disconnect()).To(MatchError(common.ErrNotConnected))
	})

	It("should list devices seen while scanning", func() {
		bus.On(`ManagedObjects`, mock.Anything).Return(objects(false), nil)
		bus.On(`Call`, mock.Anything, adapterPath, `org.bluez.Adapter1.StartDiscovery`).Return(nil)
		bus.On(`Call`, mock.Anything, adapterPath, `org.bluez.Adapter1.StopDiscovery`).Return(nil)

		scanCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		peripherals, err := transport.Scan(scanCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(peripherals).To(Equal([]common.Peripheral{{ID: `BE:FF:20:00:12:34`, Name: `STARLIGHT`, RSSI: -61}}))
		bus.AssertExpectations(GinkgoT())
	})

	It("should report an unknown device", func() {
		bus.On(`ManagedObjects`, mock.Anything).Return(objects(true), nil)
		Expect(transport.Connect(ctx, `00:00:00:00:00:00`)).To(MatchError(common.ErrNotFound))
	})

	Context("when connected", func() {
		BeforeEach(func() {
			bus.On(`ManagedObjects`, mock.Anything).Return(objects(false), nil).Once()
			bus.On(`ManagedObjects`, mock.Anything).Return(objects(true), nil)
			bus.On(`Call`, mock.Anything, devicePath, `org.bluez.Device1.Connect`).Return(nil)
			Expect(transport.Connect(ctx, `be:ff:20:00:12:34`)).To(Succeed())
		})

		It("should discover services and characteristics in handle order", func() {
			services, err := transport.DiscoverServices(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(services).To(HaveLen(1))
			Expect(services[0].ID).To(Equal(string(servicePath)))
			Expect(services[0].UUID).To(Equal(common.ShortUUID(0xFFF0)))

			chars, err := transport.DiscoverCharacteristics(ctx, services[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(chars).To(HaveLen(2))
			Expect(chars[0].UUID).To(Equal(common.ShortUUID(0xFFF3)))
			Expect(chars[0].Capabilities).To(Equal(common.CapWrite | common.CapWriteNoResponse))
			Expect(chars[1].Capabilities).To(Equal(common.CapNotify))
		})

		It("should write as a command or a request", func() {
			c := common.Characteristic{ID: string(writePath)}
			bus.On(`Call`, mock.Anything, writePath, `org.bluez.GattCharacteristic1.WriteValue`, []byte{0xBC, 0x01, 0x01, 0x00, 0x55},
				map[string]dbus.Variant{`type`: dbus.MakeVariant(`command`)}).Return(nil).Once()
			bus.On(`Call`, mock.Anything, writePath, `org.bluez.GattCharacteristic1.WriteValue`, []byte{0xBC, 0x01, 0x01, 0x01, 0x55},
				map[string]dbus.Variant{`type`: dbus.MakeVariant(`request`)}).Return(nil).Once()

			Expect(transport.Write(ctx, c, []byte{0xBC, 0x01, 0x01, 0x00, 0x55}, false)).To(Succeed())
			Expect(transport.Write(ctx, c, []byte{0xBC, 0x01, 0x01, 0x01, 0x55}, true)).To(Succeed())
			bus.AssertExpectations(GinkgoT())
		})

		It("should map capabilities and deliver notifications", func() {
			signals := make(chan *dbus.Signal, 1)
			bus.On(`Signals`, mock.Anything).Return((<-chan *dbus.Signal)(signals), nil).Once()
			bus.On(`Call`, mock.Anything, notifyPath, `org.bluez.GattCharacteristic1.StartNotify`).Return(nil)

			m, err := device.Discover(ctx, transport)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Control().UUID).To(Equal(device.StarlightWrite))
			Expect(m.NotifyErrors()).To(BeEmpty())

			signals <- &dbus.Signal{
				Path: notifyPath,
				Name: `org.freedesktop.DBus.Properties.PropertiesChanged`,
				Body: []interface{}{
					`org.bluez.GattCharacteristic1`,
					map[string]dbus.Variant{`Value`: dbus.MakeVariant([]byte{0x7E, 0x01})},
					[]string{},
				},
			}
			var n common.Notification
			Eventually(transport.Notifications()).Should(Receive(&n))
			Expect(n.Data).To(Equal([]byte{0x7E, 0x01}))
			Expect(n.Characteristic.ID).To(Equal(string(notifyPath)))
		})

		It("should disconnect the device", func() {
			bus.On(`Call`, mock.Anything, devicePath, `org.bluez.Device1.Disconnect`).Return(nil)
			Expect(transport.Disconnect()).To(Succeed())
			_, err := transport.DiscoverServices(ctx)
			Expect(err).To(MatchError(common.ErrNotConnected))
		})
	})
})
