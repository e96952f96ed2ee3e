package argbled

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Exquve/BluetoothARGBController-APP/audio"
	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/device"
	"github.com/Exquve/BluetoothARGBController-APP/dispatch"
	"github.com/Exquve/BluetoothARGBController-APP/musicsync"
	"github.com/Exquve/BluetoothARGBController-APP/probe"
	"github.com/Exquve/BluetoothARGBController-APP/protocol"
)

// Controller owns the connection timeline of one LED controller. Controller
// can not be instantiated manually or it will not function - always use
// NewController() to obtain a Controller instance.
type Controller struct {
	transport    common.Transport
	dispatcher   *dispatch.Dispatcher
	catalog      *protocol.Catalog
	config       common.Config
	known        []uuid.UUID
	writeType    device.WriteType
	format       string
	capabilities *device.CapabilityMap
	profile      *device.Profile
	bridge       *musicsync.Bridge
	timeout      time.Duration
	quitChan     chan struct{}
	closeOnce    sync.Once
	common.Publisher
	sync.RWMutex
}

// NewSubscription returns a new *common.Subscription for receiving events from
// this controller: profile changes, write failures, notifications, probe steps
// and music sync features.
func (c *Controller) NewSubscription() (*common.Subscription, error) {
	sub := common.NewSubscription(c)
	c.Subscribe(sub)
	return sub, nil
}

// CloseSubscription is a callback for handling the closing of subscriptions.
func (c *Controller) CloseSubscription(sub *common.Subscription) error {
	return c.Unsubscribe(sub)
}

// Config returns the configuration in use
func (c *Controller) Config() common.Config {
	return c.config
}

// Catalog returns the protocol catalog formats are bound from
func (c *Controller) Catalog() *protocol.Catalog {
	return c.catalog
}

// Bridge returns the music sync bridge, for changing strategy or brightness
// while syncing
func (c *Controller) Bridge() *musicsync.Bridge {
	return c.bridge
}

// SetTimeout sets the time that a single command waits to be written before
// returning an error
func (c *Controller) SetTimeout(timeout time.Duration) {
	c.Lock()
	c.timeout = timeout
	c.Unlock()
}

// Timeout returns the currently configured command timeout
func (c *Controller) Timeout() time.Duration {
	c.RLock()
	defer c.RUnlock()
	return c.timeout
}

// Scan lists peripherals seen by the transport before ctx is done
func (c *Controller) Scan(ctx context.Context) ([]common.Peripheral, error) {
	return c.transport.Scan(ctx)
}

// Connect connects to the peripheral with id and maps its characteristics.
// When a format was configured with WithFormat, it is bound as well.
func (c *Controller) Connect(ctx context.Context, id string) error {
	if err := c.transport.Connect(ctx, id); err != nil {
		return err
	}
	if _, err := c.Discover(ctx); err != nil {
		return err
	}
	if c.format == `` {
		return nil
	}
	_, err := c.Bind(c.format)
	return err
}

// Discover maps the characteristics of the connected device, enabling
// notifications where offered
func (c *Controller) Discover(ctx context.Context) (*device.CapabilityMap, error) {
	m, err := device.Discover(ctx, c.transport, c.known...)
	if err != nil {
		return nil, err
	}
	c.Lock()
	c.capabilities = m
	c.Unlock()
	return m, nil
}

// Capabilities returns the current capability map, or common.ErrNotConnected
// before discovery
func (c *Controller) Capabilities() (*device.CapabilityMap, error) {
	c.RLock()
	defer c.RUnlock()
	if c.capabilities == nil {
		return nil, common.ErrNotConnected
	}
	return c.capabilities, nil
}

// Bind binds the named catalog format to the control characteristic. Only one
// profile may be bound at a time; Release the current one first.
func (c *Controller) Bind(format string) (*device.Profile, error) {
	codec, err := c.catalog.Codec(format)
	if err != nil {
		return nil, err
	}

	c.Lock()
	if c.capabilities == nil {
		c.Unlock()
		return nil, common.ErrNotConnected
	}
	if c.profile != nil {
		current := c.profile.Format()
		c.Unlock()
		return nil, fmt.Errorf(`%w: %s is already bound`, common.ErrDuplicate, current)
	}
	p, err := device.Bind(c.capabilities, codec, c.writeType, c.config.MinWriteSpacing())
	if err != nil {
		c.Unlock()
		return nil, err
	}
	c.profile = p
	c.Unlock()

	c.dispatcher.SetSpacing(p.Control(), p.Spacing())
	common.Log.Infof("Bound %s", p)
	c.publish(common.EventProfileBound{
		Format:         p.Format(),
		Characteristic: p.Control(),
		Acknowledged:   p.Acknowledged(),
	})
	return p, nil
}

// Release drops the bound profile. Commands fail with
// common.ErrUnboundProtocol until another format is bound.
func (c *Controller) Release() error {
	c.Lock()
	p := c.profile
	c.profile = nil
	c.Unlock()
	if p == nil {
		return common.ErrUnboundProtocol
	}
	common.Log.Infof("Released %s", p.Format())
	c.publish(common.EventProfileReleased{Format: p.Format()})
	return nil
}

// Profile returns the bound profile, or common.ErrUnboundProtocol
func (c *Controller) Profile() (*device.Profile, error) {
	c.RLock()
	defer c.RUnlock()
	if c.profile == nil {
		return nil, common.ErrUnboundProtocol
	}
	return c.profile, nil
}

// Send encodes cmd with the bound profile and writes it to the control
// characteristic. It fails closed with common.ErrUnboundProtocol when no
// profile is bound.
func (c *Controller) Send(ctx context.Context, cmd common.Command) error {
	p, err := c.Profile()
	if err != nil {
		return err
	}
	payload, err := p.Encode(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout())
	defer cancel()
	return c.dispatcher.Send(ctx, dispatch.Write{
		Characteristic: p.Control(),
		Payload:        payload,
		Type:           p.WriteType(),
		Label:          common.FormatCommand(cmd),
	})
}

// SetPower switches the strip on or off
func (c *Controller) SetPower(ctx context.Context, on bool) error {
	return c.Send(ctx, common.Power{On: on})
}

// SetColor sets every LED to color
func (c *Controller) SetColor(ctx context.Context, color common.Color) error {
	return c.Send(ctx, common.SetRGB{Color: color})
}

// SetHSV sets every LED from the color wheel, hue in [0,360] and saturation
// in [0,997]
func (c *Controller) SetHSV(ctx context.Context, hue, saturation int) error {
	return c.Send(ctx, common.SetHSV{Hue: hue, Saturation: saturation})
}

// SetBrightness sets the brightness in [0,1000]
func (c *Controller) SetBrightness(ctx context.Context, level int) error {
	return c.Send(ctx, common.SetBrightness{Level: level})
}

// SetMode selects a built-in animation by its raw index
func (c *Controller) SetMode(ctx context.Context, index int) error {
	return c.Send(ctx, common.SetMode{Index: index})
}

// SetSpeed sets the animation speed in [0,255]
func (c *Controller) SetSpeed(ctx context.Context, speed int) error {
	return c.Send(ctx, common.SetSpeed{Speed: speed})
}

// SetDirection sets the animation direction
func (c *Controller) SetDirection(ctx context.Context, reverse bool) error {
	return c.Send(ctx, common.SetDirection{Reverse: reverse})
}

// SetTemperature selects a white temperature in [0,360]
func (c *Controller) SetTemperature(ctx context.Context, theta int) error {
	return c.Send(ctx, common.SetTemperature{Theta: theta})
}

// Probe writes plan to each target, or to every writable characteristic when
// none are given. No profile is needed. Progress is published as
// common.EventProbeStep.
func (c *Controller) Probe(ctx context.Context, plan probe.Plan, targets ...common.Characteristic) (probe.Report, error) {
	if len(targets) == 0 {
		m, err := c.Capabilities()
		if err != nil {
			return probe.Report{}, err
		}
		targets = m.Writable()
	}

	runner := probe.NewRunner(c.dispatcher)
	sub, err := runner.NewSubscription()
	if err != nil {
		return probe.Report{}, err
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		c.forwardUntil(done, sub)
		close(stopped)
	}()
	defer func() {
		close(done)
		<-stopped
	}()

	return runner.Run(ctx, plan, targets...)
}

// MusicSync drives the strip from src until ctx is done. When src stops
// producing features the simulator takes over. Beat and feature events are
// published to subscribers.
func (c *Controller) MusicSync(ctx context.Context, src audio.FeatureSource) error {
	if _, err := c.Profile(); err != nil {
		return err
	}
	if _, ok := src.(*audio.FallbackSource); !ok {
		src = audio.Fallback(src, audio.NewSimulator())
	}

	pipeline := audio.NewPipeline(src, c.config)
	sub, err := pipeline.NewSubscription()
	if err != nil {
		return err
	}
	syncCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.forwardUntil(syncCtx.Done(), sub)

	c.bridge.Enable()
	defer c.bridge.Disable()
	common.Log.Infof("Music sync started (%s strategy)", c.bridge.Strategy())

	errChan := make(chan error, 1)
	go func() {
		errChan <- pipeline.Run(syncCtx, 0)
	}()
	bridgeErr := c.bridge.Run(syncCtx, pipeline.Features(), c)
	cancel()
	if err := <-errChan; err != nil {
		return err
	}
	common.Log.Infof("Music sync stopped")
	if ctx.Err() != nil {
		return nil
	}
	return bridgeErr
}

// Disconnect releases the profile, forgets the capability map and drops the
// transport connection
func (c *Controller) Disconnect() error {
	if err := c.Release(); err != nil && !errors.Is(err, common.ErrUnboundProtocol) {
		return err
	}
	c.Lock()
	c.capabilities = nil
	c.Unlock()
	return c.transport.Disconnect()
}

// Close signals the termination of this controller, and cleans up resources.
// It does not disconnect the transport.
func (c *Controller) Close() error {
	closed := false
	c.closeOnce.Do(func() {
		close(c.quitChan)
		closed = true
	})
	if !closed {
		return common.ErrClosed
	}
	return c.dispatcher.Close()
}

func (c *Controller) publish(event interface{}) {
	if err := c.Publish(event); err != nil {
		common.Log.Debugf("Failed publishing %T: %v", event, err)
	}
}

// forward republishes events from sub until the controller closes
func (c *Controller) forward(sub *common.Subscription) {
	c.forwardUntil(nil, sub)
}

// forwardUntil republishes events from sub until done is closed or the
// controller closes. Events already buffered when done closes are still
// delivered.
func (c *Controller) forwardUntil(done <-chan struct{}, sub *common.Subscription) {
	defer sub.Close()
	for {
		select {
		case <-c.quitChan:
			return
		case <-done:
			for {
				select {
				case event := <-sub.Events():
					c.publish(event)
				default:
					return
				}
			}
		case event := <-sub.Events():
			c.publish(event)
		}
	}
}

func (c *Controller) notifications() {
	incoming := c.transport.Notifications()
	for {
		select {
		case <-c.quitChan:
			common.Log.Debugf("Quitting notification loop")
			return
		case n, ok := <-incoming:
			if !ok {
				return
			}
			hint := device.NotificationHint(n.Data)
			common.Log.Debugf("Notification from %s: %s (%s)", n.Characteristic.UUID, common.HexString(n.Data), hint)
			c.publish(common.EventNotification{Notification: n, Hint: hint})
		}
	}
}
