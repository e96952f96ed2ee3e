// Package argbled drives addressable RGB LED strip controllers over Bluetooth
// Low Energy.
//
// Most of these controllers ship without a public protocol. A Controller maps
// the characteristics of a connected device, binds one of the known vendor
// frame formats from the protocol catalog and sends every command through a
// single serialized write path. When no format is known yet, Probe walks byte
// sequences across the device for a human to watch. MusicSync drives the strip
// from live or simulated audio analysis.
//
// Also included in cmd/ledctl is a small CLI utility built on the BlueZ
// transport.
package argbled

import (
	"github.com/google/uuid"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/device"
	"github.com/Exquve/BluetoothARGBController-APP/dispatch"
	"github.com/Exquve/BluetoothARGBController-APP/musicsync"
	"github.com/Exquve/BluetoothARGBController-APP/protocol"
)

const (
	// VERSION of this library
	VERSION = `0.1.0`
)

// Option configures a Controller
type Option func(*Controller)

// WithConfig replaces the default configuration
func WithConfig(cfg common.Config) Option {
	return func(c *Controller) {
		c.config = cfg.WithDefaults()
	}
}

// WithCatalog selects the catalog formats are bound from
func WithCatalog(cat *protocol.Catalog) Option {
	return func(c *Controller) {
		c.catalog = cat
	}
}

// WithKnownIdentities replaces the characteristic identities that win control
// selection regardless of discovery order
func WithKnownIdentities(ids ...uuid.UUID) Option {
	return func(c *Controller) {
		c.known = ids
	}
}

// WithWriteType forces acknowledged or unacknowledged writes
func WithWriteType(w device.WriteType) Option {
	return func(c *Controller) {
		c.writeType = w
	}
}

// WithFormat binds the named catalog format as soon as Connect has mapped the
// device
func WithFormat(name string) Option {
	return func(c *Controller) {
		c.format = name
	}
}

// WithStrategy selects the music sync color strategy
func WithStrategy(s musicsync.Strategy) Option {
	return func(c *Controller) {
		c.bridge.SetStrategy(s)
	}
}

// NewController returns a pointer to a new Controller and any error that
// occurred initializing it, using the transport t. It starts listening for
// notifications and write failures straight away.
func NewController(t common.Transport, opts ...Option) (*Controller, error) {
	c := &Controller{
		transport: t,
		config:    common.DefaultConfig(),
		catalog:   protocol.DefaultCatalog(),
		known:     device.KnownIdentities,
		timeout:   common.DefaultTimeout,
		bridge:    musicsync.New(musicsync.StrategyBands, 1),
		quitChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	c.dispatcher = dispatch.New(t, dispatch.WithConfig(c.config))
	sub, err := c.dispatcher.NewSubscription()
	if err != nil {
		c.dispatcher.Close()
		return nil, err
	}
	go c.forward(sub)
	go c.notifications()
	return c, nil
}

// SetLogger allows assigning a custom levelled logger that conforms to the
// common.Logger interface. To capture logs generated during controller
// creation, this should be called before creating a Controller. Defaults to
// common.StubLogger, which does no logging at all.
func SetLogger(logger common.Logger) {
	common.SetLogger(logger)
}
