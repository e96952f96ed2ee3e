// Command ledctl probes and drives BLE ARGB LED strip controllers over BlueZ
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	argbled "github.com/Exquve/BluetoothARGBController-APP"
	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/transport/bluez"
)

var (
	controller *argbled.Controller
	settings   fileConfig

	flagTimeout   time.Duration
	flagLogLevel  string
	flagConfig    string
	flagDevice    string
	flagFormat    string
	flagWriteType string

	logger = logrus.New()
	app    = &cobra.Command{
		Use:   `ledctl`,
		Short: `probe and drive BLE ARGB LED strip controllers`,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			setLogger()
			return loadSettings(c)
		},
	}

	cmdGenerateBashComp = &cobra.Command{
		Use:   `bashcomp <filename>`,
		Short: "generate bash completion at <file>",
		Run:   generateBashComp,
	}
)

func init() {
	argbled.SetLogger(logger)

	app.PersistentFlags().DurationVarP(&flagTimeout, `timeout`, `t`, common.DefaultTimeout, `timeout for connecting and for each command`)
	app.PersistentFlags().StringVarP(&flagLogLevel, `log-level`, `L`, `info`, `log level, one of: [debug,info,warn,error]`)
	app.PersistentFlags().StringVarP(&flagConfig, `config`, `c`, ``, `YAML configuration file`)
	app.PersistentFlags().StringVarP(&flagDevice, `device`, `d`, ``, `device MAC address or BlueZ object path`)
	app.PersistentFlags().StringVarP(&flagFormat, `format`, `f`, ``, `protocol format to bind (default starlight)`)
	app.PersistentFlags().StringVarP(&flagWriteType, `write-type`, `w`, ``, `write type, one of: [auto,with-response,without-response]`)

	app.AddCommand(cmdScan)
	app.AddCommand(cmdProbe)
	app.AddCommand(cmdLight)
	app.AddCommand(cmdSync)
	app.AddCommand(cmdMonitor)
	app.AddCommand(cmdGenerateBashComp)
}

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}

// newController builds a controller on the BlueZ system bus without
// connecting it
func newController(bind bool) *argbled.Controller {
	transport, err := bluez.New()
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed connecting to BlueZ`)
	}
	writeType, err := parseWriteType(settings.WriteType)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Invalid write type`)
	}

	opts := []argbled.Option{
		argbled.WithConfig(settings.Core),
		argbled.WithWriteType(writeType),
	}
	if bind {
		opts = append(opts, argbled.WithFormat(settings.Format))
	}
	c, err := argbled.NewController(transport, opts...)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed initializing controller`)
	}
	c.SetTimeout(flagTimeout)
	return c
}

// connect connects to the configured device, binding the configured format
// when bind is set
func connect(bind bool) {
	if settings.Device == `` {
		logger.Fatalln(`No device given, use --device or the config file`)
	}
	controller = newController(bind)

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	if err := controller.Connect(ctx, settings.Device); err != nil {
		logger.WithFields(logrus.Fields{
			`device`: settings.Device,
			`error`:  err,
		}).Fatalln(`Failed connecting`)
	}
}

func setupBound(c *cobra.Command, args []string) {
	connect(true)
}

func setupUnbound(c *cobra.Command, args []string) {
	connect(false)
}

func closeController(c *cobra.Command, args []string) {
	if controller == nil {
		return
	}
	if err := controller.Disconnect(); err != nil {
		logger.WithField(`error`, err).Warnln(`Failed disconnecting`)
	}
	if err := controller.Close(); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed closing controller`)
	}
}

// interruptible returns a context cancelled on SIGINT
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func generateBashComp(c *cobra.Command, args []string) {
	if len(args) != 1 {
		c.Usage()
		fmt.Println()
		logger.Fatalln(`Missing filename`)
	}

	buf := new(bytes.Buffer)
	f, err := os.Create(args[0])
	if err != nil {
		logger.WithFields(logrus.Fields{
			`filename`: args[0],
			`error`:    err,
		}).Fatalln(`Could not open file`)
	}
	defer f.Close()
	app.GenBashCompletion(buf)
	buf.WriteTo(f)
}

func usage(c *cobra.Command, args []string) {
	c.Usage()
}

func setLogger() {
	switch flagLogLevel {
	case `debug`:
		logger.Level = logrus.DebugLevel
	case `info`:
		logger.Level = logrus.InfoLevel
	case `warn`:
		logger.Level = logrus.WarnLevel
	case `error`:
		logger.Level = logrus.ErrorLevel
	default:
		logger.Level = logrus.InfoLevel
	}
}
