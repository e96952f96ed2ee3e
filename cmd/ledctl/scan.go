package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagScanDuration time.Duration

	cmdScan = &cobra.Command{
		Use:   `scan`,
		Short: `list nearby BLE peripherals`,
		Run:   scan,
	}

	cmdCharacteristics = &cobra.Command{
		Use:     `characteristics`,
		Short:   `list the characteristics of the device and their roles`,
		PreRun:  setupUnbound,
		Run:     characteristics,
		PostRun: closeController,
	}
)

func init() {
	cmdScan.Flags().DurationVarP(&flagScanDuration, `duration`, `D`, 5*time.Second, `how long to scan`)
	app.AddCommand(cmdCharacteristics)
}

func scan(c *cobra.Command, args []string) {
	ctl := newController(false)
	defer ctl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), flagScanDuration)
	defer cancel()
	logger.WithField(`duration`, flagScanDuration).Infoln(`Scanning`)
	peripherals, err := ctl.Scan(ctx)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Scan failed`)
	}

	for _, p := range peripherals {
		fmt.Printf("%s\t%4d dBm\t%s\n", p.ID, p.RSSI, p.Name)
	}
}

func characteristics(c *cobra.Command, args []string) {
	m, err := controller.Capabilities()
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`No capability map`)
	}
	for _, char := range m.Characteristics() {
		marker := ` `
		if char.ID == m.Control().ID {
			marker = `*`
		}
		fmt.Printf("%s %s\t%s\t%v\n", marker, char.ID, char, m.Roles(char.ID))
	}
	for id, err := range m.NotifyErrors() {
		logger.WithFields(logrus.Fields{
			`characteristic`: id,
			`error`:          err,
		}).Warnln(`Notifications unavailable`)
	}
}
