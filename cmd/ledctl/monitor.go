package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Exquve/BluetoothARGBController-APP/monitor"
)

const shutdownTimeout = 2 * time.Second

var (
	flagMonitorListen string

	cmdMonitor = &cobra.Command{
		Use:   `monitor`,
		Short: `serve device notifications and events over websocket`,
		Long: `Monitor connects to the device, binds the configured format and relays
notifications, write failures and profile changes to websocket clients
connected to /ws. Interrupt to stop.`,
		PreRun:  setupBound,
		Run:     runMonitor,
		PostRun: closeController,
	}
)

func init() {
	cmdMonitor.Flags().StringVarP(&flagMonitorListen, `listen`, `l`, `:8080`, `address to serve websocket clients on`)
}

// serveMonitor relays controller events to websocket clients until ctx is
// done
func serveMonitor(ctx context.Context, addr string) {
	sub, err := controller.NewSubscription()
	if err != nil {
		logger.WithField(`error`, err).Errorln(`Failed subscribing to controller`)
		return
	}
	defer sub.Close()

	hub := monitor.NewHub()
	defer hub.Close()
	mux := http.NewServeMux()
	mux.Handle(`/ws`, hub)
	server := &http.Server{Addr: addr, Handler: mux}

	go hub.Watch(ctx, sub)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.WithField(`addr`, addr).Infoln(`Serving websocket events on /ws`)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithFields(logrus.Fields{
			`addr`:  addr,
			`error`: err,
		}).Errorln(`Websocket server failed`)
	}
}

func runMonitor(c *cobra.Command, args []string) {
	ctx, cancel := interruptible()
	defer cancel()

	listen := settings.Listen
	if c.Flags().Changed(`listen`) || listen == `` {
		listen = flagMonitorListen
	}
	serveMonitor(ctx, listen)
}
