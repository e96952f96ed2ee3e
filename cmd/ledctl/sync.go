package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Exquve/BluetoothARGBController-APP/audio"
	"github.com/Exquve/BluetoothARGBController-APP/musicsync"
)

var (
	flagSyncStrategy   string
	flagSyncBrightness float64
	flagSyncListen     string

	cmdSync = &cobra.Command{
		Use:   `sync [audio file]`,
		Short: `drive the strip from music`,
		Long: `Sync analyses a WAV or MP3 file and drives the strip from its bass, mid
and treble energy and beats. Without a file, or when the file runs out, the
analysis is simulated. Interrupt to stop.`,
		Args:    cobra.MaximumNArgs(1),
		PreRun:  setupBound,
		Run:     runSync,
		PostRun: closeController,
	}
)

func init() {
	cmdSync.Flags().StringVarP(&flagSyncStrategy, `strategy`, `s`, ``, `color strategy, one of: [bands,frequency] (default bands)`)
	cmdSync.Flags().Float64VarP(&flagSyncBrightness, `brightness`, `b`, 0, `brightness scale in [0,1] (default 1)`)
	cmdSync.Flags().StringVarP(&flagSyncListen, `listen`, `l`, ``, `also serve sync events over websocket on this address`)
}

func featureSource(args []string) audio.FeatureSource {
	sim := audio.NewSimulator()
	if len(args) == 0 {
		logger.Infoln(`No audio file given, simulating`)
		return audio.Fallback(nil, sim)
	}

	src, format, err := audio.OpenFile(args[0], settings.Core.SampleRate, settings.Core.FFTWindowSize)
	if err != nil {
		logger.WithFields(logrus.Fields{
			`file`:  args[0],
			`error`: err,
		}).Fatalln(`Failed opening audio file`)
	}
	logger.WithFields(logrus.Fields{
		`file`:       args[0],
		`sampleRate`: format.SampleRate,
		`channels`:   format.NumChannels,
	}).Infoln(`Analysing audio`)

	analyzer, err := audio.NewAnalyzer(src, settings.Core)
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed initializing analyzer`)
	}
	return audio.Fallback(analyzer, sim)
}

func runSync(c *cobra.Command, args []string) {
	strategy := settings.Strategy
	if c.Flags().Changed(`strategy`) || strategy == `` {
		strategy = flagSyncStrategy
	}
	if strategy != `` {
		s, err := musicsync.ParseStrategy(strategy)
		if err != nil {
			logger.WithField(`error`, err).Fatalln(`Invalid strategy`)
		}
		controller.Bridge().SetStrategy(s)
	}
	brightness := settings.Brightness
	if c.Flags().Changed(`brightness`) {
		brightness = flagSyncBrightness
	}
	controller.Bridge().SetUserBrightness(brightness)

	src := featureSource(args)
	ctx, cancel := interruptible()
	defer cancel()

	listen := settings.Listen
	if c.Flags().Changed(`listen`) {
		listen = flagSyncListen
	}
	if listen != `` {
		go serveMonitor(ctx, listen)
	}

	if err := controller.MusicSync(ctx, src); err != nil {
		logger.WithField(`error`, err).Fatalln(`Music sync failed`)
	}
}
