package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/probe"
)

var (
	flagProbeTargets []string
	flagProbeSkip    []int
	flagProbePower   bool

	cmdProbe = &cobra.Command{
		Use:   `probe <systematic|catalog|minimal|universal>`,
		Short: `write byte sequences to the device and watch the strip`,
		Long: `Probe writes a plan of payloads to every writable characteristic, or to
the characteristics given with --target. Nothing is verified: watch the strip
and note the step labels that changed it. Interrupt to stop early.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{`systematic`, `catalog`, `minimal`, `universal`},
		PreRun:    setupUnbound,
		Run:       runProbe,
		PostRun:   closeController,
	}
)

func init() {
	cmdProbe.Flags().StringSliceVarP(&flagProbeTargets, `target`, `T`, nil, `characteristic UUIDs to probe (default all writable)`)
	cmdProbe.Flags().IntSliceVar(&flagProbeSkip, `skip-phase`, nil, `systematic phases to skip, 1-4`)
	cmdProbe.Flags().BoolVar(&flagProbePower, `power`, false, `catalog plan sends power on instead of red`)
}

func buildPlan(name string) (probe.Plan, error) {
	delay := settings.Core.ProbeInterWriteDelay()
	switch name {
	case `systematic`:
		opts := probe.Options{}
		for _, phase := range flagProbeSkip {
			switch phase {
			case 1:
				opts.SkipPhase1 = true
			case 2:
				opts.SkipPhase2 = true
			case 3:
				opts.SkipPhase3 = true
			case 4:
				opts.SkipPhase4 = true
			default:
				return nil, fmt.Errorf(`no phase %d`, phase)
			}
		}
		return probe.Systematic(opts), nil
	case `catalog`:
		var cmd common.Command = common.SetRGB{Color: common.Color{R: 0xFF}}
		if flagProbePower {
			cmd = common.Power{On: true}
		}
		return probe.CatalogPlan(controller.Catalog(), cmd, delay)
	case `minimal`:
		return probe.MinimalPlan(), nil
	case `universal`:
		return probe.UniversalPlan(controller.Catalog(), delay)
	}
	return nil, fmt.Errorf(`unknown plan %q`, name)
}

func probeTargets() ([]common.Characteristic, error) {
	if len(flagProbeTargets) == 0 {
		return nil, nil
	}
	m, err := controller.Capabilities()
	if err != nil {
		return nil, err
	}
	targets := make([]common.Characteristic, 0, len(flagProbeTargets))
	for _, t := range flagProbeTargets {
		id, err := common.ParseUUID(strings.TrimSpace(t))
		if err != nil {
			return nil, err
		}
		c, err := m.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf(`%s: %w`, t, err)
		}
		targets = append(targets, c)
	}
	return targets, nil
}

func runProbe(c *cobra.Command, args []string) {
	plan, err := buildPlan(args[0])
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed building plan`)
	}
	targets, err := probeTargets()
	if err != nil {
		logger.WithField(`error`, err).Fatalln(`Invalid probe target`)
	}

	logger.WithFields(logrus.Fields{
		`plan`:     args[0],
		`steps`:    len(plan),
		`duration`: plan.Duration(),
	}).Infoln(`Starting probe, interrupt to stop`)

	ctx, cancel := interruptible()
	defer cancel()
	report, err := controller.Probe(ctx, plan, targets...)
	if err != nil && !errors.Is(err, common.ErrProbeCancelled) {
		logger.WithField(`error`, err).Fatalln(`Probe failed`)
	}

	for _, t := range report.Targets {
		fmt.Printf("%s\tsent %d\tfailed %d\tskipped %d\n", t.Characteristic.UUID, t.Result.Sent, t.Result.Failed, t.Result.Skipped)
	}
	for _, f := range report.Failures() {
		fmt.Printf("  step %d %s: %v\n", f.Index+1, f.Step, f.Err)
	}
	if report.Cancelled {
		fmt.Println(`cancelled`)
	}
}
