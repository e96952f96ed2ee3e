package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

var (
	cmdLight = &cobra.Command{
		Use:   `light`,
		Short: `send a command through the bound protocol`,
		Run:   usage,
	}

	cmdLightColor = &cobra.Command{
		Use:     `color <#rrggbb|r g b>`,
		Short:   `set every LED to one color`,
		Args:    cobra.RangeArgs(1, 3),
		PreRun:  setupBound,
		Run:     lightCommand(parseColor),
		PostRun: closeController,
	}

	cmdLightHSV = &cobra.Command{
		Use:     `hsv <hue 0-360> <saturation 0-997>`,
		Short:   `set every LED from the color wheel`,
		Args:    cobra.ExactArgs(2),
		PreRun:  setupBound,
		Run:     lightCommand(parseHSV),
		PostRun: closeController,
	}

	cmdLightPower = &cobra.Command{
		Use:     `power <on|off>`,
		Short:   `switch the strip on or off`,
		Args:    cobra.ExactArgs(1),
		PreRun:  setupBound,
		Run:     lightCommand(parsePower),
		PostRun: closeController,
	}

	cmdLightBrightness = &cobra.Command{
		Use:     `brightness <0-1000>`,
		Short:   `set the brightness`,
		Args:    cobra.ExactArgs(1),
		PreRun:  setupBound,
		Run:     lightCommand(parseBrightness),
		PostRun: closeController,
	}

	cmdLightMode = &cobra.Command{
		Use:     `mode <index>`,
		Short:   `select a built-in animation`,
		Args:    cobra.ExactArgs(1),
		PreRun:  setupBound,
		Run:     lightCommand(parseMode),
		PostRun: closeController,
	}

	cmdLightSpeed = &cobra.Command{
		Use:     `speed <0-255>`,
		Short:   `set the animation speed`,
		Args:    cobra.ExactArgs(1),
		PreRun:  setupBound,
		Run:     lightCommand(parseSpeed),
		PostRun: closeController,
	}

	cmdLightDirection = &cobra.Command{
		Use:     `direction <forward|reverse>`,
		Short:   `set the animation direction`,
		Args:    cobra.ExactArgs(1),
		PreRun:  setupBound,
		Run:     lightCommand(parseDirection),
		PostRun: closeController,
	}

	cmdLightTemperature = &cobra.Command{
		Use:     `temperature <0-360>`,
		Short:   `select a white temperature`,
		Args:    cobra.ExactArgs(1),
		PreRun:  setupBound,
		Run:     lightCommand(parseTemperature),
		PostRun: closeController,
	}
)

func init() {
	cmdLight.AddCommand(cmdLightColor)
	cmdLight.AddCommand(cmdLightHSV)
	cmdLight.AddCommand(cmdLightPower)
	cmdLight.AddCommand(cmdLightBrightness)
	cmdLight.AddCommand(cmdLightMode)
	cmdLight.AddCommand(cmdLightSpeed)
	cmdLight.AddCommand(cmdLightDirection)
	cmdLight.AddCommand(cmdLightTemperature)
}

type commandParser func(args []string) (common.Command, error)

func lightCommand(parse commandParser) func(*cobra.Command, []string) {
	return func(c *cobra.Command, args []string) {
		cmd, err := parse(args)
		if err != nil {
			c.Usage()
			fmt.Println()
			logger.WithField(`error`, err).Fatalln(`Invalid arguments`)
		}
		if err := controller.Send(context.Background(), cmd); err != nil {
			logger.WithFields(logrus.Fields{
				`command`: common.FormatCommand(cmd),
				`error`:   err,
			}).Fatalln(`Failed sending command`)
		}
		logger.WithField(`command`, common.FormatCommand(cmd)).Infoln(`Sent`)
	}
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseColor(args []string) (common.Command, error) {
	if len(args) == 1 {
		hex := strings.TrimPrefix(args[0], `#`)
		if len(hex) != 6 {
			return nil, fmt.Errorf(`invalid color %q`, args[0])
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return nil, err
		}
		return common.SetRGB{Color: common.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}}, nil
	}
	if len(args) != 3 {
		return nil, fmt.Errorf(`expected #rrggbb or three components`)
	}
	v, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	return common.SetRGB{Color: common.Color{
		R: uint8(common.ClampInt(v[0], 0, 255)),
		G: uint8(common.ClampInt(v[1], 0, 255)),
		B: uint8(common.ClampInt(v[2], 0, 255)),
	}}, nil
}

func parseHSV(args []string) (common.Command, error) {
	v, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	return common.SetHSV{Hue: v[0], Saturation: v[1]}, nil
}

func parsePower(args []string) (common.Command, error) {
	switch strings.ToLower(args[0]) {
	case `on`, `1`, `true`:
		return common.Power{On: true}, nil
	case `off`, `0`, `false`:
		return common.Power{On: false}, nil
	}
	return nil, fmt.Errorf(`invalid power state %q`, args[0])
}

func parseBrightness(args []string) (common.Command, error) {
	v, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	return common.SetBrightness{Level: v[0]}, nil
}

func parseMode(args []string) (common.Command, error) {
	v, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	return common.SetMode{Index: v[0]}, nil
}

func parseSpeed(args []string) (common.Command, error) {
	v, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	return common.SetSpeed{Speed: v[0]}, nil
}

func parseDirection(args []string) (common.Command, error) {
	switch strings.ToLower(args[0]) {
	case `forward`, `fwd`:
		return common.SetDirection{Reverse: false}, nil
	case `reverse`, `rev`:
		return common.SetDirection{Reverse: true}, nil
	}
	return nil, fmt.Errorf(`invalid direction %q`, args[0])
}

func parseTemperature(args []string) (common.Command, error) {
	v, err := parseInts(args)
	if err != nil {
		return nil, err
	}
	return common.SetTemperature{Theta: v[0]}, nil
}
