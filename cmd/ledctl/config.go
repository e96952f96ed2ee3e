package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Exquve/BluetoothARGBController-APP/common"
	"github.com/Exquve/BluetoothARGBController-APP/device"
)

const defaultFormat = `starlight`

// fileConfig is the layout of the --config file. Flags given on the command
// line win over the file.
type fileConfig struct {
	Device     string        `yaml:"device"`
	Format     string        `yaml:"format"`
	WriteType  string        `yaml:"writeType"`
	Strategy   string        `yaml:"strategy"`
	Brightness float64       `yaml:"brightness"`
	Listen     string        `yaml:"listen"`
	Core       common.Config `yaml:"core"`
}

func readConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf(`parsing %s: %w`, path, err)
	}
	return cfg, nil
}

func loadSettings(c *cobra.Command) error {
	if flagConfig != `` {
		cfg, err := readConfig(flagConfig)
		if err != nil {
			return err
		}
		settings = cfg
		logger.WithField(`file`, flagConfig).Debugln(`Loaded configuration`)
	}

	flags := c.Flags()
	if flags.Changed(`device`) || settings.Device == `` {
		settings.Device = flagDevice
	}
	if flags.Changed(`format`) || settings.Format == `` {
		settings.Format = flagFormat
	}
	if settings.Format == `` {
		settings.Format = defaultFormat
	}
	if flags.Changed(`write-type`) || settings.WriteType == `` {
		settings.WriteType = flagWriteType
	}
	if settings.Brightness == 0 {
		settings.Brightness = 1
	}
	settings.Core = settings.Core.WithDefaults()
	return settings.Core.Validate()
}

func parseWriteType(s string) (device.WriteType, error) {
	switch s {
	case ``, `auto`:
		return device.WriteAuto, nil
	case `with-response`, `request`:
		return device.WriteWithResponse, nil
	case `without-response`, `command`:
		return device.WriteWithoutResponse, nil
	}
	return device.WriteAuto, fmt.Errorf(`unknown write type %q`, s)
}
