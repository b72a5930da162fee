package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

type Settings struct {
	Config         Config
	VerboseLogging bool
	FullRefresh    bool
	Select         []string
}

// LoadSettings will take the flags and then parse, loadConfig is optional for testing purposes.
func LoadSettings(args []string, loadConfig bool) (*Settings, error) {
	var opts struct {
		ConfigFilePath string   `short:"c" long:"config" description:"path to the config file"`
		Verbose        bool     `short:"v" long:"verbose" description:"debug logging" optional:"true"`
		FullRefresh    bool     `long:"full-refresh" description:"drop and rebuild incremental models" optional:"true"`
		Select         []string `short:"s" long:"select" description:"only build the named models" optional:"true"`
	}

	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return nil, fmt.Errorf("failed to parse args: %w", err)
	}

	settings := &Settings{
		VerboseLogging: opts.Verbose,
		FullRefresh:    opts.FullRefresh,
		Select:         opts.Select,
	}

	if loadConfig {
		config, err := ReadFileToConfig(opts.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		if err = config.Validate(); err != nil {
			return nil, fmt.Errorf("failed to validate config: %w", err)
		}

		settings.Config = config
	}

	return settings, nil
}
