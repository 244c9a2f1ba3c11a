package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/vpetersen/dscfleet/internal/config"
)

// options holds the flag values for a subcommand. Precedence when assembling
// the final config: flags > DSCFLEET_* environment > TOML file.
type options struct {
	configPath string
	logLevel   string
	flags      config.Config
}

func registerFlags(fs *flag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "path to TOML config file")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&o.flags.TenantID, "tenant-id", "", "Entra ID tenant id")
	fs.StringVar(&o.flags.SubscriptionID, "subscription-id", "", "subscription id")
	fs.StringVar(&o.flags.ClientID, "client-id", "", "service principal application id")
	fs.StringVar(&o.flags.ClientSecret, "client-secret", "", "service principal secret (prefer DSCFLEET_CLIENT_SECRET)")
	fs.StringVar(&o.flags.ResourceGroup, "resource-group", "", "resource group name")
	fs.StringVar(&o.flags.AccountName, "account", "", "automation account name")
	fs.StringVar(&o.flags.ConfigurationName, "configuration-name", "", "DSC configuration name")
	fs.StringVar(&o.flags.ConfigurationPath, "configuration-path", "", "path to DSC configuration source")
	fs.StringVar(&o.flags.ModuleName, "module-name", "", "automation module to import (optional)")
	fs.StringVar(&o.flags.ModuleURI, "module-uri", "", "content link for the automation module")
	fs.StringVar(&o.flags.VMBaseName, "vm-base-name", "", "base virtual machine name")
	fs.IntVar(&o.flags.VMCount, "vm-count", 0, "number of virtual machines")
	fs.IntVar(&o.flags.PollSeconds, "poll-seconds", 0, "seconds between status polls (default 10)")
	fs.StringVar(&o.flags.EndpointURL, "endpoint-url", "", "ARM endpoint override (testing)")
	return o
}

// assemble merges the config sources and validates the result.
func (o *options) assemble() (config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		fileCfg, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}
	cfg = cfg.Merge(config.FromEnv()).Merge(o.flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Str("component", "dscfleet").
		Logger()
}
