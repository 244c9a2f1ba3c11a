package main

import (
	"context"
	"flag"

	"github.com/vpetersen/dscfleet/internal/azure"
	"github.com/vpetersen/dscfleet/internal/provision"
)

// cmdProvision runs the full pipeline. It returns the process exit code:
// 0 when every compilation job completed, 2 on any fatal error.
func cmdProvision(args []string) int {
	fs := flag.NewFlagSet("provision", flag.ExitOnError)
	o := registerFlags(fs)
	fs.Parse(args)

	logger := newLogger(o.logLevel)
	cfg, err := o.assemble()
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return 2
	}

	clients, err := azure.NewClients(azure.Options{
		TenantID:       cfg.TenantID,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		SubscriptionID: cfg.SubscriptionID,
		EndpointURL:    cfg.EndpointURL,
	})
	if err != nil {
		logger.Error().Err(err).Msg("authentication failed")
		return 2
	}

	if err := provision.New(cfg, clients, logger).Run(context.Background()); err != nil {
		logger.Error().Err(err).Msg("provisioning failed")
		return 2
	}
	logger.Info().Msg("provisioning succeeded")
	return 0
}
