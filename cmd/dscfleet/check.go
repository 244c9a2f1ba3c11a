package main

import (
	"context"
	"flag"

	"github.com/vpetersen/dscfleet/internal/azure"
	"github.com/vpetersen/dscfleet/internal/provision"
)

// cmdCheck validates the configuration, authenticates, and resolves the
// automation account without creating anything.
func cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
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

	if err := provision.New(cfg, clients, logger).LocateAccount(context.Background()); err != nil {
		logger.Error().Err(err).Msg("check failed")
		return 2
	}
	logger.Info().Msg("check passed")
	return 0
}
