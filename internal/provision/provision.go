// Package provision runs the DSC provisioning pipeline against an Azure
// Automation account: locate account, import module, publish configuration,
// then compile one node configuration per virtual machine. Steps run strictly
// in order; the first error aborts the rest.
package provision

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/automation/armautomation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vpetersen/dscfleet/internal/azure"
	"github.com/vpetersen/dscfleet/internal/config"
	"github.com/vpetersen/dscfleet/internal/poll"
)

// NotFoundError reports that the target automation account does not exist.
// Retrying cannot help, so callers treat it as fatal.
type NotFoundError struct {
	ResourceGroup string
	Account       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("automation account %q not found in resource group %q", e.Account, e.ResourceGroup)
}

// Provisioner executes the pipeline. Construct with New and call Run.
type Provisioner struct {
	cfg     config.Config
	clients *azure.Clients
	poller  *poll.Poller
	logger  zerolog.Logger

	// account is set by LocateAccount; its location is reused for every
	// resource created afterwards.
	account *armautomation.Account

	newJobName func() string
}

// New builds a Provisioner over an explicit client bundle.
func New(cfg config.Config, clients *azure.Clients, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		cfg:        cfg,
		clients:    clients,
		poller:     poll.New(cfg.Interval(), logger),
		logger:     logger,
		newJobName: func() string { return uuid.NewString() },
	}
}

// Run executes the full pipeline.
func (p *Provisioner) Run(ctx context.Context) error {
	if err := p.LocateAccount(ctx); err != nil {
		return err
	}
	if err := p.ImportModule(ctx); err != nil {
		return err
	}
	if err := p.ImportConfiguration(ctx); err != nil {
		return err
	}
	return p.CompileFleet(ctx)
}

// LocateAccount resolves the automation account and remembers it. A missing
// account maps to *NotFoundError.
func (p *Provisioner) LocateAccount(ctx context.Context) error {
	p.logger.Info().Str("resource_group", p.cfg.ResourceGroup).Str("account", p.cfg.AccountName).Msg("locating automation account")
	resp, err := p.clients.Accounts.Get(ctx, p.cfg.ResourceGroup, p.cfg.AccountName, nil)
	if err != nil {
		if azure.IsNotFound(err) {
			return &NotFoundError{ResourceGroup: p.cfg.ResourceGroup, Account: p.cfg.AccountName}
		}
		return fmt.Errorf("get automation account %s: %w", p.cfg.AccountName, err)
	}
	p.account = &resp.Account
	id := ""
	if resp.ID != nil {
		id = *resp.ID
	}
	p.logger.Info().Str("id", id).Msg("automation account located")
	return nil
}

// ImportModule uploads the configured PowerShell module from its content URI
// and waits for provisioning to finish. It is a no-op when no module is
// configured.
func (p *Provisioner) ImportModule(ctx context.Context) error {
	if p.cfg.ModuleName == "" {
		p.logger.Info().Msg("no module configured, skipping module import")
		return nil
	}
	p.logger.Info().Str("module", p.cfg.ModuleName).Str("uri", p.cfg.ModuleURI).Msg("importing module")

	params := armautomation.ModuleCreateOrUpdateParameters{
		Location: p.location(),
		Properties: &armautomation.ModuleCreateOrUpdateProperties{
			ContentLink: &armautomation.ContentLink{
				URI: to.Ptr(p.cfg.ModuleURI),
			},
		},
	}
	_, err := p.clients.Modules.CreateOrUpdate(ctx, p.cfg.ResourceGroup, p.cfg.AccountName, p.cfg.ModuleName, params, nil)
	if err != nil {
		return fmt.Errorf("import module %s: %w", p.cfg.ModuleName, err)
	}

	err = p.poller.Wait(ctx, poll.Operation{
		ID:       "module " + p.cfg.ModuleName,
		Classify: poll.ModuleStates,
		Fetch: func(ctx context.Context) (poll.Status, error) {
			resp, err := p.clients.Modules.Get(ctx, p.cfg.ResourceGroup, p.cfg.AccountName, p.cfg.ModuleName, nil)
			if err != nil {
				return poll.Status{}, err
			}
			var st poll.Status
			if props := resp.Properties; props != nil {
				if props.ProvisioningState != nil {
					st.Value = string(*props.ProvisioningState)
				}
				if props.Error != nil && props.Error.Message != nil {
					st.Exception = *props.Error.Message
				}
			}
			return st, nil
		},
	})
	if err != nil {
		return err
	}
	p.logger.Info().Str("module", p.cfg.ModuleName).Msg("module import complete")
	return nil
}

// ImportConfiguration publishes the DSC configuration document with embedded
// content, unconditionally overwriting any prior configuration of the same
// name. Re-running with identical input is idempotent.
func (p *Provisioner) ImportConfiguration(ctx context.Context) error {
	src, err := os.ReadFile(p.cfg.ConfigurationPath)
	if err != nil {
		return fmt.Errorf("read configuration source: %w", err)
	}
	p.logger.Info().Str("configuration", p.cfg.ConfigurationName).Str("path", p.cfg.ConfigurationPath).Msg("publishing configuration")

	params := armautomation.DscConfigurationCreateOrUpdateParameters{
		Name:     to.Ptr(p.cfg.ConfigurationName),
		Location: p.location(),
		Properties: &armautomation.DscConfigurationCreateOrUpdateProperties{
			Source: &armautomation.ContentSource{
				Type:  to.Ptr(armautomation.ContentSourceTypeEmbeddedContent),
				Value: to.Ptr(string(src)),
			},
		},
	}
	_, err = p.clients.Configurations.CreateOrUpdateWithJSON(ctx, p.cfg.ResourceGroup, p.cfg.AccountName, p.cfg.ConfigurationName, params, nil)
	if err != nil {
		return fmt.Errorf("publish configuration %s: %w", p.cfg.ConfigurationName, err)
	}
	p.logger.Info().Str("configuration", p.cfg.ConfigurationName).Msg("configuration published")
	return nil
}

// CompileFleet starts one compilation job per virtual machine, strictly
// serialized: job i+1 is not started until job i completes. The first
// failure aborts the remaining sequence.
func (p *Provisioner) CompileFleet(ctx context.Context) error {
	for seq := 1; seq <= p.cfg.VMCount; seq++ {
		node := NodeName(p.cfg.VMBaseName, seq, p.cfg.VMCount)
		if err := p.compileNode(ctx, node); err != nil {
			return err
		}
	}
	p.logger.Info().Int("count", p.cfg.VMCount).Msg("fleet compilation complete")
	return nil
}

func (p *Provisioner) compileNode(ctx context.Context, node string) error {
	data, err := nodeConfigurationData(node)
	if err != nil {
		return err
	}
	jobName := p.newJobName()
	p.logger.Info().Str("node", node).Str("job", jobName).Msg("starting compilation job")

	params := armautomation.DscCompilationJobCreateParameters{
		Location: p.location(),
		Properties: &armautomation.DscCompilationJobCreateProperties{
			Configuration: &armautomation.DscConfigurationAssociationProperty{
				Name: to.Ptr(p.cfg.ConfigurationName),
			},
			Parameters: map[string]*string{
				"ConfigurationData": to.Ptr(data),
			},
		},
	}
	lro, err := p.clients.CompilationJobs.BeginCreate(ctx, p.cfg.ResourceGroup, p.cfg.AccountName, jobName, params, nil)
	if err != nil {
		return fmt.Errorf("start compilation job for %s: %w", node, err)
	}
	if _, err := lro.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("create compilation job for %s: %w", node, err)
	}

	err = p.poller.Wait(ctx, poll.Operation{
		ID:       fmt.Sprintf("compilation job %s (%s)", jobName, node),
		Classify: poll.JobStates,
		Fetch: func(ctx context.Context) (poll.Status, error) {
			resp, err := p.clients.CompilationJobs.Get(ctx, p.cfg.ResourceGroup, p.cfg.AccountName, jobName, nil)
			if err != nil {
				return poll.Status{}, err
			}
			var st poll.Status
			if props := resp.Properties; props != nil {
				if props.Status != nil {
					st.Value = string(*props.Status)
				}
				if props.Exception != nil {
					st.Exception = *props.Exception
				}
			}
			return st, nil
		},
	})
	if err != nil {
		return err
	}
	p.logger.Info().Str("node", node).Str("job", jobName).Msg("compilation job completed")
	return nil
}

func (p *Provisioner) location() *string {
	if p.account != nil && p.account.Location != nil {
		return p.account.Location
	}
	return nil
}

// NodeName derives the virtual machine name for a sequence number,
// zero-padded to at least three digits and wider once the fleet size needs
// more.
func NodeName(base string, seq, total int) string {
	width := len(strconv.Itoa(total))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("%s%0*d", base, width, seq)
}
