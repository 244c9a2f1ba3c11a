// Package azure constructs the Automation resource clients used by the
// provisioning pipeline. Clients are built once and passed explicitly; there
// is no ambient session state.
package azure

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/automation/armautomation"
)

type staticCredential struct{}

func (staticCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "static-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// Options configures client construction. When EndpointURL is set, requests
// go to that endpoint with a static credential instead of Entra ID; used by
// tests against fake ARM servers.
type Options struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
	EndpointURL    string
}

// Clients bundles the Automation SDK clients for one subscription.
type Clients struct {
	Accounts        *armautomation.AccountClient
	Modules         *armautomation.ModuleClient
	Configurations  *armautomation.DscConfigurationClient
	CompilationJobs *armautomation.DscCompilationJobClient
}

// NewClients authenticates the service principal and builds the Automation
// clients scoped to the subscription. Credential construction failure is
// returned to the caller; there is no retry.
func NewClients(opts Options) (*Clients, error) {
	var cred azcore.TokenCredential
	var clientOpts *arm.ClientOptions
	if opts.EndpointURL != "" {
		cred = staticCredential{}
		clientOpts = &arm.ClientOptions{
			ClientOptions: azcore.ClientOptions{
				Cloud: cloud.Configuration{
					Services: map[cloud.ServiceName]cloud.ServiceConfiguration{
						cloud.ResourceManager: {
							Endpoint: opts.EndpointURL,
							Audience: "https://management.azure.com/",
						},
					},
				},
				InsecureAllowCredentialWithHTTP: true,
			},
		}
	} else {
		c, err := azidentity.NewClientSecretCredential(opts.TenantID, opts.ClientID, opts.ClientSecret, nil)
		if err != nil {
			return nil, err
		}
		cred = c
	}

	accounts, err := armautomation.NewAccountClient(opts.SubscriptionID, cred, clientOpts)
	if err != nil {
		return nil, err
	}
	modules, err := armautomation.NewModuleClient(opts.SubscriptionID, cred, clientOpts)
	if err != nil {
		return nil, err
	}
	configurations, err := armautomation.NewDscConfigurationClient(opts.SubscriptionID, cred, clientOpts)
	if err != nil {
		return nil, err
	}
	jobs, err := armautomation.NewDscCompilationJobClient(opts.SubscriptionID, cred, clientOpts)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Accounts:        accounts,
		Modules:         modules,
		Configurations:  configurations,
		CompilationJobs: jobs,
	}, nil
}

// IsNotFound reports whether err is an ARM 404 response.
func IsNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
