// Package config holds the flat provisioning configuration. Sources merge as
// flags > environment > TOML file; later non-zero values win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const defaultPollSeconds = 10

// Config holds all provisioning parameters.
type Config struct {
	TenantID       string `toml:"tenant_id"`
	SubscriptionID string `toml:"subscription_id"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`

	ResourceGroup string `toml:"resource_group"`
	AccountName   string `toml:"account_name"`

	ConfigurationName string `toml:"configuration_name"`
	ConfigurationPath string `toml:"configuration_path"`

	ModuleName string `toml:"module_name"`
	ModuleURI  string `toml:"module_uri"`

	VMBaseName string `toml:"vm_base_name"`
	VMCount    int    `toml:"vm_count"`

	PollSeconds int    `toml:"poll_seconds"`
	EndpointURL string `toml:"endpoint_url"`
}

// FromEnv loads configuration from DSCFLEET_* environment variables.
func FromEnv() Config {
	count, _ := strconv.Atoi(os.Getenv("DSCFLEET_VM_COUNT"))
	pollSeconds, _ := strconv.Atoi(os.Getenv("DSCFLEET_POLL_SECONDS"))
	return Config{
		TenantID:          os.Getenv("DSCFLEET_TENANT_ID"),
		SubscriptionID:    os.Getenv("DSCFLEET_SUBSCRIPTION_ID"),
		ClientID:          os.Getenv("DSCFLEET_CLIENT_ID"),
		ClientSecret:      os.Getenv("DSCFLEET_CLIENT_SECRET"),
		ResourceGroup:     os.Getenv("DSCFLEET_RESOURCE_GROUP"),
		AccountName:       os.Getenv("DSCFLEET_ACCOUNT_NAME"),
		ConfigurationName: os.Getenv("DSCFLEET_CONFIGURATION_NAME"),
		ConfigurationPath: os.Getenv("DSCFLEET_CONFIGURATION_PATH"),
		ModuleName:        os.Getenv("DSCFLEET_MODULE_NAME"),
		ModuleURI:         os.Getenv("DSCFLEET_MODULE_URI"),
		VMBaseName:        os.Getenv("DSCFLEET_VM_BASE_NAME"),
		VMCount:           count,
		PollSeconds:       pollSeconds,
		EndpointURL:       os.Getenv("DSCFLEET_ENDPOINT_URL"),
	}
}

// Load reads a TOML configuration file.
func Load(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return c, nil
}

// Merge overlays non-zero fields of over onto c.
func (c Config) Merge(over Config) Config {
	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&c.TenantID, over.TenantID)
	merge(&c.SubscriptionID, over.SubscriptionID)
	merge(&c.ClientID, over.ClientID)
	merge(&c.ClientSecret, over.ClientSecret)
	merge(&c.ResourceGroup, over.ResourceGroup)
	merge(&c.AccountName, over.AccountName)
	merge(&c.ConfigurationName, over.ConfigurationName)
	merge(&c.ConfigurationPath, over.ConfigurationPath)
	merge(&c.ModuleName, over.ModuleName)
	merge(&c.ModuleURI, over.ModuleURI)
	merge(&c.VMBaseName, over.VMBaseName)
	merge(&c.EndpointURL, over.EndpointURL)
	if over.VMCount != 0 {
		c.VMCount = over.VMCount
	}
	if over.PollSeconds != 0 {
		c.PollSeconds = over.PollSeconds
	}
	return c
}

// Validate checks the mandatory parameters.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"subscription id", c.SubscriptionID},
		{"resource group", c.ResourceGroup},
		{"account name", c.AccountName},
		{"configuration name", c.ConfigurationName},
		{"configuration path", c.ConfigurationPath},
		{"vm base name", c.VMBaseName},
	}
	if c.EndpointURL == "" {
		// Custom-endpoint mode substitutes a static credential, so the
		// service principal is only mandatory against real ARM.
		required = append(required, []struct {
			name  string
			value string
		}{
			{"tenant id", c.TenantID},
			{"client id", c.ClientID},
			{"client secret", c.ClientSecret},
		}...)
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	if c.VMCount < 1 {
		return fmt.Errorf("vm count must be a positive integer, got %d", c.VMCount)
	}
	if c.ModuleName == "" && c.ModuleURI != "" {
		return fmt.Errorf("module uri given without module name")
	}
	if c.ModuleName != "" && c.ModuleURI == "" {
		return fmt.Errorf("module name given without module uri")
	}
	return nil
}

// Interval returns the poll interval, defaulting to 10 seconds.
func (c Config) Interval() time.Duration {
	if c.PollSeconds <= 0 {
		return defaultPollSeconds * time.Second
	}
	return time.Duration(c.PollSeconds) * time.Second
}
