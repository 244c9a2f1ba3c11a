package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		TenantID:          "tenant",
		SubscriptionID:    "sub",
		ClientID:          "client",
		ClientSecret:      "secret",
		ResourceGroup:     "rg",
		AccountName:       "auto",
		ConfigurationName: "JumpBoxConfig",
		ConfigurationPath: "config.ps1",
		VMBaseName:        "jumpwin",
		VMCount:           2,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing tenant", func(c *Config) { c.TenantID = "" }, "tenant id"},
		{"missing subscription", func(c *Config) { c.SubscriptionID = "" }, "subscription id"},
		{"missing secret", func(c *Config) { c.ClientSecret = "" }, "client secret"},
		{"missing resource group", func(c *Config) { c.ResourceGroup = "" }, "resource group"},
		{"missing base name", func(c *Config) { c.VMBaseName = "" }, "vm base name"},
		{"zero count", func(c *Config) { c.VMCount = 0 }, "vm count"},
		{"negative count", func(c *Config) { c.VMCount = -1 }, "vm count"},
		{"module uri without name", func(c *Config) { c.ModuleURI = "https://example.test/m.zip" }, "module uri given without module name"},
		{"module name without uri", func(c *Config) { c.ModuleName = "cChoco" }, "module name given without module uri"},
		{"endpoint mode skips credential", func(c *Config) {
			c.EndpointURL = "http://127.0.0.1:1"
			c.TenantID = ""
			c.ClientID = ""
			c.ClientSecret = ""
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DSCFLEET_TENANT_ID", "tenant")
	t.Setenv("DSCFLEET_VM_COUNT", "7")
	t.Setenv("DSCFLEET_POLL_SECONDS", "3")

	c := FromEnv()
	if c.TenantID != "tenant" {
		t.Errorf("TenantID = %q", c.TenantID)
	}
	if c.VMCount != 7 {
		t.Errorf("VMCount = %d", c.VMCount)
	}
	if c.PollSeconds != 3 {
		t.Errorf("PollSeconds = %d", c.PollSeconds)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dscfleet.toml")
	contents := `
tenant_id = "tenant"
subscription_id = "sub"
resource_group = "rg"
account_name = "auto"
vm_base_name = "jumpwin"
vm_count = 5
poll_seconds = 15
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AccountName != "auto" {
		t.Errorf("AccountName = %q", c.AccountName)
	}
	if c.VMCount != 5 {
		t.Errorf("VMCount = %d", c.VMCount)
	}
	if c.Interval() != 15*time.Second {
		t.Errorf("Interval = %v", c.Interval())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}

func TestMergePrecedence(t *testing.T) {
	base := Config{TenantID: "file-tenant", ResourceGroup: "file-rg", VMCount: 3}
	over := Config{TenantID: "env-tenant", PollSeconds: 30}

	got := base.Merge(over)
	if got.TenantID != "env-tenant" {
		t.Errorf("TenantID = %q, want env-tenant", got.TenantID)
	}
	if got.ResourceGroup != "file-rg" {
		t.Errorf("ResourceGroup = %q, want file-rg", got.ResourceGroup)
	}
	if got.VMCount != 3 {
		t.Errorf("VMCount = %d, want 3", got.VMCount)
	}
	if got.PollSeconds != 30 {
		t.Errorf("PollSeconds = %d, want 30", got.PollSeconds)
	}
}

func TestIntervalDefault(t *testing.T) {
	if got := (Config{}).Interval(); got != 10*time.Second {
		t.Errorf("Interval = %v, want 10s", got)
	}
}
