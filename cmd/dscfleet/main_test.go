package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestCmdProvisionInvalidConfig(t *testing.T) {
	if got := cmdProvision([]string{"-vm-count", "0"}); got != 2 {
		t.Errorf("cmdProvision = %d, want 2", got)
	}
}

func newFakeAccountServer(t *testing.T, account string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscriptions/{sub}/resourceGroups/{rg}/providers/Microsoft.Automation/automationAccounts/{account}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.PathValue("account") != account {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "ResourceNotFound", "message": "not found"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":     account,
			"location": "eastus",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCmdCheck(t *testing.T) {
	srv := newFakeAccountServer(t, "auto-sandbox")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.ps1")
	if err := os.WriteFile(cfgPath, []byte("Configuration C {}\n"), 0o644); err != nil {
		t.Fatalf("write configuration: %v", err)
	}

	args := func(account string) []string {
		return []string{
			"-endpoint-url", srv.URL,
			"-subscription-id", "00000000-0000-0000-0000-000000000000",
			"-resource-group", "rg-sandbox",
			"-account", account,
			"-configuration-name", "JumpBoxConfig",
			"-configuration-path", cfgPath,
			"-vm-base-name", "jumpwin",
			"-vm-count", "2",
			"-log-level", "error",
		}
	}

	if got := cmdCheck(args("auto-sandbox")); got != 0 {
		t.Errorf("cmdCheck = %d, want 0", got)
	}
	if got := cmdCheck(args("missing")); got != 2 {
		t.Errorf("cmdCheck with missing account = %d, want 2", got)
	}
}
