package config

import (
	"fmt"
	"os"
	"strings"
)

// TenantConfig is the immutable identity record for one tenant in the static
// registry. The tenant's base URL is derived from the environment, not stored.
type TenantConfig struct {
	TenantID      string
	Subdomain     string
	AdminEmail    string
	AdminPassword string
}

// BaseURL derives the tenant-facing web URL for the given environment.
func (t TenantConfig) BaseURL(env Environment) string {
	switch env {
	case EnvLocal:
		return "http://localhost:3000"
	case EnvStaging:
		return fmt.Sprintf("https://%s.staging.workflowpro.com", t.Subdomain)
	default:
		return fmt.Sprintf("https://%s.workflowpro.com", t.Subdomain)
	}
}

// ErrUnknownTenant is wrapped by Tenant when the id is not in the registry.
var ErrUnknownTenant = fmt.Errorf("unknown tenant")

// tenants is the static tenant registry. Admin passwords may be overridden
// via <TENANT>_PASSWORD environment variables.
var tenants = map[string]TenantConfig{
	"company1": {
		TenantID:      "company1",
		Subdomain:     "company1",
		AdminEmail:    "admin@company1.com",
		AdminPassword: envOr("COMPANY1_PASSWORD", "password123"),
	},
	"company2": {
		TenantID:      "company2",
		Subdomain:     "company2",
		AdminEmail:    "admin@company2.com",
		AdminPassword: envOr("COMPANY2_PASSWORD", "password123"),
	},
	"company3": {
		TenantID:      "company3",
		Subdomain:     "company3",
		AdminEmail:    "admin@company3.com",
		AdminPassword: envOr("COMPANY3_PASSWORD", "password123"),
	},
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Tenant looks up a tenant by id. Unknown ids fail fast; there is no
// fallback tenant.
func Tenant(tenantID string) (TenantConfig, error) {
	t, ok := tenants[tenantID]
	if !ok {
		return TenantConfig{}, fmt.Errorf("%w: %q", ErrUnknownTenant, tenantID)
	}
	return t, nil
}

// TenantIDs returns the ids in the registry. Order is not specified.
func TenantIDs() []string {
	ids := make([]string, 0, len(tenants))
	for id := range tenants {
		ids = append(ids, id)
	}
	return ids
}

// TestCredentials returns (email, password) for a tenant and role. The admin
// role uses the registry's admin credentials; other roles follow the
// <role>@<tenant>.com convention with an env-overridable password.
func TestCredentials(tenantID, role string) (string, string, error) {
	t, err := Tenant(tenantID)
	if err != nil {
		return "", "", err
	}
	if role == "admin" {
		return t.AdminEmail, t.AdminPassword, nil
	}
	email := fmt.Sprintf("%s@%s.com", role, tenantID)
	key := strings.ToUpper(tenantID) + "_" + strings.ToUpper(role) + "_PASSWORD"
	return email, envOr(key, "password123"), nil
}
