package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorityBase = "https://login.microsoftonline.com"

func TestLoadTenants_IndexedEntries(t *testing.T) {
	t.Setenv("CLIENT_ID", "shared-client")
	t.Setenv("CLIENT_SECRET", "shared-secret")
	t.Setenv("TENANT_1_ID", "tenant-one")
	t.Setenv("TENANT_1_NAME", "Contoso")
	t.Setenv("TENANT_2_ID", "tenant-two")
	t.Setenv("TENANT_2_CLIENT_ID", "override-client")
	t.Setenv("TENANT_2_CLIENT_SECRET", "override-secret")

	tenants := LoadTenants(authorityBase)
	require.Len(t, tenants, 2)

	assert.Equal(t, "tenant-one", tenants[0].TenantID)
	assert.Equal(t, "Contoso", tenants[0].DisplayName)
	assert.Equal(t, "shared-client", tenants[0].ClientID)
	assert.Equal(t, "shared-secret", tenants[0].ClientSecret)
	assert.Equal(t, authorityBase+"/tenant-one", tenants[0].Authority)

	assert.Equal(t, "tenant-two", tenants[1].TenantID)
	assert.Equal(t, "Tenant 2", tenants[1].DisplayName, "unset name falls back to positional default")
	assert.Equal(t, "override-client", tenants[1].ClientID)
	assert.Equal(t, "override-secret", tenants[1].ClientSecret)
}

func TestLoadTenants_StopsAtFirstGap(t *testing.T) {
	t.Setenv("TENANT_1_ID", "tenant-one")
	t.Setenv("TENANT_3_ID", "tenant-three") // unreachable past the gap at index 2

	tenants := LoadTenants(authorityBase)
	require.Len(t, tenants, 1)
	assert.Equal(t, "tenant-one", tenants[0].TenantID)
}

func TestLoadTenants_SingleTenantFallback(t *testing.T) {
	t.Setenv("TENANT_ID", "solo-tenant")
	t.Setenv("CLIENT_ID", "solo-client")
	t.Setenv("CLIENT_SECRET", "solo-secret")

	tenants := LoadTenants(authorityBase)
	require.Len(t, tenants, 1)
	assert.Equal(t, "solo-tenant", tenants[0].TenantID)
	assert.Equal(t, "Primary Tenant", tenants[0].DisplayName)
	assert.Equal(t, "solo-client", tenants[0].ClientID)
	assert.Equal(t, authorityBase+"/solo-tenant", tenants[0].Authority)
}

func TestLoadTenants_SingleTenantName(t *testing.T) {
	t.Setenv("TENANT_ID", "solo-tenant")
	t.Setenv("TENANT_NAME", "Fabrikam")

	tenants := LoadTenants(authorityBase)
	require.Len(t, tenants, 1)
	assert.Equal(t, "Fabrikam", tenants[0].DisplayName)
}

func TestLoadTenants_IndexedEntriesWinOverFallback(t *testing.T) {
	t.Setenv("TENANT_1_ID", "indexed-tenant")
	t.Setenv("TENANT_ID", "solo-tenant")

	tenants := LoadTenants(authorityBase)
	require.Len(t, tenants, 1)
	assert.Equal(t, "indexed-tenant", tenants[0].TenantID)
}

func TestLoadTenants_NothingConfigured(t *testing.T) {
	tenants := LoadTenants(authorityBase)
	assert.Empty(t, tenants)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "https://login.microsoftonline.com", cfg.AuthorityBaseURL)
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.GraphBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotZero(t, cfg.TenantCallTimeout)
}
