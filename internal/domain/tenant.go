package domain

// TenantConfig holds the identity configuration for one Microsoft 365 tenant.
// Instances are built once at startup from the environment and never mutated.
type TenantConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	DisplayName  string
	Authority    string
}
