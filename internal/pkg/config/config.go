package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/billingops/invoice-console/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	ServerAddr        string        `env:"SERVER_ADDR" envDefault:":8080"`
	MetricsAddr       string        `env:"METRICS_ADDR" envDefault:":9091"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	APIKey            string        `env:"API_KEY"` // empty disables the gate (development mode)
	AuthorityBaseURL  string        `env:"AUTHORITY_BASE_URL" envDefault:"https://login.microsoftonline.com"`
	GraphBaseURL      string        `env:"GRAPH_BASE_URL" envDefault:"https://graph.microsoft.com/v1.0"`
	TenantCallTimeout time.Duration `env:"TENANT_CALL_TIMEOUT" envDefault:"30s"`
	UpstreamRateLimit float64       `env:"UPSTREAM_RATE_LIMIT" envDefault:"10"`
	UpstreamRateBurst int           `env:"UPSTREAM_RATE_BURST" envDefault:"15"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadTenants enumerates tenant credentials from the environment.
//
// Indexed entries TENANT_1_ID, TENANT_2_ID, ... are read in order until the
// first gap. Each entry may override the shared CLIENT_ID / CLIENT_SECRET with
// TENANT_<n>_CLIENT_ID / TENANT_<n>_CLIENT_SECRET. When no indexed entries
// exist, a single unindexed TENANT_ID configuration is used if present.
// Returns an empty slice when nothing is configured.
func LoadTenants(authorityBase string) []domain.TenantConfig {
	var tenants []domain.TenantConfig

	for i := 1; ; i++ {
		tenantID := os.Getenv(fmt.Sprintf("TENANT_%d_ID", i))
		if tenantID == "" {
			break
		}

		clientID := os.Getenv(fmt.Sprintf("TENANT_%d_CLIENT_ID", i))
		if clientID == "" {
			clientID = os.Getenv("CLIENT_ID")
		}
		clientSecret := os.Getenv(fmt.Sprintf("TENANT_%d_CLIENT_SECRET", i))
		if clientSecret == "" {
			clientSecret = os.Getenv("CLIENT_SECRET")
		}
		name := os.Getenv(fmt.Sprintf("TENANT_%d_NAME", i))
		if name == "" {
			name = fmt.Sprintf("Tenant %d", i)
		}

		tenants = append(tenants, domain.TenantConfig{
			TenantID:     tenantID,
			ClientID:     clientID,
			ClientSecret: clientSecret,
			DisplayName:  name,
			Authority:    authorityBase + "/" + tenantID,
		})
	}

	// Fallback to a single unindexed tenant configuration.
	if len(tenants) == 0 {
		if tenantID := os.Getenv("TENANT_ID"); tenantID != "" {
			name := os.Getenv("TENANT_NAME")
			if name == "" {
				name = "Primary Tenant"
			}
			tenants = append(tenants, domain.TenantConfig{
				TenantID:     tenantID,
				ClientID:     os.Getenv("CLIENT_ID"),
				ClientSecret: os.Getenv("CLIENT_SECRET"),
				DisplayName:  name,
				Authority:    authorityBase + "/" + tenantID,
			})
		}
	}

	return tenants
}
