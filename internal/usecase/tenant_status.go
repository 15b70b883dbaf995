package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/billingops/invoice-console/internal/domain"
)

// TenantStatusUseCase probes each configured tenant's token endpoint to
// report connectivity. Statuses are computed on demand and never cached.
type TenantStatusUseCase struct {
	tenants     []domain.TenantConfig
	tokens      domain.TokenAcquirer
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewTenantStatusUseCase creates a new use case for tenant health checks.
func NewTenantStatusUseCase(
	tenants []domain.TenantConfig,
	tokens domain.TokenAcquirer,
	callTimeout time.Duration,
	logger *slog.Logger,
) *TenantStatusUseCase {
	return &TenantStatusUseCase{
		tenants:     tenants,
		tokens:      tokens,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Statuses checks every tenant concurrently. A successful token exchange
// marks the tenant active; any failure marks it errored. Results come back
// in configuration order.
func (uc *TenantStatusUseCase) Statuses(ctx context.Context) []domain.TenantStatus {
	return iter.Map(uc.tenants, func(tenant *domain.TenantConfig) domain.TenantStatus {
		probeCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
		defer cancel()

		status := domain.TenantStatusActive
		if _, err := uc.tokens.AcquireToken(probeCtx, *tenant); err != nil {
			uc.logger.Warn("tenant status probe failed", "tenant", tenant.DisplayName, "error", err)
			status = domain.TenantStatusError
		}

		return domain.TenantStatus{
			TenantName:    tenant.DisplayName,
			TenantID:      tenant.TenantID,
			Status:        status,
			LastCheckedAt: time.Now().UTC(),
		}
	})
}
