package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billingops/invoice-console/internal/adapter/metrics"
	"github.com/billingops/invoice-console/internal/domain"
	"github.com/billingops/invoice-console/internal/domain/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.BillingMetrics {
	return metrics.NewBillingMetrics(prometheus.NewRegistry())
}

func tenantFixture(id, name string) domain.TenantConfig {
	return domain.TenantConfig{
		TenantID:    id,
		ClientID:    "client",
		DisplayName: name,
		Authority:   "https://login.example.com/" + id,
	}
}

func invoiceFixture(id string, date time.Time, amount string) domain.Invoice {
	return domain.Invoice{
		ID:          id,
		InvoiceDate: date,
		TotalAmount: decimal.RequireFromString(amount),
		Status:      domain.InvoiceStatusUnpaid,
	}
}

func TestSearchInvoicesUseCase_AllTenantsSucceed(t *testing.T) {
	tenants := []domain.TenantConfig{
		tenantFixture("t1", "Contoso"),
		tenantFixture("t2", "Fabrikam"),
		tenantFixture("t3", "Northwind"),
	}
	source := &mocks.MockInvoiceSource{
		Invoices: map[string][]domain.Invoice{
			"t1": {invoiceFixture("INV-A", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "100")},
			"t2": {invoiceFixture("INV-B", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "200")},
			"t3": {invoiceFixture("INV-C", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "300")},
		},
	}
	uc := NewSearchInvoicesUseCase(tenants, &mocks.MockTokenAcquirer{}, source, time.Second, discardLogger(), testMetrics())

	result := uc.Search(context.Background(), domain.SearchFilters{})

	assert.Equal(t, 3, result.TenantsSearched)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Invoices, 3)

	// Sorted by invoice date descending.
	assert.Equal(t, []string{"INV-B", "INV-C", "INV-A"},
		[]string{result.Invoices[0].ID, result.Invoices[1].ID, result.Invoices[2].ID})

	// Each invoice is tagged with its tenant's display name.
	assert.Equal(t, "Fabrikam", result.Invoices[0].TenantName)
	assert.Equal(t, "Northwind", result.Invoices[1].TenantName)
	assert.Equal(t, "Contoso", result.Invoices[2].TenantName)
}

func TestSearchInvoicesUseCase_SortInvariant(t *testing.T) {
	tenants := []domain.TenantConfig{tenantFixture("t1", "Contoso")}
	source := &mocks.MockInvoiceSource{
		Invoices: map[string][]domain.Invoice{
			"t1": {
				invoiceFixture("INV-1", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), "1"),
				invoiceFixture("INV-2", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2"),
				invoiceFixture("INV-3", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "3"),
				invoiceFixture("INV-4", time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), "4"),
			},
		},
	}
	uc := NewSearchInvoicesUseCase(tenants, &mocks.MockTokenAcquirer{}, source, time.Second, discardLogger(), testMetrics())

	result := uc.Search(context.Background(), domain.SearchFilters{})

	require.Len(t, result.Invoices, 4)
	for i := 0; i < len(result.Invoices)-1; i++ {
		assert.False(t, result.Invoices[i].InvoiceDate.Before(result.Invoices[i+1].InvoiceDate),
			"invoices must be ordered by date descending")
	}
	// Stable sort keeps the original relative order of equal dates.
	assert.Equal(t, "INV-2", result.Invoices[0].ID)
	assert.Equal(t, "INV-3", result.Invoices[1].ID)
}

func TestSearchInvoicesUseCase_PartialFailure(t *testing.T) {
	tenants := []domain.TenantConfig{
		tenantFixture("t1", "Contoso"),
		tenantFixture("t2", "Fabrikam"),
	}
	tokens := &mocks.MockTokenAcquirer{
		Errs: map[string]error{"t2": domain.ErrAuthentication},
	}
	source := &mocks.MockInvoiceSource{
		Invoices: map[string][]domain.Invoice{
			"t1": {invoiceFixture("INV-A", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "100")},
		},
	}
	uc := NewSearchInvoicesUseCase(tenants, tokens, source, time.Second, discardLogger(), testMetrics())

	result := uc.Search(context.Background(), domain.SearchFilters{})

	assert.Equal(t, 1, result.TenantsSearched)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Fabrikam", result.Errors[0].TenantName)
	assert.NotEmpty(t, result.Errors[0].Message)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, "INV-A", result.Invoices[0].ID)
}

func TestSearchInvoicesUseCase_QueryFailsPastFallback(t *testing.T) {
	// Both the primary endpoint and the substitute path failing for one tenant
	// must not disturb the other tenant's result.
	tenants := []domain.TenantConfig{
		tenantFixture("t1", "Contoso"),
		tenantFixture("t2", "Fabrikam"),
	}
	source := &mocks.MockInvoiceSource{
		Invoices: map[string][]domain.Invoice{
			"t1": {invoiceFixture("INV-A", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "100")},
		},
		QueryErrs: map[string]error{"t2": errors.New("tenant account disabled")},
	}
	uc := NewSearchInvoicesUseCase(tenants, &mocks.MockTokenAcquirer{}, source, time.Second, discardLogger(), testMetrics())

	result := uc.Search(context.Background(), domain.SearchFilters{})

	assert.Equal(t, 1, result.TenantsSearched)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Fabrikam", result.Errors[0].TenantName)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, "Contoso", result.Invoices[0].TenantName)
}

func TestSearchInvoicesUseCase_AllTenantsFail(t *testing.T) {
	tenants := []domain.TenantConfig{
		tenantFixture("t1", "Contoso"),
		tenantFixture("t2", "Fabrikam"),
	}
	tokens := &mocks.MockTokenAcquirer{
		Errs: map[string]error{
			"t1": domain.ErrAuthentication,
			"t2": domain.ErrAuthentication,
		},
	}
	uc := NewSearchInvoicesUseCase(tenants, tokens, &mocks.MockInvoiceSource{}, time.Second, discardLogger(), testMetrics())

	result := uc.Search(context.Background(), domain.SearchFilters{})

	assert.Equal(t, 0, result.TenantsSearched)
	assert.Len(t, result.Errors, 2)
	assert.Empty(t, result.Invoices)
	assert.NotNil(t, result.Invoices, "empty result must serialize as [] not null")
}

func TestSearchInvoicesUseCase_ZeroTenants(t *testing.T) {
	uc := NewSearchInvoicesUseCase(nil, &mocks.MockTokenAcquirer{}, &mocks.MockInvoiceSource{}, time.Second, discardLogger(), testMetrics())

	result := uc.Search(context.Background(), domain.SearchFilters{})

	assert.Equal(t, 0, result.TenantsSearched)
	assert.NotNil(t, result.Invoices)
	assert.Empty(t, result.Invoices)
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Errors)
}

func TestSearchInvoicesUseCase_Idempotent(t *testing.T) {
	tenants := []domain.TenantConfig{
		tenantFixture("t1", "Contoso"),
		tenantFixture("t2", "Fabrikam"),
	}
	source := &mocks.MockInvoiceSource{
		Invoices: map[string][]domain.Invoice{
			"t1": {
				invoiceFixture("INV-A", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "100"),
				invoiceFixture("INV-B", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "150"),
			},
			"t2": {invoiceFixture("INV-C", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "200")},
		},
	}
	uc := NewSearchInvoicesUseCase(tenants, &mocks.MockTokenAcquirer{}, source, time.Second, discardLogger(), testMetrics())

	first := uc.Search(context.Background(), domain.SearchFilters{})
	second := uc.Search(context.Background(), domain.SearchFilters{})

	assert.Equal(t, first, second)
}
