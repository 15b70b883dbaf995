package domain

import (
	"context"
	"errors"
)

var (
	// ErrAuthentication indicates the client-credentials token exchange failed
	// for a tenant. It is always scoped to a single tenant and never fatal to a
	// cross-tenant search.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvoiceNotFound indicates a download target could not be resolved in
	// any configured tenant.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// TokenAcquirer exchanges tenant credentials for a bearer token.
// Implementations must be safe for concurrent use across tenants and must not
// cache tokens; each call performs exactly one exchange.
type TokenAcquirer interface {
	AcquireToken(ctx context.Context, tenant TenantConfig) (string, error)
}

// InvoiceSource issues invoice operations against one tenant's upstream.
type InvoiceSource interface {
	// QueryInvoices lists a tenant's invoices with filters applied. Upstream
	// unavailability is handled internally via a substitute data set, so an
	// error return means even the substitute path could not produce a result.
	QueryInvoices(ctx context.Context, token string, tenant TenantConfig, filters SearchFilters) ([]Invoice, error)

	// GetInvoice fetches a single invoice record by id.
	GetInvoice(ctx context.Context, token string, tenant TenantConfig, invoiceID string) (Invoice, error)

	// DownloadContent fetches the binary content behind an invoice's download
	// reference. The reference is pre-authorized; no bearer token is attached.
	DownloadContent(ctx context.Context, downloadURL string) ([]byte, error)
}
