package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the normalized payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPaid   InvoiceStatus = "Paid"
	InvoiceStatusUnpaid InvoiceStatus = "Unpaid"
)

// Invoice is the canonical invoice shape produced per search invocation.
// TenantName is attached by the aggregator so consumers can tell origins apart.
// JSON field names match the wire shape the original console consumes.
type Invoice struct {
	ID               string          `json:"id"`
	InvoiceDate      time.Time       `json:"invoiceDate"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           InvoiceStatus   `json:"status"`
	DownloadURL      string          `json:"downloadUrl,omitempty"`
	BillingAccountID string          `json:"billingAccountId"`
	BillingProfileID string          `json:"billingProfileId"`
	TenantName       string          `json:"tenantName,omitempty"`
}

// SearchFilters is the per-search value object passed in by the caller.
// Nil pointer fields mean "not filtered on".
type SearchFilters struct {
	InvoiceNumber string
	Amount        *decimal.Decimal
	DateFrom      *time.Time
	DateTo        *time.Time
}

// TenantError records one tenant's failure during a cross-tenant search.
type TenantError struct {
	TenantName string `json:"tenant"`
	Message    string `json:"error"`
}

// SearchResult is the merged outcome of a cross-tenant invoice search.
// Invoices are sorted by InvoiceDate descending. TenantsSearched counts only
// tenants that returned successfully; failed tenants appear in Errors instead.
type SearchResult struct {
	Invoices        []Invoice     `json:"invoices"`
	TenantsSearched int           `json:"tenantsSearched"`
	Errors          []TenantError `json:"errors"`
}

// TenantStatus is a point-in-time health view of one configured tenant,
// computed on demand and never cached.
type TenantStatus struct {
	TenantName    string    `json:"name"`
	TenantID      string    `json:"tenantId"`
	Status        string    `json:"status"`
	LastCheckedAt time.Time `json:"lastChecked"`
}

const (
	TenantStatusActive = "active"
	TenantStatusError  = "error"
)
