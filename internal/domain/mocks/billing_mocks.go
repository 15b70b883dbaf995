package mocks

import (
	"context"
	"sync"

	"github.com/billingops/invoice-console/internal/domain"
)

// MockTokenAcquirer is a mock implementation of domain.TokenAcquirer for testing.
// Results are keyed by tenant ID.
type MockTokenAcquirer struct {
	mu     sync.Mutex
	Tokens map[string]string
	Errs   map[string]error
	Calls  []string
}

func (m *MockTokenAcquirer) AcquireToken(ctx context.Context, tenant domain.TenantConfig) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, tenant.TenantID)
	if err, ok := m.Errs[tenant.TenantID]; ok {
		return "", err
	}
	if token, ok := m.Tokens[tenant.TenantID]; ok {
		return token, nil
	}
	return "test-token", nil
}

// MockInvoiceSource is a mock implementation of domain.InvoiceSource.
// Query and Get results are keyed by tenant ID, download content by URL.
type MockInvoiceSource struct {
	mu            sync.Mutex
	Invoices      map[string][]domain.Invoice
	QueryErrs     map[string]error
	GetResults    map[string]domain.Invoice
	GetErrs       map[string]error
	Content       map[string][]byte
	DownloadErrs  map[string]error
	QueryCalls    []string
	GetCalls      []string
	DownloadCalls []string
}

func (m *MockInvoiceSource) QueryInvoices(ctx context.Context, token string, tenant domain.TenantConfig, filters domain.SearchFilters) ([]domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls = append(m.QueryCalls, tenant.TenantID)
	if err, ok := m.QueryErrs[tenant.TenantID]; ok {
		return nil, err
	}
	return m.Invoices[tenant.TenantID], nil
}

func (m *MockInvoiceSource) GetInvoice(ctx context.Context, token string, tenant domain.TenantConfig, invoiceID string) (domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, tenant.TenantID)
	if err, ok := m.GetErrs[tenant.TenantID]; ok {
		return domain.Invoice{}, err
	}
	if inv, ok := m.GetResults[tenant.TenantID]; ok {
		return inv, nil
	}
	return domain.Invoice{}, domain.ErrInvoiceNotFound
}

func (m *MockInvoiceSource) DownloadContent(ctx context.Context, downloadURL string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DownloadCalls = append(m.DownloadCalls, downloadURL)
	if err, ok := m.DownloadErrs[downloadURL]; ok {
		return nil, err
	}
	if content, ok := m.Content[downloadURL]; ok {
		return content, nil
	}
	return nil, domain.ErrInvoiceNotFound
}
