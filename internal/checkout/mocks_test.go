package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

type mockSales struct {
	mu      sync.Mutex
	calls   int
	lastReq domain.SaleRequest
	sale    *domain.Sale
	err     error
}

func (m *mockSales) CreateSale(_ context.Context, req domain.SaleRequest) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.sale != nil {
		return m.sale, nil
	}
	return &domain.Sale{
		ID:            "sale-1",
		InvoiceNumber: "INV-0001",
		Cashier:       domain.Cashier{Name: "Ayesha"},
		CreatedAt:     time.Now(),
	}, nil
}

func (m *mockSales) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockCatalog struct {
	mu         sync.Mutex
	products   map[string]domain.Product
	refreshes  int
	refreshErr error
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[string]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) Product(id string) (domain.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok
}

func (m *mockCatalog) Refresh(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.refreshErr
}

func (m *mockCatalog) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

// backendError mimics the backend client's message-carrying error.
type backendError struct {
	msg string
}

func (e *backendError) Error() string       { return e.msg }
func (e *backendError) UserMessage() string { return e.msg }

var errNetwork = errors.New("connection refused")
