package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
	"github.com/usmanz-dev/nova-pos-terminal/internal/receipt"
)

type catalogStub struct {
	products []domain.Product
	loadErr  error
}

func (c *catalogStub) Load(context.Context) error { return c.loadErr }
func (c *catalogStub) Refresh(context.Context) error { return nil }

func (c *catalogStub) Product(id string) (domain.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (c *catalogStub) Products(search, categoryID string) []domain.Product {
	return c.products
}

func (c *catalogStub) Categories() []domain.Category {
	return []domain.Category{{ID: "c1", Name: "Drinks"}}
}

type salesStub struct {
	calls int
	err   error
}

func (s *salesStub) CreateSale(context.Context, domain.SaleRequest) (*domain.Sale, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Sale{
		ID:            "s1",
		InvoiceNumber: "INV-0042",
		Cashier:       domain.Cashier{Name: "Ayesha"},
		CreatedAt:     time.Now(),
	}, nil
}

func testServer(t *testing.T, sales *salesStub) *httptest.Server {
	t.Helper()
	catalog := &catalogStub{products: []domain.Product{
		{ID: "coke", Name: "Coke", SKU: "CK-1", Price: 100, Stock: 10, Unit: "pcs", IsActive: true},
	}}
	registry := NewRegistry(catalog, sales)
	renderer := &receipt.Renderer{Now: func() time.Time { return time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC) }}
	router := NewRouter(
		NewSessionHandler(registry, renderer, catalog),
		NewCatalogHandler(catalog),
		30*time.Second,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, SessionResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var view SessionResponse
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	resp.Body.Close()
	return resp, view
}

func openSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, view := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", map[string]string{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if view.State != "BROWSING" {
		t.Errorf("expected BROWSING, got %s", view.State)
	}
	return view.ID
}

func TestCheckoutFlow_Success(t *testing.T) {
	sales := &salesStub{}
	srv := testServer(t, sales)
	id := openSession(t, srv)
	base := srv.URL + "/api/v1/sessions/" + id

	// Tap the same product twice: one line, quantity two.
	doJSON(t, http.MethodPost, base+"/tap", map[string]string{"product_id": "coke"})
	resp, view := doJSON(t, http.MethodPost, base+"/tap", map[string]string{"product_id": "coke"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tap: expected 200, got %d", resp.StatusCode)
	}
	if len(view.Cart.Lines) != 1 || view.Cart.Lines[0].Quantity != 2 {
		t.Fatalf("expected one line with quantity 2, got %+v", view.Cart.Lines)
	}

	// Tax and discount.
	_, view = doJSON(t, http.MethodPut, base+"/cart/pricing", map[string]float64{"tax_percent": 10, "discount_percent": 5})
	if view.Cart.Total != 210 {
		t.Errorf("expected total 210, got %v", view.Cart.Total)
	}

	// Payment entry, then submit.
	resp, _ = doJSON(t, http.MethodPost, base+"/payment", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payment: expected 200, got %d", resp.StatusCode)
	}
	resp, view = doJSON(t, http.MethodPost, base+"/submit", map[string]string{"customer": "Ali", "payment_method": "cash"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}
	if view.State != "SUCCESS" {
		t.Fatalf("expected SUCCESS, got %s", view.State)
	}
	if view.Sale == nil || view.Sale.InvoiceNumber != "INV-0042" {
		t.Fatalf("expected invoice INV-0042, got %+v", view.Sale)
	}
	if len(view.Cart.Lines) != 0 {
		t.Errorf("cart should be cleared after success")
	}
	if sales.calls != 1 {
		t.Errorf("expected one sale call, got %d", sales.calls)
	}

	// Receipt is printable HTML.
	recResp, err := http.Get(base + "/receipt")
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	defer recResp.Body.Close()
	if recResp.StatusCode != http.StatusOK {
		t.Fatalf("receipt: expected 200, got %d", recResp.StatusCode)
	}
	if ct := recResp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("receipt content type %s", ct)
	}

	// New sale dismisses the overlay.
	_, view = doJSON(t, http.MethodPost, base+"/new-sale", nil)
	if view.State != "BROWSING" {
		t.Errorf("expected BROWSING after new sale, got %s", view.State)
	}
}

func TestSubmit_BackendFailureKeepsCart(t *testing.T) {
	sales := &salesStub{err: errors.New("backend down")}
	srv := testServer(t, sales)
	id := openSession(t, srv)
	base := srv.URL + "/api/v1/sessions/" + id

	doJSON(t, http.MethodPost, base+"/tap", map[string]string{"product_id": "coke"})
	doJSON(t, http.MethodPost, base+"/payment", nil)
	resp, view := doJSON(t, http.MethodPost, base+"/submit", map[string]string{})

	// A rejected sale is a recoverable session state, not an HTTP error.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if view.State != "FAILED" {
		t.Fatalf("expected FAILED, got %s", view.State)
	}
	if view.FailureMessage == "" {
		t.Errorf("expected failure message")
	}
	if len(view.Cart.Lines) != 1 {
		t.Errorf("cart must be preserved on failure")
	}

	// Retry path back to payment entry.
	_, view = doJSON(t, http.MethodPost, base+"/retry", nil)
	if view.State != "PAYMENT_ENTRY" {
		t.Errorf("expected PAYMENT_ENTRY after retry, got %s", view.State)
	}
}

func TestProceedToPayment_EmptyCartRejected(t *testing.T) {
	sales := &salesStub{}
	srv := testServer(t, sales)
	id := openSession(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions/"+id+"/payment", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if sales.calls != 0 {
		t.Errorf("no network call may happen for an empty cart")
	}
}

func TestCapacityErrorIsConflict(t *testing.T) {
	srv := testServer(t, &salesStub{})
	id := openSession(t, srv)
	base := srv.URL + "/api/v1/sessions/" + id

	doJSON(t, http.MethodPost, base+"/tap", map[string]string{"product_id": "coke"})
	resp, _ := doJSON(t, http.MethodPut, base+"/cart/items/coke", map[string]int{"quantity": 99})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestUnknownSession(t *testing.T) {
	srv := testServer(t, &salesStub{})
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions/nope/tap", map[string]string{"product_id": "coke"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestReceiptBeforeSuccessIsConflict(t *testing.T) {
	srv := testServer(t, &salesStub{})
	id := openSession(t, srv)

	resp, err := http.Get(srv.URL + "/api/v1/sessions/" + id + "/receipt")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := testServer(t, &salesStub{})

	resp, err := http.Get(srv.URL + "/api/v1/products")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var products ProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(products.Products) != 1 || products.Products[0].Name != "Coke" {
		t.Errorf("unexpected products %+v", products.Products)
	}

	catResp, err := http.Get(srv.URL + "/api/v1/categories")
	if err != nil {
		t.Fatal(err)
	}
	defer catResp.Body.Close()
	var categories CategoriesResponse
	if err := json.NewDecoder(catResp.Body).Decode(&categories); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(categories.Categories) != 1 {
		t.Errorf("unexpected categories %+v", categories.Categories)
	}
}
