package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/usmanz-dev/nova-pos-terminal/internal/cart"
	"github.com/usmanz-dev/nova-pos-terminal/internal/checkout"
	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
	"github.com/usmanz-dev/nova-pos-terminal/internal/receipt"
)

// CatalogLoader populates the catalog snapshot on screen entry.
type CatalogLoader interface {
	Load(ctx context.Context) error
}

// SessionHandler exposes one checkout session per screen over HTTP. Every
// user gesture of the POS screen is one endpoint.
type SessionHandler struct {
	registry *Registry
	renderer *receipt.Renderer
	loader   CatalogLoader
}

func NewSessionHandler(registry *Registry, renderer *receipt.Renderer, loader CatalogLoader) *SessionHandler {
	return &SessionHandler{registry: registry, renderer: renderer, loader: loader}
}

type LineDTO struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
	Stock    int     `json:"stock"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image,omitempty"`
}

type CartDTO struct {
	Lines           []LineDTO `json:"lines"`
	TotalQuantity   int       `json:"totalQuantity"`
	Subtotal        float64   `json:"subtotal"`
	TaxPercent      float64   `json:"taxPercent"`
	TaxAmount       float64   `json:"taxAmount"`
	DiscountPercent float64   `json:"discountPercent"`
	DiscountAmount  float64   `json:"discountAmount"`
	Total           float64   `json:"total"`
}

type SaleDTO struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Cashier       string  `json:"cashier"`
	Customer      string  `json:"customer"`
	PaymentMethod string  `json:"paymentMethod"`
	Total         float64 `json:"total"`
}

type SessionResponse struct {
	ID             string          `json:"id"`
	State          string          `json:"state"`
	Cart           CartDTO         `json:"cart"`
	Customer       string          `json:"customer"`
	PaymentMethod  string          `json:"paymentMethod"`
	VariantPrompt  *domain.Product `json:"variantPrompt,omitempty"`
	FailureMessage string          `json:"failureMessage,omitempty"`
	Sale           *SaleDTO        `json:"sale,omitempty"`
}

func sessionResponse(v checkout.View) SessionResponse {
	resp := SessionResponse{
		ID:             v.ID,
		State:          v.State.String(),
		Customer:       v.Customer,
		PaymentMethod:  v.PaymentMethod.String(),
		VariantPrompt:  v.VariantPrompt,
		FailureMessage: v.FailureMessage,
	}
	resp.Cart = CartDTO{
		Lines:           make([]LineDTO, len(v.Lines)),
		TotalQuantity:   v.TotalQuantity,
		Subtotal:        v.Totals.Subtotal,
		TaxPercent:      v.Totals.TaxPercent,
		TaxAmount:       v.Totals.TaxAmount,
		DiscountPercent: v.Totals.DiscountPercent,
		DiscountAmount:  v.Totals.DiscountAmount,
		Total:           v.Totals.Total,
	}
	for i, l := range v.Lines {
		resp.Cart.Lines[i] = LineDTO{
			Key:      l.Key.String(),
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Total:    l.Total,
			Stock:    l.Stock,
			Unit:     l.Unit,
			Image:    l.Image,
		}
	}
	if v.Sale != nil {
		resp.Sale = &SaleDTO{
			ID:            v.Sale.ID,
			InvoiceNumber: v.Sale.InvoiceNumber,
			Cashier:       v.Sale.Cashier.Name,
			Customer:      v.Sale.Customer,
			PaymentMethod: v.Sale.PaymentMethod,
			Total:         v.Sale.Total,
		}
	}
	return resp
}

// POST /api/v1/sessions
//
// Opening a session is entering the POS screen: the catalog is fetched here.
// A fetch failure leaves the catalog empty, never blocks the screen.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.loader.Load(r.Context()); err != nil {
		log.Printf("catalog load on session open failed: %v", err)
	}
	s := h.registry.Create()
	log.Printf("checkout session %s opened", s.ID())
	respondJSON(w, http.StatusCreated, sessionResponse(s.View()))
}

// GET /api/v1/sessions/{session_id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

type TapRequestDTO struct {
	ProductID string `json:"product_id"`
}

// POST /api/v1/sessions/{session_id}/tap
func (h *SessionHandler) Tap(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req TapRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if err := s.TapProduct(req.ProductID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

type SelectVariantRequestDTO struct {
	VariantID string `json:"variant_id"`
}

// POST /api/v1/sessions/{session_id}/variant
func (h *SessionHandler) SelectVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectVariantRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := s.SelectVariant(req.VariantID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

// DELETE /api/v1/sessions/{session_id}/variant
func (h *SessionHandler) DismissVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.DismissVariantPrompt(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// PUT /api/v1/sessions/{session_id}/cart/items/{key}
func (h *SessionHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	key, err := cart.ParseLineKey(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_key", err.Error())
		return
	}
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := s.SetQuantity(key, req.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

// DELETE /api/v1/sessions/{session_id}/cart/items/{key}
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	key, err := cart.ParseLineKey(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_key", err.Error())
		return
	}
	if err := s.Remove(key); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

type ClearCartRequestDTO struct {
	Confirm bool `json:"confirm"`
}

// POST /api/v1/sessions/{session_id}/cart/clear
func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ClearCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := s.ClearCart(req.Confirm); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

type PricingRequestDTO struct {
	TaxPercent      float64 `json:"tax_percent"`
	DiscountPercent float64 `json:"discount_percent"`
}

// PUT /api/v1/sessions/{session_id}/cart/pricing
func (h *SessionHandler) SetPricing(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req PricingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := s.SetPricing(req.TaxPercent, req.DiscountPercent); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

// POST /api/v1/sessions/{session_id}/payment
func (h *SessionHandler) ProceedToPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.ProceedToPayment(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

// DELETE /api/v1/sessions/{session_id}/payment
func (h *SessionHandler) BackToBrowsing(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.BackToBrowsing(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

type SubmitRequestDTO struct {
	Customer      string `json:"customer"`
	PaymentMethod string `json:"payment_method"`
}

// POST /api/v1/sessions/{session_id}/submit
//
// A backend rejection is not an HTTP failure here: the session lands in the
// FAILED state and the response carries the message, cart intact, ready for
// retry.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Customer != "" {
		if err := s.SetCustomer(req.Customer); err != nil {
			respondDomainError(w, err)
			return
		}
	}
	if req.PaymentMethod != "" {
		method, err := domain.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
			return
		}
		if err := s.SetPaymentMethod(method); err != nil {
			respondDomainError(w, err)
			return
		}
	}

	if err := s.Submit(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

// POST /api/v1/sessions/{session_id}/retry
func (h *SessionHandler) Retry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Retry(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

// GET /api/v1/sessions/{session_id}/receipt
func (h *SessionHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	snap, err := s.Completed()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	doc, err := h.renderer.Render(snap.Sale, snap.Lines, snap.Totals, snap.Sale.PaymentMethod, snap.Sale.Customer)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Printf("failed to write receipt: %v", err)
	}
}

// POST /api/v1/sessions/{session_id}/new-sale
func (h *SessionHandler) NewSale(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.NewSale(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(s.View()))
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	id := chi.URLParam(r, "session_id")
	s, ok := h.registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session_not_found", "no such checkout session")
		return nil, false
	}
	return s, true
}
