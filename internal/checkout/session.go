// Package checkout drives one point-of-sale checkout session: product tap,
// variant prompt, payment entry, order submission and the success/failure
// overlay. The flow is an explicit state machine; every user action is a
// guarded transition.
package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/usmanz-dev/nova-pos-terminal/internal/cart"
	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

// SalesAPI creates the sale at the external backend. The backend is
// authoritative: it can reject for stock consumed on another terminal, and
// that is a normal, retryable failure.
type SalesAPI interface {
	CreateSale(ctx context.Context, req domain.SaleRequest) (*domain.Sale, error)
}

// Catalog is the read-only product view the session browses, plus the
// re-fetch hook fired after a sale (stock changed at the backend).
type Catalog interface {
	Product(id string) (domain.Product, bool)
	Refresh(ctx context.Context) error
}

// userMessenger is implemented by backend errors that carry a message safe to
// show the cashier.
type userMessenger interface {
	UserMessage() string
}

// Completed is the snapshot kept for the receipt: the cart is cleared on
// success, so lines and totals are captured before clearing.
type Completed struct {
	Sale   domain.Sale
	Lines  []cart.Line
	Totals cart.Totals
}

// Session is one checkout session on one terminal screen. Methods serialize
// through a mutex: user actions are handled one at a time, and the only
// suspend point is the network call inside Submit.
type Session struct {
	mu sync.Mutex

	id      string
	state   State
	cart    *cart.Engine
	catalog Catalog
	sales   SalesAPI

	variantProduct *domain.Product
	customer       string
	payment        domain.PaymentMethod
	failureMsg     string
	completed      *Completed
}

func NewSession(id string, catalog Catalog, sales SalesAPI) *Session {
	return &Session{
		id:       id,
		state:    StateBrowsing,
		cart:     cart.NewEngine(),
		catalog:  catalog,
		sales:    sales,
		customer: domain.DefaultCustomer,
		payment:  domain.PaymentCash,
	}
}

func (s *Session) ID() string {
	return s.id
}

// OnAdd installs the hook fired when a line is added or incremented.
func (s *Session) OnAdd(fn func(cart.Line)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.OnAdd = fn
}

// TapProduct handles a product tile tap. A product with variants opens the
// variant prompt; a plain product goes straight into the cart.
func (s *Session) TapProduct(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBrowsing {
		return IllegalTransitionError
	}
	p, ok := s.catalog.Product(productID)
	if !ok {
		return ErrProductNotFound
	}
	if p.HasVariants() {
		s.variantProduct = &p
		s.state = StateVariantPrompt
		return nil
	}
	return s.cart.AddOrIncrement(p, nil)
}

// SelectVariant adds the chosen variant and returns to browsing. An
// out-of-stock variant is rejected with no transition; the prompt stays open.
func (s *Session) SelectVariant(variantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateVariantPrompt {
		return IllegalTransitionError
	}
	v, ok := s.variantProduct.Variant(variantID)
	if !ok {
		return ErrVariantNotFound
	}
	if v.Stock <= 0 {
		return &cart.CapacityError{Stock: v.Stock, Unit: s.variantProduct.Unit}
	}
	if err := s.cart.AddOrIncrement(*s.variantProduct, &v); err != nil {
		return err
	}
	s.variantProduct = nil
	s.state = StateBrowsing
	return nil
}

// DismissVariantPrompt closes the prompt with no cart mutation.
func (s *Session) DismissVariantPrompt() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateVariantPrompt {
		return IllegalTransitionError
	}
	s.variantProduct = nil
	s.state = StateBrowsing
	return nil
}

// SetQuantity, Remove and pricing changes are cart-review actions; they are
// valid while browsing or entering payment, never mid-submission.
func (s *Session) SetQuantity(key cart.LineKey, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCartEditable(); err != nil {
		return err
	}
	return s.cart.SetQuantity(key, quantity)
}

func (s *Session) Remove(key cart.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCartEditable(); err != nil {
		return err
	}
	s.cart.Remove(key)
	return nil
}

func (s *Session) SetPricing(taxPercent, discountPercent float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCartEditable(); err != nil {
		return err
	}
	s.cart.SetTaxPercent(taxPercent)
	s.cart.SetDiscountPercent(discountPercent)
	return nil
}

// ClearCart empties the cart. A non-empty cart requires confirm=true (the
// safety prompt lives here, not in the cart engine).
func (s *Session) ClearCart(confirm bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireCartEditable(); err != nil {
		return err
	}
	if s.cart.IsEmpty() {
		return nil
	}
	if !confirm {
		return ErrConfirmRequired
	}
	s.cart.Clear()
	return nil
}

// ProceedToPayment moves to payment entry. Blocked on an empty cart before
// anything reaches the network.
func (s *Session) ProceedToPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBrowsing || !CanTransitionTo(s.state, StatePaymentEntry) {
		return IllegalTransitionError
	}
	if s.cart.IsEmpty() {
		return ErrEmptyCart
	}
	s.state = StatePaymentEntry
	return nil
}

// BackToBrowsing leaves payment entry without touching the cart.
func (s *Session) BackToBrowsing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaymentEntry {
		return IllegalTransitionError
	}
	s.state = StateBrowsing
	return nil
}

func (s *Session) SetCustomer(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaymentEntry {
		return IllegalTransitionError
	}
	if name == "" {
		name = domain.DefaultCustomer
	}
	s.customer = name
	return nil
}

func (s *Session) SetPaymentMethod(m domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaymentEntry {
		return IllegalTransitionError
	}
	s.payment = m
	return nil
}

// Submit sends the sale to the backend. This is the single suspend point of
// the session; the mutex is held for the duration, so a second submit cannot
// race in. On success the cart is cleared and percentages reset; on failure
// the cart is preserved exactly and the session moves to Failed for retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaymentEntry || !CanTransitionTo(s.state, StateSubmitting) {
		return IllegalTransitionError
	}
	if s.cart.IsEmpty() {
		return ErrEmptyCart
	}
	if !s.payment.Enabled() {
		return ErrPaymentDisabled
	}
	s.state = StateSubmitting

	lines := s.cart.Lines()
	totals := s.cart.Totals()
	req := buildSaleRequest(s.customer, s.payment, lines, totals)

	sale, err := s.sales.CreateSale(ctx, req)
	if err != nil {
		s.state = StateFailed
		s.failureMsg = submitMessage(err)
		log.Printf("checkout %s: sale submission failed: %v", s.id, err)
		return nil
	}

	merged := *sale
	merged.Customer = s.customer
	merged.PaymentMethod = s.payment.String()
	merged.Total = totals.Total
	s.completed = &Completed{Sale: merged, Lines: lines, Totals: totals}

	s.cart.Reset()
	s.customer = domain.DefaultCustomer
	s.payment = domain.PaymentCash
	s.failureMsg = ""
	s.state = StateSuccess

	// Stock levels changed at the backend; refresh is best effort.
	if err := s.catalog.Refresh(ctx); err != nil {
		log.Printf("checkout %s: catalog refresh after sale failed: %v", s.id, err)
	}
	return nil
}

// Retry returns from the failure overlay to payment entry. Line items, tax
// and discount are exactly as they were before the failed submit.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFailed || !CanTransitionTo(s.state, StatePaymentEntry) {
		return IllegalTransitionError
	}
	s.failureMsg = ""
	s.state = StatePaymentEntry
	return nil
}

// NewSale dismisses the success overlay.
func (s *Session) NewSale() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSuccess {
		return IllegalTransitionError
	}
	s.completed = nil
	s.state = StateBrowsing
	return nil
}

// Completed returns the receipt snapshot. Only available while the success
// overlay is up.
func (s *Session) Completed() (*Completed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSuccess || s.completed == nil {
		return nil, ErrNoCompletedSale
	}
	snap := *s.completed
	snap.Lines = append([]cart.Line(nil), s.completed.Lines...)
	return &snap, nil
}

// View is a read snapshot of the session for the terminal UI.
type View struct {
	ID             string
	State          State
	VariantPrompt  *domain.Product
	Lines          []cart.Line
	Totals         cart.Totals
	TotalQuantity  int
	Customer       string
	PaymentMethod  domain.PaymentMethod
	FailureMessage string
	Sale           *domain.Sale
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:             s.id,
		State:          s.state,
		Lines:          s.cart.Lines(),
		Totals:         s.cart.Totals(),
		TotalQuantity:  s.cart.TotalQuantity(),
		Customer:       s.customer,
		PaymentMethod:  s.payment,
		FailureMessage: s.failureMsg,
	}
	if s.variantProduct != nil {
		p := *s.variantProduct
		v.VariantPrompt = &p
	}
	if s.completed != nil {
		sale := s.completed.Sale
		v.Sale = &sale
	}
	return v
}

func (s *Session) requireCartEditable() error {
	if s.state != StateBrowsing && s.state != StatePaymentEntry {
		return IllegalTransitionError
	}
	return nil
}

func buildSaleRequest(customer string, method domain.PaymentMethod, lines []cart.Line, totals cart.Totals) domain.SaleRequest {
	items := make([]domain.SaleItem, len(lines))
	for i, l := range lines {
		items[i] = domain.SaleItem{
			Product:  l.Key.ProductID,
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    l.Price,
			Total:    l.Total,
		}
	}
	return domain.SaleRequest{
		Customer:      customer,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.TaxAmount,
		Discount:      totals.DiscountAmount,
		Total:         totals.Total,
		PaymentMethod: method.String(),
	}
}

func submitMessage(err error) string {
	var m userMessenger
	if errors.As(err, &m) && m.UserMessage() != "" {
		return m.UserMessage()
	}
	return FallbackSubmitMessage
}
