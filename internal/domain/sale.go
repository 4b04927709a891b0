package domain

import (
	"fmt"
	"time"
)

// DefaultCustomer is used when the cashier does not enter a customer name.
const DefaultCustomer = "Walk-in Customer"

// PaymentMethod is a closed enum. Only cash is enabled end to end; the other
// methods are reserved in the product scope and rejected at submission.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

func (m PaymentMethod) Enabled() bool {
	return m == PaymentCash
}

func (m PaymentMethod) String() string {
	return string(m)
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard, PaymentMobile:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// SaleItem is one line of the order payload sent to the sales endpoint.
type SaleItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// SaleRequest is the POST /sales payload. Totals are the locally computed
// snapshot; the backend re-validates stock and assigns the invoice number.
type SaleRequest struct {
	Customer      string     `json:"customer"`
	Items         []SaleItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Discount      float64    `json:"discount"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"paymentMethod"`
}

type Cashier struct {
	Name string `json:"name"`
}

// Sale is the persisted record returned by the backend. Customer and
// PaymentMethod are merged in from the local submission; invoice number and
// cashier identity are trusted from the backend.
type Sale struct {
	ID            string    `json:"_id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	Cashier       Cashier   `json:"cashier"`
	CreatedAt     time.Time `json:"createdAt"`
	Customer      string    `json:"customer,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Total         float64   `json:"total,omitempty"`
}
