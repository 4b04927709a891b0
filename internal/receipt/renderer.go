// Package receipt turns a completed sale snapshot into a printable HTML
// document. Rendering is pure: the only non-determinism is the print
// timestamp, taken from an injectable clock.
package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/usmanz-dev/nova-pos-terminal/internal/cart"
	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

const (
	defaultStoreName = "NOVA POS"
	defaultTagline   = "Point of Sale System"
	fallbackCashier  = "Staff"
)

// Renderer formats receipts for one store. The zero value is usable and
// renders under the default store identity.
type Renderer struct {
	StoreName string
	Tagline   string
	// Now supplies the printed-at timestamp; defaults to time.Now. The
	// timestamp is generated at render time, not taken from the order.
	Now func() time.Time
}

type lineView struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

type receiptView struct {
	StoreName     string
	Tagline       string
	InvoiceNumber string
	Date          string
	Time          string
	Customer      string
	Cashier       string
	Lines         []lineView
	Subtotal      string
	TaxAmount     string
	ShowTax       bool
	Discount      string
	ShowDiscount  bool
	Total         string
	PaymentBadge  string
	BarcodeText   string
}

// Render produces the printable document for a completed sale. Calling it
// twice with the same snapshot yields the same content, timestamp aside.
func (r *Renderer) Render(sale domain.Sale, lines []cart.Line, totals cart.Totals, paymentMethod, customer string) (string, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	store := r.StoreName
	if store == "" {
		store = defaultStoreName
	}
	tagline := r.Tagline
	if tagline == "" {
		tagline = defaultTagline
	}

	invoice := sale.InvoiceNumber
	if invoice == "" {
		invoice = "—"
	}
	if customer == "" {
		customer = domain.DefaultCustomer
	}
	cashier := sale.Cashier.Name
	if cashier == "" {
		cashier = fallbackCashier
	}
	if paymentMethod == "" {
		paymentMethod = domain.PaymentCash.String()
	}
	barcode := sale.InvoiceNumber
	if barcode == "" {
		barcode = "NOVA-POS"
	}

	view := receiptView{
		StoreName:     store,
		Tagline:       tagline,
		InvoiceNumber: invoice,
		Date:          now.Format("02 Jan 2006"),
		Time:          now.Format("03:04 PM"),
		Customer:      customer,
		Cashier:       cashier,
		Subtotal:      FormatAmount(totals.Subtotal),
		TaxAmount:     FormatAmount(totals.TaxAmount),
		ShowTax:       totals.TaxAmount > 0,
		Discount:      FormatAmount(totals.DiscountAmount),
		ShowDiscount:  totals.DiscountAmount > 0,
		Total:         FormatAmount(totals.Total),
		PaymentBadge:  strings.ToUpper(paymentMethod),
		BarcodeText:   barcode,
	}
	view.Lines = make([]lineView, len(lines))
	for i, l := range lines {
		view.Lines[i] = lineView{
			Name:     l.Name,
			Quantity: l.Quantity,
			Price:    FormatAmount(l.Price),
			Total:    FormatAmount(l.Total),
		}
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.String(), nil
}

// FormatAmount renders a rupee amount with thousands separators. Whole
// amounts drop the fraction; fractional ones keep two digits.
func FormatAmount(v float64) string {
	neg := v < 0
	abs := math.Abs(v)

	var s string
	if abs == math.Trunc(abs) {
		s = fmt.Sprintf("%.0f", abs)
	} else {
		s = fmt.Sprintf("%.2f", abs)
	}

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Receipt - {{.InvoiceNumber}}</title>
  <style>
    body { font-family: 'Courier New', monospace; background: #f3f4f6; display: flex; justify-content: center; padding: 20px; }
    .receipt { background: #fff; width: 320px; padding: 28px 24px 20px; }
    .header { text-align: center; margin-bottom: 14px; }
    .store-name { font-size: 18px; font-weight: 700; letter-spacing: 2px; }
    .store-tagline { font-size: 10px; color: #6b7280; }
    .meta { border-top: 2px dashed #d1d5db; border-bottom: 2px dashed #d1d5db; padding: 10px 0; margin-bottom: 10px; }
    .meta-row { display: flex; justify-content: space-between; font-size: 11px; color: #374151; }
    .items-table { width: 100%; border-collapse: collapse; }
    .items-table td { padding: 5px 0; font-size: 12px; color: #1f2937; }
    .totals { border-top: 2px dashed #d1d5db; padding-top: 10px; margin-bottom: 14px; }
    .total-row { display: flex; justify-content: space-between; font-size: 11px; color: #6b7280; margin-bottom: 5px; }
    .total-row.grand { font-size: 15px; font-weight: 700; color: #1f2937; border-top: 2px solid #1f2937; padding-top: 8px; }
    .payment-badge { display: inline-block; font-size: 10px; font-weight: 700; letter-spacing: 1px; border: 1px solid #e5e7eb; padding: 4px 10px; }
    .footer { text-align: center; margin-top: 14px; font-size: 10px; color: #9ca3af; }
    .thank-you { font-size: 12px; font-weight: 700; color: #1f2937; }
    @media print { body { background: white; padding: 0; } }
  </style>
</head>
<body>
  <div class="receipt">
    <div class="header">
      <div class="store-name">{{.StoreName}}</div>
      <div class="store-tagline">{{.Tagline}}</div>
    </div>
    <div class="meta">
      <div class="meta-row"><span>Invoice</span><span>{{.InvoiceNumber}}</span></div>
      <div class="meta-row"><span>Date</span><span>{{.Date}}</span></div>
      <div class="meta-row"><span>Time</span><span>{{.Time}}</span></div>
      <div class="meta-row"><span>Customer</span><span>{{.Customer}}</span></div>
      <div class="meta-row"><span>Cashier</span><span>{{.Cashier}}</span></div>
    </div>
    <table class="items-table"><tbody>
    {{- range .Lines}}
      <tr>
        <td>{{.Name}}</td>
        <td style="text-align:center">{{.Quantity}} &times; Rs. {{.Price}}</td>
        <td style="text-align:right">Rs. {{.Total}}</td>
      </tr>
    {{- end}}
    </tbody></table>
    <div class="totals">
      <div class="total-row"><span>Subtotal</span><span>Rs. {{.Subtotal}}</span></div>
      {{- if .ShowTax}}
      <div class="total-row"><span>Tax</span><span>Rs. {{.TaxAmount}}</span></div>
      {{- end}}
      {{- if .ShowDiscount}}
      <div class="total-row"><span>Discount</span><span>- Rs. {{.Discount}}</span></div>
      {{- end}}
      <div class="total-row grand"><span>TOTAL</span><span>Rs. {{.Total}}</span></div>
    </div>
    <div style="text-align:center; margin-bottom: 14px;"><span class="payment-badge">Paid via {{.PaymentBadge}}</span></div>
    <div style="text-align:center; font-size:9px; color:#9ca3af; letter-spacing:2px;">{{.BarcodeText}}</div>
    <div class="footer">
      <div class="thank-you">&#9733; THANK YOU &#9733;</div>
      <div>Please come again &bull; {{.StoreName}}</div>
    </div>
  </div>
  <script>window.onload = function() { setTimeout(function() { window.print(); }, 300); };</script>
</body>
</html>
`))
