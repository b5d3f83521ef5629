package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice status constants
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusIssued    = "issued"
	InvoiceStatusCancelled = "cancelled"
)

// Payment method constants
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCheque       = "cheque"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
	PaymentMethodMpesa        = "mpesa"
	PaymentMethodOnCredit     = "on_credit"
	PaymentMethodOnDelivery   = "on_delivery"
)

// Invoice represents an invoice for an order. At most one invoice exists per
// order; the reconciler looks up the existing invoice before creating one.
//
// Subtotal, TaxAmount and TotalAmount come from the extraction header and are
// authoritative: they are never recomputed from the line-item sum.
type Invoice struct {
	ID            int64     `json:"id"`
	BranchID      int64     `json:"branch_id"`
	OrderID       *int64    `json:"order_id,omitempty"`
	CustomerID    int64     `json:"customer_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reference     string    `json:"reference"`
	InvoiceDate   time.Time `json:"invoice_date"`

	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	Notes         string `json:"notes,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	AttendedBy    string `json:"attended_by,omitempty"`
	KindAttention string `json:"kind_attention,omitempty"`

	// Seller identity as printed on the source document. Never merged into
	// the customer record.
	SellerName    string `json:"seller_name,omitempty"`
	SellerAddress string `json:"seller_address,omitempty"`
	SellerPhone   string `json:"seller_phone,omitempty"`
	SellerEmail   string `json:"seller_email,omitempty"`
	SellerTaxID   string `json:"seller_tax_id,omitempty"`
	SellerVATReg  string `json:"seller_vat_reg,omitempty"`

	// DocumentPath references the stored source document, if any.
	DocumentPath string `json:"document_path,omitempty"`

	Status    string    `json:"status"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceLineItem belongs to exactly one invoice.
type InvoiceLineItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoicePayment records a payment against an invoice. A default record with
// amount zero (unpaid) is created when an invoice with a positive total is
// reconciled.
type InvoicePayment struct {
	ID            int64           `json:"id"`
	InvoiceID     int64           `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// paymentMethodKeywords maps substrings found in extracted payment-method text
// to enumerated payment methods. Order matters: first match wins.
var paymentMethodKeywords = []struct {
	keyword string
	method  string
}{
	{"cash", PaymentMethodCash},
	{"cheque", PaymentMethodCheque},
	{"chq", PaymentMethodCheque},
	{"bank", PaymentMethodBankTransfer},
	{"transfer", PaymentMethodBankTransfer},
	{"card", PaymentMethodCard},
	{"mpesa", PaymentMethodMpesa},
	{"credit", PaymentMethodOnCredit},
	{"delivery", PaymentMethodOnDelivery},
	{"cod", PaymentMethodOnDelivery},
}

// MatchPaymentMethod maps free-form extracted payment text to an enumerated
// payment method, defaulting to on_delivery when nothing matches.
func MatchPaymentMethod(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range paymentMethodKeywords {
		if strings.Contains(lowered, kw.keyword) {
			return kw.method
		}
	}
	return PaymentMethodOnDelivery
}
