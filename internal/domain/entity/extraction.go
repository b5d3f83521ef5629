package entity

// ExtractionHeader is the top-of-document metadata produced by the extractor:
// parties, dates and totals, as opposed to line items. All fields are raw
// strings; numeric normalization happens in the money package at a single
// boundary.
type ExtractionHeader struct {
	InvoiceNo     string `json:"invoice_no,omitempty"`
	CodeNo        string `json:"code_no,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	Reference     string `json:"reference,omitempty"`
	Date          string `json:"date,omitempty"`
	Subtotal      string `json:"subtotal,omitempty"`
	Tax           string `json:"tax,omitempty"`
	Total         string `json:"total,omitempty"`
	TaxRate       string `json:"tax_rate,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	DeliveryTerms string `json:"delivery_terms,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
	Notes         string `json:"notes,omitempty"`
	AttendedBy    string `json:"attended_by,omitempty"`
	KindAttention string `json:"kind_attention,omitempty"`
	SellerName    string `json:"seller_name,omitempty"`
	SellerAddress string `json:"seller_address,omitempty"`
	SellerPhone   string `json:"seller_phone,omitempty"`
	SellerEmail   string `json:"seller_email,omitempty"`
	SellerTaxID   string `json:"seller_tax_id,omitempty"`
	SellerVATReg  string `json:"seller_vat_reg,omitempty"`
}

// RawLineItem is a single extracted line before aggregation. Qty, Rate and
// Value arrive as raw strings; either Rate (unit price) or Value (line total)
// may be absent.
type RawLineItem struct {
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
	ItemCode    string `json:"item_code,omitempty"`
	Qty         string `json:"qty"`
	Unit        string `json:"unit,omitempty"`
	Rate        string `json:"rate,omitempty"`
	Value       string `json:"value,omitempty"`
}

// ExtractionResult is the ephemeral output of the document extractor. It is
// never persisted directly; on failure it still carries whatever partial data
// was recovered so the caller can offer manual completion.
type ExtractionResult struct {
	Success bool             `json:"success"`
	Header  ExtractionHeader `json:"header"`
	Items   []RawLineItem    `json:"items"`
	RawText string           `json:"raw_text,omitempty"`
	Error   string           `json:"error,omitempty"`
	Message string           `json:"message,omitempty"`
}
