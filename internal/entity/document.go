package entity

// Milestone is one payment milestone of a contract schedule.
// Percentages are reported as given (conventionally 0-100); summing to 100 is a
// downstream business rule, not enforced here.
type Milestone struct {
	Title             string  `json:"title"`
	Description       *string `json:"description"`
	ExpectedDate      *string `json:"expected_date"` // YYYY-MM-DD
	PaymentPercentage float64 `json:"payment_percentage"`
}

// BOQItem is a bill-of-quantities line. total_price is taken as reported, never
// re-derived from quantity x unit_price.
type BOQItem struct {
	ItemNumber  string  `json:"item_number"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// LineItem is an invoice line.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Amount      float64  `json:"amount"`
}

// PurchaseOrder is the structured form of a PO document. Scalar fields are
// pointers so a missing value serializes as null, matching the extraction
// contract. Confidence is the model's self-report, advisory only.
type PurchaseOrder struct {
	PONumber            *string     `json:"po_number"`
	VendorName          *string     `json:"vendor_name"`
	Date                *string     `json:"date"` // YYYY-MM-DD
	TotalValue          *float64    `json:"total_value"`
	Currency            *string     `json:"currency"` // free-form 3-letter code
	Scope               *string     `json:"scope"`
	PaymentTerms        *string     `json:"payment_terms"`
	Incoterms           *string     `json:"incoterms"`
	RetentionPercentage *float64    `json:"retention_percentage"`
	Milestones          []Milestone `json:"milestones"`
	BOQItems            []BOQItem   `json:"boq_items"`
	Confidence          float64     `json:"confidence"`
	RawText             string      `json:"raw_text,omitempty"`
}

// Invoice is the structured form of an invoice document.
type Invoice struct {
	InvoiceNumber *string    `json:"invoice_number"`
	VendorName    *string    `json:"vendor_name"`
	Date          *string    `json:"date"`
	DueDate       *string    `json:"due_date"`
	TotalAmount   *float64   `json:"total_amount"`
	Currency      *string    `json:"currency"`
	Subtotal      *float64   `json:"subtotal"`
	TaxAmount     *float64   `json:"tax_amount"`
	LineItems     []LineItem `json:"line_items"`
	Confidence    float64    `json:"confidence"`
	RawText       string     `json:"raw_text,omitempty"`
}

// MilestoneList wraps a bare milestone array for the milestone entry points.
type MilestoneList struct {
	Milestones []Milestone `json:"milestones"`
	RawText    string      `json:"raw_text,omitempty"`
}

// EmptyPurchaseOrder is the null-filled fallback shape returned when the model
// response cannot be parsed.
func EmptyPurchaseOrder() PurchaseOrder {
	return PurchaseOrder{
		Milestones: []Milestone{},
		BOQItems:   []BOQItem{},
	}
}

// EmptyInvoice is the null-filled fallback shape for invoices.
func EmptyInvoice() Invoice {
	return Invoice{
		LineItems: []LineItem{},
	}
}
