package constants

// DocumentType selects the target schema for structured extraction.
type DocumentType string

const (
	PurchaseOrder DocumentType = "purchase_order"
	Invoice       DocumentType = "invoice"
	Milestone     DocumentType = "milestone"
)

// ParseDocumentType validates a wire-level document type string.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case PurchaseOrder, Invoice, Milestone:
		return DocumentType(s), true
	}
	return "", false
}
