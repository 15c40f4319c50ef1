package llm

import "unicode/utf8"

// Prompt builders for the three target schemas. Each prompt names every field,
// its type, and its null-ability, and the system message forbids prose and
// markdown so the response parses as bare JSON.

const (
	// MaxPromptChars is the input budget; document text beyond it is silently
	// dropped before submission.
	MaxPromptChars = 15000

	maxTokensDocument   = 4000
	maxTokensMilestones = 2000
)

const systemPromptObject = "You are a document extraction assistant. Always respond with valid JSON only. No explanations or markdown."

const systemPromptArray = "You are a document extraction assistant. Always respond with valid JSON array only. No explanations or markdown."

// Truncate enforces the prompt byte budget, backing up so a multi-byte rune is
// never split.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func BuildPurchaseOrderPrompt(text string) string {
	return `Analyze this Purchase Order document and extract structured data.
Return a JSON object with these fields (use null for missing values):

{
    "po_number": "string or null",
    "vendor_name": "string or null",
    "date": "YYYY-MM-DD or null",
    "total_value": number or null,
    "currency": "3-letter code like USD, EUR, KES or null",
    "scope": "brief description of work scope or null",
    "payment_terms": "e.g., Net 30, 50% advance or null",
    "incoterms": "e.g., FOB, CIF, EXW or null",
    "retention_percentage": number (0-100) or null,
    "milestones": [
        {
            "title": "string",
            "description": "string or null",
            "expected_date": "YYYY-MM-DD or null",
            "payment_percentage": number
        }
    ],
    "boq_items": [
        {
            "item_number": "string",
            "description": "string",
            "unit": "string",
            "quantity": number,
            "unit_price": number,
            "total_price": number
        }
    ],
    "confidence": number between 0 and 1
}

Document text:
` + Truncate(text, MaxPromptChars) + "\n"
}

func BuildInvoicePrompt(text string) string {
	return `Analyze this Invoice document and extract structured data.
Return a JSON object with these fields (use null for missing values):

{
    "invoice_number": "string or null",
    "vendor_name": "string or null",
    "date": "YYYY-MM-DD or null",
    "due_date": "YYYY-MM-DD or null",
    "total_amount": number or null,
    "currency": "3-letter code or null",
    "subtotal": number or null,
    "tax_amount": number or null,
    "line_items": [
        {
            "description": "string",
            "quantity": number or null,
            "unit_price": number or null,
            "amount": number
        }
    ],
    "confidence": number between 0 and 1
}

Document text:
` + Truncate(text, MaxPromptChars) + "\n"
}

func BuildMilestonesPrompt(text string) string {
	return `Extract payment milestones from this document.
Return a JSON array of milestones:

[
    {
        "title": "string",
        "description": "string or null",
        "expected_date": "YYYY-MM-DD or null",
        "payment_percentage": number (should sum to 100)
    }
]

Document text:
` + Truncate(text, MaxPromptChars) + "\n"
}
