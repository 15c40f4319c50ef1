package llm

// JSON-Schema maps for validating model output before decoding. The schemas
// are deliberately permissive on the scalar header fields (models omit or null
// them freely) and strict on the nested list item shapes, which downstream
// code indexes into.

func nullable(typ string) map[string]any {
	return map[string]any{"type": []string{typ, "null"}}
}

func milestoneItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":              map[string]any{"type": "string"},
			"description":        nullable("string"),
			"expected_date":      nullable("string"),
			"payment_percentage": map[string]any{"type": "number"},
		},
		"required": []string{"title", "payment_percentage"},
	}
}

// BuildPurchaseOrderSchema returns the schema for PO extraction responses.
func BuildPurchaseOrderSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"po_number":            nullable("string"),
			"vendor_name":          nullable("string"),
			"date":                 nullable("string"),
			"total_value":          nullable("number"),
			"currency":             nullable("string"),
			"scope":                nullable("string"),
			"payment_terms":        nullable("string"),
			"incoterms":            nullable("string"),
			"retention_percentage": nullable("number"),
			"milestones": map[string]any{
				"type":  "array",
				"items": milestoneItemSchema(),
			},
			"boq_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item_number": map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"unit":        map[string]any{"type": "string"},
						"quantity":    map[string]any{"type": "number"},
						"unit_price":  map[string]any{"type": "number"},
						"total_price": map[string]any{"type": "number"},
					},
					"required": []string{"description"},
				},
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
	}
}

// BuildInvoiceSchema returns the schema for invoice extraction responses.
func BuildInvoiceSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice_number": nullable("string"),
			"vendor_name":    nullable("string"),
			"date":           nullable("string"),
			"due_date":       nullable("string"),
			"total_amount":   nullable("number"),
			"currency":       nullable("string"),
			"subtotal":       nullable("number"),
			"tax_amount":     nullable("number"),
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"quantity":    nullable("number"),
						"unit_price":  nullable("number"),
						"amount":      map[string]any{"type": "number"},
					},
					"required": []string{"description"},
				},
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
	}
}

// BuildMilestonesSchema returns the schema for the bare milestone array.
func BuildMilestonesSchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": milestoneItemSchema(),
	}
}
