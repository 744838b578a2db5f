package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is embedded in the prompt and used locally to validate responses.
func BuildInvoiceJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"quantity": map[string]any{"type": "integer", "minimum": 1},
			"price":    map[string]any{"type": "number", "minimum": 0},
			"total":    map[string]any{"type": "number", "minimum": 0},
			"code":     map[string]any{"type": "string"},
			"unit":     map[string]any{"type": "string"},
		},
		"required": []string{"name", "quantity", "price"},
	}

	invoice := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"number":                         stringProp(),
			"date":                           stringProp(),
			"totalAmount":                    map[string]any{"type": "number", "minimum": 0},
			"totalAmountInSecondaryCurrency": map[string]any{"type": "number", "minimum": 0},
			"currency":                       map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"vat":                            stringProp(),
			"seller":                         stringProp(),
			"buyer":                          stringProp(),
		},
	}

	bank := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"bankName":         stringProp(),
			"accountNumber":    stringProp(),
			"swift":            map[string]any{"type": "string", "pattern": `^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`},
			"recipientName":    stringProp(),
			"recipientAddress": stringProp(),
			"transferCurrency": stringProp(),
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"items":       map[string]any{"type": "array", "items": item},
			"invoiceInfo": invoice,
			"bankInfo":    bank,
		},
		"required": []string{"items"},
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}
