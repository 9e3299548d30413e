// internal/server/schema.go
package server

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// submitSchema validates the dispatch submit payload before any domain code
// runs. The recipient cap here mirrors the resolver's hard limit.
var submitSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"channel", "recipients"},
	"properties": map[string]interface{}{
		"channel": map[string]interface{}{
			"type": "string",
			"enum": []string{"email", "chat", "mms"},
		},
		"subject": map[string]interface{}{"type": "string"},
		"body":    map[string]interface{}{"type": "string"},
		"html":    map[string]interface{}{"type": "string"},
		"recipients": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"maxItems": 500,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"name"},
				"properties": map[string]interface{}{
					"name":  map[string]interface{}{"type": "string"},
					"email": map[string]interface{}{"type": "string"},
					"phone": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}

func validateSubmitPayload(payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(submitSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}
	return nil
}
