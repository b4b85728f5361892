package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/victoedr/idcard-verifier/constants"
)

// BuildDriverJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Import rows are validated against it before touching the
// database. IDs are assigned by the store, so an "id" key is rejected.
func BuildDriverJSONSchema() map[string]any {
	props := map[string]any{
		"license_number": map[string]any{
			"type":      "string",
			"minLength": 6,
			"maxLength": 12,
			"pattern":   `^[A-Za-z0-9]+$`,
		},
		"first_name":    map[string]any{"type": "string"},
		"last_name":     map[string]any{"type": "string", "minLength": 1},
		"date_of_birth": dateProp(),
		"issue_date":    dateProp(),
		"expiry_date":   dateProp(),
		"address":       map[string]any{"type": "string"},
		"license_class": map[string]any{"type": "string"},
		"status": map[string]any{
			"type": "string",
			"enum": constants.LicenseStatuses(),
		},
	}
	required := []string{"license_number", "last_name"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func dateProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}

// compileSchema turns a schema map into a compiled validator.
func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateAgainstSchema validates raw JSON bytes against a compiled schema.
func validateAgainstSchema(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
