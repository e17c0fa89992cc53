package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func nullable(typ string) map[string]any {
	return map[string]any{"type": []string{typ, "null"}}
}

func entrySchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"code", "description", "bucket"},
		"properties": map[string]any{
			"code":        map[string]any{"type": "string", "pattern": `^Q\d+$`},
			"description": map[string]any{"type": "string"},
			"bucket":      map[string]any{"enum": []string{"accept", "review", "object", "unknown"}},
			"alert_level": map[string]any{"enum": []string{"MEDIUM", "HIGH", "CRITICAL"}},
			"notes":       map[string]any{"type": "string"},
		},
	}
}

func entries() map[string]any {
	return map[string]any{"type": "array", "items": entrySchema()}
}

// Schema is the output contract as a JSON schema document.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"required": []string{
			"production_order", "revision", "part_number", "quantity", "dock_date",
			"payment_terms", "payment_terms_non_standard_flag", "vendor_name",
			"vendor_non_tek_flag", "buyer_name", "dpas_ratings", "quality_clauses",
			"quality_clauses_analysis",
		},
		"properties": map[string]any{
			"production_order": nullable("string"),
			"revision": map[string]any{
				"type":      []string{"string", "null"},
				"maxLength": 2,
			},
			"part_number":            nullable("string"),
			"part_number_validation": nullable("object"),
			"quantity": map[string]any{
				"type":    []string{"integer", "null"},
				"minimum": 1,
				"maximum": 2000,
			},
			"dock_date": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": `^\d{2}/\d{2}/\d{4}$`,
			},
			"payment_terms":                   nullable("string"),
			"payment_terms_non_standard_flag": map[string]any{"type": "boolean"},
			"vendor_name":                     nullable("string"),
			"vendor_non_tek_flag":             map[string]any{"type": "boolean"},
			"buyer_name":                      nullable("string"),
			"dpas_ratings": map[string]any{
				"type":        []string{"array", "null"},
				"items":       map[string]any{"type": "string", "pattern": `^D[OX][AC]\d+$`},
				"uniqueItems": true,
			},
			"quality_clauses": map[string]any{
				"type":                 []string{"object", "null"},
				"additionalProperties": map[string]any{"type": "string"},
			},
			"quality_clauses_analysis": map[string]any{
				"type": "object",
				"required": []string{
					"total_clauses", "accept_clauses", "review_clauses", "object_clauses",
					"unknown_clauses", "timesheet_impact", "action_required", "summary",
				},
				"properties": map[string]any{
					"total_clauses":    map[string]any{"type": "integer", "minimum": 0},
					"accept_clauses":   entries(),
					"review_clauses":   entries(),
					"object_clauses":   entries(),
					"unknown_clauses":  entries(),
					"timesheet_impact": map[string]any{"enum": []string{"NONE", "MEDIUM", "HIGH"}},
					"action_required":  map[string]any{"type": "boolean"},
					"summary":          map[string]any{"type": "string"},
				},
			},
			"purchase_order_number": nullable("string"),
			"page_count":            nullable("integer"),
			"extraction_strategies": map[string]any{
				"type":                 []string{"object", "null"},
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
	}
}

var (
	compiledOnce sync.Once
	compiled     *jsonschema.Schema
	compileErr   error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		b, err := json.Marshal(Schema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("record.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateJSON checks serialized record JSON against Schema.
func ValidateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Validate serializes r and checks it against Schema.
func Validate(r *Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return ValidateJSON(b)
}
