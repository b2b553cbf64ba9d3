// internal/loader/schema.go
package loader

import (
	"github.com/xeipuuv/gojsonschema"

	apperrors "dialog-analyzer/internal/common/errors"
)

// intentRecordSchema describes the structural expectations of one intent
// record. Violations are counted and reported, never fatal: the analyzer
// keeps every parseable object so the validator can name the defects.
const intentRecordSchema = `{
	"type": "object",
	"properties": {
		"intent_id":   {"type": "string"},
		"title":       {"type": ["string", "null"]},
		"record_type": {"type": ["string", "null"]},
		"symbol_code": {"type": ["string", "null"]},
		"topics":      {"type": ["array", "null"]},
		"inputs": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"questions": {
						"type": ["array", "null"],
						"items": {
							"type": "object",
							"properties": {"sentence": {"type": "string"}}
						}
					}
				}
			}
		},
		"answers": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"answer":      {"type": ["string", "null"]},
					"redirect_to": {"type": ["string", "null"]},
					"actions":     {"type": ["array", "null"]},
					"buttons":     {"type": ["array", "null"]}
				}
			}
		},
		"slot_fillers":    {"type": ["array", "null"]},
		"redirect_to":     {"type": ["string", "null"]},
		"fallback_intent": {"type": ["string", "null"]},
		"version":         {"type": ["integer", "null"]}
	},
	"required": ["intent_id"]
}`

type recordSchema struct {
	schema *gojsonschema.Schema
}

func newRecordSchema() (*recordSchema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(intentRecordSchema))
	if err != nil {
		return nil, apperrors.NewSchemaCompileFailedError(err)
	}
	return &recordSchema{schema: schema}, nil
}

// check validates one raw record. It returns the violation messages; an
// empty slice means the record is structurally clean.
func (s *recordSchema) check(raw []byte) []string {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return msgs
}
