// Package validation checks datastore responses against JSON schemas before
// they are decoded into report types.
package validation

import (
	"fmt"
	"strings"

	apperrors "soc-dashboard/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Validator holds a compiled schema for one report's datastore response.
type Validator struct {
	report string
	schema *gojsonschema.Schema
}

// CountSchema describes a _count response.
func CountSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"count"},
		"properties": map[string]interface{}{
			"count": map[string]interface{}{
				"type":    "integer",
				"minimum": 0,
			},
		},
	}
}

// AggregationSchema describes a _search response carrying
// aggregations.<name>.buckets.
func AggregationSchema(name string) map[string]interface{} {
	bucket := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"key", "doc_count"},
		"properties": map[string]interface{}{
			"key_as_string": map[string]interface{}{"type": "string"},
			"doc_count": map[string]interface{}{
				"type":    "integer",
				"minimum": 0,
			},
		},
	}

	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"aggregations"},
		"properties": map[string]interface{}{
			"aggregations": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{name},
				"properties": map[string]interface{}{
					name: map[string]interface{}{
						"type":     "object",
						"required": []interface{}{"buckets"},
						"properties": map[string]interface{}{
							"buckets": map[string]interface{}{
								"type":  "array",
								"items": bucket,
							},
						},
					},
				},
			},
		},
	}
}

// NewValidator compiles schemaMap. report names the report in ShapeErrors.
func NewValidator(report string, schemaMap map[string]interface{}) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", report, err)
	}
	return &Validator{report: report, schema: schema}, nil
}

// MustValidator is NewValidator for schemas fixed at compile time.
func MustValidator(report string, schemaMap map[string]interface{}) *Validator {
	v, err := NewValidator(report, schemaMap)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns a ShapeError when body is not JSON or does not match the schema.
func (v *Validator) Validate(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.NewShapeError(v.report, fmt.Sprintf("invalid json: %v", err))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewShapeError(v.report, strings.Join(errs, "; "))
	}

	return nil
}
