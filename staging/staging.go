// Package staging implements the Fact Staging stage: it receives a raw
// per-filing fact-stream document, validates it against the canonical JSON
// Schema, and decodes it into the domain's RawFiling shape for the
// Normalizer and Warehouse Loader to consume.
package staging

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"finsight/models"
)

//go:embed schema.json
var schemaFS embed.FS

var schemaLoader gojsonschema.JSONLoader

func init() {
	raw, err := schemaFS.ReadFile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("staging: embedded schema missing: %v", err))
	}
	schemaLoader = gojsonschema.NewBytesLoader(raw)
}

// ValidationError wraps one or more schema violations found in a fact
// stream document.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fact stream failed schema validation: %d violation(s)", len(e.Violations))
}

// Parse validates raw against the bundled canonical fact-stream schema and,
// if valid, decodes it into a RawFiling. A schema violation is returned as
// *ValidationError; the caller rejects the filing without touching the
// database (malformed input never reaches the Warehouse Loader).
func Parse(raw []byte) (*models.RawFiling, error) {
	documentLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			violations = append(violations, e.String())
		}
		return nil, &ValidationError{Violations: violations}
	}

	var filing models.RawFiling
	if err := json.Unmarshal(raw, &filing); err != nil {
		return nil, fmt.Errorf("failed to decode fact stream: %w", err)
	}
	return &filing, nil
}
