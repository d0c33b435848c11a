// Package schemas provides JSON Schema validation for persisted documents.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume_store.schema.json
var resumeStoreSchema []byte

// ResumeStoreSchema returns the JSON Schema of a per-account resume store file.
func ResumeStoreSchema() []byte {
	return resumeStoreSchema
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema or document
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateResumeStore validates the raw bytes of a resume store file.
func ValidateResumeStore(document []byte) error {
	return ValidateBytes("resume_store", resumeStoreSchema, document)
}

// ValidateBytes validates a JSON document against a JSON Schema, both given as bytes.
func ValidateBytes(name string, schema, document []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		// Malformed JSON in either input surfaces here rather than as a result error
		return &SchemaLoadError{
			Name:    name,
			Message: "validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
