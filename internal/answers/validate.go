// Package answers provides JSON Schema validation for interview answer
// payloads. Stored answers remain opaque to the round engine; this check
// happens once at the API boundary, keyed on the question's type.
package answers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Question types recognized by the answer validator.
const (
	TypeText           = "text"
	TypeMultipleChoice = "multiple_choice"
	TypeScale          = "scale"
	TypeBoolean        = "boolean"
)

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
	sb.WriteString("answer validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// BuildSchema returns the JSON Schema document for answers to a question of
// the given type. Multiple-choice schemas enumerate the question's options.
func BuildSchema(questionType string, options []string) (string, error) {
	switch questionType {
	case TypeText:
		return `{"type": "string", "minLength": 1}`, nil
	case TypeBoolean:
		return `{"type": "boolean"}`, nil
	case TypeScale:
		return `{"type": "integer", "minimum": 1, "maximum": 10}`, nil
	case TypeMultipleChoice:
		if len(options) == 0 {
			return "", fmt.Errorf("multiple_choice question has no options")
		}
		enum, err := json.Marshal(options)
		if err != nil {
			return "", fmt.Errorf("failed to marshal options: %w", err)
		}
		return fmt.Sprintf(`{"enum": %s}`, enum), nil
	default:
		return "", fmt.Errorf("unknown question type: %q", questionType)
	}
}

// ValidateAnswer checks an answer payload against the schema for its
// question type. A schema mismatch returns *ValidationError; anything else
// (bad type, malformed payload) returns a plain error.
func ValidateAnswer(questionType string, options []string, payload json.RawMessage) error {
	schema, err := BuildSchema(questionType, options)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to validate answer: %w", err)
	}

	if !result.Valid() {
		ve := &ValidationError{}
		for _, desc := range result.Errors() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   desc.Field(),
				Message: desc.Description(),
			})
		}
		return ve
	}
	return nil
}
