package answers

import (
	"github.com/xeipuuv/gojsonschema"
)

// questionBankSchema validates the JSON file consumed by the seed-questions
// command before any row touches the database.
const questionBankSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text", "type", "stage"],
    "additionalProperties": false,
    "properties": {
      "text": {"type": "string", "minLength": 1},
      "type": {"enum": ["text", "multiple_choice", "scale", "boolean"]},
      "stage": {"type": "integer", "minimum": 1},
      "order": {"type": "integer", "minimum": 0},
      "required": {"type": "boolean"},
      "options": {"type": "array", "items": {"type": "string"}, "minItems": 1},
      "routing_logic": {"type": "object"},
      "round": {"type": ["integer", "null"], "minimum": 1, "maximum": 4}
    }
  }
}`

// ValidateQuestionBank checks a question bank document against the bank
// schema. Returns *ValidationError on schema mismatch.
func ValidateQuestionBank(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(questionBankSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return err
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
