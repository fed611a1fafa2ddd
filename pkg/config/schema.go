package config

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// publishConfigSchema validates the shape of the loaded document before
// unmarshalling, so operators get field-level messages instead of a
// mapstructure type error.
const publishConfigSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "scrub_rules": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "find": {"type": "string", "minLength": 1},
          "replace": {"type": "string"}
        },
        "required": ["find", "replace"],
        "additionalProperties": false
      }
    },
    "exclude_paths": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "reset_to_templates": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "validation_blocklist": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "remote": {"type": "string", "minLength": 1},
    "branch": {"type": "string", "minLength": 1},
    "markers": {
      "type": "object",
      "properties": {
        "begin": {"type": "string", "minLength": 1},
        "end": {"type": "string", "minLength": 1}
      },
      "additionalProperties": false
    },
    "template_catalog": {"type": "string"},
    "project": {"type": "string"}
  },
  "required": ["remote", "branch"],
  "additionalProperties": false
}`

// validateSchema checks the raw settings map against the embedded schema.
func validateSchema(settings map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(publishConfigSchema)
	documentLoader := gojsonschema.NewGoLoader(settings)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &Error{Reason: "schema validation error", Err: err}
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return &Error{Reason: "config does not match schema:\n" + strings.Join(problems, "\n")}
	}
	return nil
}
