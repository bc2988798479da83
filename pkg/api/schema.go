package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Agent-generated payloads are the least trustworthy input the client
// receives: the backend forwards LLM output with light server-side
// checking. Validate them against a schema before they reach the entity
// store.

const generatedTasksSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title"],
    "properties": {
      "id":       {"type": "string"},
      "title":    {"type": "string", "minLength": 1},
      "status":   {"type": "string", "enum": ["todo", "inprogress", "completed"]},
      "priority": {"type": "string", "enum": ["low", "medium", "high"]},
      "due_date": {"type": ["string", "null"]}
    }
  }
}`

const parsedMemberSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "id":         {"type": "string"},
    "name":       {"type": "string", "minLength": 1},
    "email":      {"type": "string"},
    "phone":      {"type": "string"},
    "tech_stack": {"type": "array", "items": {"type": "string"}}
  }
}`

func validateAgainst(schema string, payload []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedShape, strings.Join(msgs, "; "))
}

// validateGeneratedTasks checks a bulk-generation payload before decode.
func validateGeneratedTasks(payload []byte) error {
	return validateAgainst(generatedTasksSchema, payload)
}

// validateParsedMember checks a resume-parse payload before decode.
func validateParsedMember(payload []byte) error {
	return validateAgainst(parsedMemberSchema, payload)
}
