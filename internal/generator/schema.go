package generator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const quizSchemaURL = "schema://quiz.json"

// quizSchema describes the shape a model response must have before it is
// decoded into a models.Quiz.
const quizSchema = `{
  "type": "object",
  "required": ["title", "quiz"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "summary": {"type": "string"},
    "key_entities": {
      "type": "object",
      "properties": {
        "people": {"$ref": "#/$defs/strings"},
        "organizations": {"$ref": "#/$defs/strings"},
        "locations": {"$ref": "#/$defs/strings"}
      }
    },
    "sections": {"$ref": "#/$defs/strings"},
    "quiz": {
      "type": "array",
      "minItems": 5,
      "maxItems": 10,
      "items": {
        "type": "object",
        "required": ["question", "options", "answer", "difficulty"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 4,
            "maxItems": 4,
            "items": {"type": "string", "minLength": 1}
          },
          "answer": {"type": "string", "minLength": 1},
          "difficulty": {"enum": ["easy", "medium", "hard"]},
          "explanation": {"type": "string"}
        }
      }
    },
    "related_topics": {
      "type": "array",
      "minItems": 3,
      "maxItems": 5,
      "items": {"type": "string"}
    }
  },
  "$defs": {
    "strings": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(quizSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(quizSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(quizSchemaURL)
	})
	return compiledSchema, compileErr
}

// validateSchema checks raw JSON against the quiz schema.
func validateSchema(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("compile quiz schema: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
