package ai

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validatePayload validates the raw generated JSON against the question-set
// schema. Returns *InvalidPayloadError on any shape violation so the gate
// can classify it as an API failure.
func validatePayload(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &InvalidPayloadError{Reason: "not valid JSON", cause: err}
	}

	sch, err := compiledQuestionSetSchema()
	if err != nil {
		return fmt.Errorf("compile question set schema: %w", err)
	}

	if err := sch.Validate(parsed); err != nil {
		return &InvalidPayloadError{Reason: "schema validation failed", cause: err}
	}
	return nil
}

func compiledQuestionSetSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw bytes.
		defBytes, err := json.Marshal(questionSetSchema)
		if err != nil {
			compileErr = err
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = err
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://question-set.json"
		if err := c.AddResource(url, defParsed); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	return compiledSchema, compileErr
}
