// Package schema embeds the JSON Schema for the processing result
// contract and validates marshaled results against it. The contract is
// stable: downstream exporters and DB mappers consume it as-is.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/result.json
var schemaFS embed.FS

const resultSchemaPath = "schemas/result.json"

var (
	compileOnce  sync.Once
	resultSchema *jsonschema.Schema
	compileErr   error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile(resultSchemaPath)
		if err != nil {
			compileErr = fmt.Errorf("read embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("result.json", bytes.NewReader(data)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		resultSchema, compileErr = c.Compile("result.json")
	})
	return resultSchema, compileErr
}

// ValidateResult checks a marshaled ProcessingResult against the embedded
// contract schema.
func ValidateResult(data []byte) error {
	s, err := compiled()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("result is not valid JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("result violates contract: %w", err)
	}
	return nil
}
