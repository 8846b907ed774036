package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchema pairs a compiled schema with the definition it came from,
// so a schema name reused with a new definition is recompiled.
type compiledSchema struct {
	source string
	schema *jsonschema.Schema
}

var (
	schemasMu sync.Mutex
	schemas   = map[string]compiledSchema{}
)

// validateResponse checks a reply against schema. A nil schema accepts
// anything; failures are *ErrInvalidResponse carrying the raw reply.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid("not JSON: %w", err)
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return invalid("schema %s: %w", schema.Name, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid("does not match %s: %w", schema.Name, err)
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	src, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}

	schemasMu.Lock()
	defer schemasMu.Unlock()
	if c, ok := schemas[schema.Name]; ok && c.source == string(src) {
		return c.schema, nil
	}

	// The compiler wants decoded JSON, not the Go map with typed values.
	var def any
	if err := json.Unmarshal(src, &def); err != nil {
		return nil, err
	}
	url := "mem:///" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	schemas[schema.Name] = compiledSchema{source: string(src), schema: compiled}
	return compiled, nil
}
