package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const exportSchemaURL = "schema://ledger-export.json"

// exportSchema describes an exported ledger: an object of id to streak.
const exportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "propertyNames": {"minLength": 1},
  "additionalProperties": {
    "type": "integer",
    "minimum": 0,
    "maximum": 2
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(exportSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(exportSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(exportSchemaURL)
	})
	return compiledSchema, compileErr
}

// Export writes l as indented JSON with sorted keys.
func Export(w io.Writer, l Ledger) error {
	if l == nil {
		l = New()
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Import reads an exported ledger and validates it strictly. Unlike
// Decode, any invalid entry rejects the whole document.
func Import(r io.Reader) (Ledger, error) {
	inst, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return nil, fmt.Errorf("parse ledger export: %w", err)
	}

	sch, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile ledger schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid ledger export: %w", err)
	}

	obj := inst.(map[string]any)
	l := make(Ledger, len(obj))
	for id, v := range obj {
		n, err := v.(json.Number).Float64()
		if err != nil {
			return nil, fmt.Errorf("streak for %q: %w", id, err)
		}
		l[id] = int(n)
	}
	return l, nil
}
