// Package schemas validates API payloads against the JSON Schema documents
// shipped in the top-level schemas directory.
package schemas

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CommonSchema holds the shared definitions referenced by the other schemas.
const CommonSchema = "common.schema.json"

const schemaSuffix = ".schema.json"

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Registry holds compiled schemas keyed by file name.
type Registry struct {
	schemas map[string]*gojsonschema.Schema
}

// Load compiles every *.schema.json in fsys. The common schema is registered
// first so the others can reference its definitions by $id.
func Load(fsys fs.FS) (*Registry, error) {
	names, err := fs.Glob(fsys, "*"+schemaSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	sort.Strings(names)

	var common []byte
	if data, err := fs.ReadFile(fsys, CommonSchema); err == nil {
		common = data
	}

	r := &Registry{schemas: make(map[string]*gojsonschema.Schema, len(names))}
	for _, name := range names {
		if name == CommonSchema {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "read failed", Cause: err}
		}

		sl := gojsonschema.NewSchemaLoader()
		if common != nil {
			if err := sl.AddSchemas(gojsonschema.NewBytesLoader(common)); err != nil {
				return nil, &SchemaLoadError{Path: CommonSchema, Message: "invalid common schema", Cause: err}
			}
		}
		schema, err := sl.Compile(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "compile failed", Cause: err}
		}
		r.schemas[name] = schema
	}
	return r, nil
}

// Names lists the loaded schemas in lexical order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidateBytes validates a JSON document against the named schema.
func (r *Registry) ValidateBytes(name string, data []byte) error {
	schema, ok := r.schemas[name]
	if !ok {
		return &SchemaLoadError{Path: name, Message: "unknown schema"}
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to parse document for %s: %w", name, err)
	}
	return resultError(result)
}

// ValidateValue marshals v and validates it against the named schema.
func (r *Registry) ValidateValue(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", name, err)
	}
	return r.ValidateBytes(name, data)
}

// resultError converts a failed result into a ValidationError, nil when valid.
func resultError(result *gojsonschema.Result) error {
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
		// Required errors are reported on the parent object; name the missing property.
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				if field == "(root)" {
					field = prop
				} else {
					field += "." + prop
				}
			}
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
