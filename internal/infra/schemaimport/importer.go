package schemaimport

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/shapedb/shapedb/internal/domain"
)

var ErrSchemaRequired = errors.New("schema is required")
var ErrInvalidSchema = errors.New("invalid schema")

// Import is a model declaration derived from a JSON Schema document.
type Import struct {
	Name    string
	Decl    domain.Declaration
	Options domain.ModelOptions
}

type propSchema struct {
	Type    any    `json:"type"`
	Format  string `json:"format"`
	Default any    `json:"default"`
	Unique  bool   `json:"x-unique"`
}

type docSchema struct {
	Title                string   `json:"title"`
	Required             []string `json:"required"`
	AdditionalProperties any      `json:"additionalProperties"`
}

// Parse turns a JSON Schema into a declaration. Properties are read in
// their order of appearance in the document, required entries become
// not-null rules, and the x-unique extension marks unique properties.
// additionalProperties set to false makes the model strict.
func Parse(schema []byte) (Import, error) {
	schema = bytes.TrimSpace(schema)
	if len(schema) == 0 {
		return Import{}, ErrSchemaRequired
	}
	if err := compile(schema); err != nil {
		return Import{}, err
	}

	var doc docSchema
	if err := json.Unmarshal(schema, &doc); err != nil {
		return Import{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	order, props, err := orderedProperties(schema)
	if err != nil {
		return Import{}, err
	}

	required := make(map[string]struct{}, len(doc.Required))
	for _, name := range doc.Required {
		required[name] = struct{}{}
	}

	imp := Import{Name: doc.Title}
	imp.Options.AllowExtra = true
	if allowed, ok := doc.AdditionalProperties.(bool); ok && !allowed {
		imp.Options.AllowExtra = false
	}

	for _, name := range order {
		ps := props[name]
		_, notNull := required[name]
		imp.Decl = append(imp.Decl, domain.PropertyDecl{
			Name: name,
			Rule: domain.RuleDecl{
				Type:    coercionFor(ps),
				NotNull: notNull,
				Default: ps.Default,
				Unique:  ps.Unique,
			},
		})
	}

	return imp, nil
}

func compile(schema []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if _, err := compiler.Compile("schema.json"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return nil
}

// orderedProperties scans the raw document so the declaration keeps the
// author's property order, which a map decode would throw away.
func orderedProperties(schema []byte) ([]string, map[string]propSchema, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(schema))

	tok, err := dec.ReadToken()
	if err != nil || tok.Kind() != '{' {
		return nil, nil, fmt.Errorf("%w: not a schema object", ErrInvalidSchema)
	}

	var order []string
	props := make(map[string]propSchema)
	for {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		if tok.Kind() == '}' {
			return order, props, nil
		}

		if tok.String() != "properties" {
			if err := dec.SkipValue(); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
			}
			continue
		}

		tok, err = dec.ReadToken()
		if err != nil || tok.Kind() != '{' {
			return nil, nil, fmt.Errorf("%w: properties is not an object", ErrInvalidSchema)
		}
		for {
			tok, err := dec.ReadToken()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
			}
			if tok.Kind() == '}' {
				break
			}
			name := tok.String()
			raw, err := dec.ReadValue()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
			}
			var ps propSchema
			if err := json.Unmarshal(raw, &ps); err != nil {
				return nil, nil, fmt.Errorf("%w: property %s: %v", ErrInvalidSchema, name, err)
			}
			order = append(order, name)
			props[name] = ps
		}
	}
}

func coercionFor(ps propSchema) domain.Coercion {
	switch typeName(ps.Type) {
	case "integer":
		return domain.Integer
	case "number":
		return domain.Float
	case "boolean":
		return domain.Boolean
	case "string":
		if ps.Format == "date-time" || ps.Format == "date" {
			return domain.Date
		}
		return domain.String
	default:
		return domain.Any
	}
}

// typeName resolves the schema type keyword, which may be a single name or
// a list like ["string", "null"].
func typeName(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}
