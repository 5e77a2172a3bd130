package normalize

import (
	"fmt"

	"github.com/shapedb/shapedb/internal/domain"
)

// Apply shapes one document against a compiled model. Declared properties
// are visited in declaration order: missing values take the declared
// default, the property's coercion runs, and not-null constraints are
// checked on the coerced result. Reserved fields pass through untouched.
// Undeclared properties are dropped on strict models and kept verbatim
// otherwise. The input document is never mutated.
func Apply(def domain.ModelDefinition, doc domain.Document) (domain.Document, error) {
	out := make(domain.Document, len(def.Order)+2)

	if meta, ok := doc[domain.MetaField]; ok {
		out[domain.MetaField] = meta
	}
	if id, ok := doc[domain.IDField]; ok {
		out[domain.IDField] = id
	}

	for _, name := range def.Order {
		rule := def.Rules[name]

		raw, present := doc[name]
		if !present {
			raw = def.Defaults[name]
		}

		value := rule.Coerce.Apply(raw)
		if rule.NotNull && value == nil {
			return nil, fmt.Errorf("model %s: property %q: %w", def.Name, name, ErrNotNull)
		}
		out[name] = value
	}

	if def.Strict {
		return out, nil
	}
	for key, value := range doc {
		if domain.IsReservedField(key) || def.HasProperty(key) {
			continue
		}
		out[key] = value
	}
	return out, nil
}
