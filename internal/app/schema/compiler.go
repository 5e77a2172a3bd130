package schema

import (
	"fmt"
	"strings"

	"github.com/shapedb/shapedb/internal/domain"
)

// CompileRule resolves a property declaration into its runtime rule. An
// unset coercion resolves to Any.
func CompileRule(decl domain.RuleDecl) domain.PropertyRule {
	rule := domain.PropertyRule{
		Coerce:  decl.Type,
		NotNull: decl.NotNull,
		Default: decl.Default,
		Unique:  decl.Unique,
	}
	if rule.Coerce.IsZero() {
		rule.Coerce = domain.Any
	}
	return rule
}

// CompileModel validates a declaration and compiles it into a model
// definition. Property order, defaults and unique constraints are all fixed
// here; nothing about the declaration is consulted again at write time.
func CompileModel(name string, decl domain.Declaration, opts domain.ModelOptions) (domain.ModelDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ModelDefinition{}, ErrModelNameRequired
	}
	if !domain.IsValidModelName(name) {
		return domain.ModelDefinition{}, fmt.Errorf("%w: %s", ErrInvalidModelName, name)
	}
	if err := decl.Validate(); err != nil {
		return domain.ModelDefinition{}, fmt.Errorf("compile model %s: %w", name, err)
	}

	def := domain.ModelDefinition{
		Name:   name,
		Order:  make([]string, 0, len(decl)),
		Rules:  make(map[string]domain.PropertyRule, len(decl)),
		Strict: !opts.AllowExtra,
	}

	defaults := make(domain.Document)
	for _, prop := range decl {
		rule := CompileRule(prop.Rule)
		def.Order = append(def.Order, prop.Name)
		def.Rules[prop.Name] = rule
		if rule.Default != nil {
			defaults[prop.Name] = rule.Default
		}
		if rule.Unique {
			def.Unique = append(def.Unique, prop.Name)
		}
	}
	if len(defaults) > 0 {
		def.Defaults = defaults
	}

	return def, nil
}
