package domain

import "fmt"

// RuleDecl is the full form of a property declaration. The zero value
// declares a nullable Any property with no default.
type RuleDecl struct {
	Type    Coercion
	NotNull bool
	Default any
	Unique  bool
}

// PropertyDecl declares one model property.
type PropertyDecl struct {
	Name string
	Rule RuleDecl
}

// Declaration is an ordered list of property declarations. Order survives
// compilation and drives normalization and constraint checks.
type Declaration []PropertyDecl

// Typed declares a property that only coerces values: nullable, no default.
func Typed(name string, c Coercion) PropertyDecl {
	return PropertyDecl{Name: name, Rule: RuleDecl{Type: c}}
}

func (d Declaration) Validate() error {
	seen := make(map[string]struct{}, len(d))
	for _, prop := range d {
		if prop.Name == "" {
			return ErrPropertyNameRequired
		}
		if IsReservedField(prop.Name) {
			return fmt.Errorf("property %q: %w", prop.Name, ErrReservedProperty)
		}
		if _, dup := seen[prop.Name]; dup {
			return fmt.Errorf("property %q: %w", prop.Name, ErrDuplicateProperty)
		}
		seen[prop.Name] = struct{}{}
	}
	return nil
}
