package domain

// PropertyRule is the compiled contract for one property: how incoming
// values are coerced and which constraints apply afterwards.
type PropertyRule struct {
	Coerce  Coercion
	NotNull bool
	Default any
	Unique  bool
}

// ModelDefinition is a compiled model. Order lists the declared properties
// in declaration order; Rules is keyed by property name. Strict models drop
// undeclared properties on write.
type ModelDefinition struct {
	Name     string
	Order    []string
	Rules    map[string]PropertyRule
	Defaults Document
	Unique   []string
	Strict   bool
}

func (m ModelDefinition) Rule(name string) (PropertyRule, bool) {
	rule, ok := m.Rules[name]
	return rule, ok
}

func (m ModelDefinition) HasProperty(name string) bool {
	_, ok := m.Rules[name]
	return ok
}
