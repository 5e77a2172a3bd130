package domain

// Store-owned document fields. They cannot be declared as model properties;
// the normalizer passes them through untouched.
const (
	MetaField = "meta"
	IDField   = "$id"
)

type Document map[string]any

func IsReservedField(name string) bool {
	return name == MetaField || name == IDField
}

// ID returns the store-assigned row identity, or 0 if the document has not
// been persisted yet.
func (d Document) ID() int64 {
	switch v := d[IDField].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
