package domain

// CloneDocument deep-copies a document. Nested maps and slices are copied;
// scalars and time.Time values are immutable and shared.
func CloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Document:
		return CloneDocument(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, nested := range v {
			out[k] = cloneValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return value
	}
}
