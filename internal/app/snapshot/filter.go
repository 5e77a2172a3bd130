package snapshot

// Runtime-only keys. Handles and live state never survive serialization:
// the first group is written as null so the keys stay visible in the output,
// the second group disappears entirely.
var nulledKeys = map[string]struct{}{
	"autosaveHandle":     {},
	"persistenceAdapter": {},
	"constraints":        {},
	"ttl":                {},
}

var omittedKeys = map[string]struct{}{
	"models":         {},
	"typeTable":      {},
	"throttledSaves": {},
}

// Filter decides what happens to one (key, value) pair before encoding. The
// second return is false when the key must be left out of the output.
func Filter(key string, value any) (any, bool) {
	if _, ok := nulledKeys[key]; ok {
		return nil, true
	}
	if _, ok := omittedKeys[key]; ok {
		return nil, false
	}
	return value, true
}

// FilterTree applies Filter to every map entry in tree, recursing through
// nested maps and slices.
func FilterTree(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		filtered, keep := Filter(key, value)
		if !keep {
			continue
		}
		out[key] = filterValue(filtered)
	}
	return out
}

func filterValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return FilterTree(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = filterValue(item)
		}
		return out
	default:
		return value
	}
}
