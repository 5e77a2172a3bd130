package snapshot

import (
	"time"

	"github.com/shapedb/shapedb/internal/domain"
)

// Runtime carries the live, non-persistable parts of a database at save
// time. They are written into the raw tree so the filter can strip them the
// same way every time, whatever their current state.
type Runtime struct {
	AutosaveHandle     any
	PersistenceAdapter any
	ThrottledSaves     bool
	Models             any
	TypeTable          any
	Constraints        map[string]any
	TTL                map[string]any
}

// Assemble builds the serializable tree for a database image and runs the
// filter over it. The result is safe to hand to any codec.
func Assemble(state domain.DatabaseState, rt Runtime) map[string]any {
	collections := make([]any, 0, len(state.Collections))
	for _, c := range state.Collections {
		data := make([]any, 0, len(c.Docs))
		for _, doc := range c.Docs {
			data = append(data, map[string]any(doc))
		}
		unique := make([]any, 0, len(c.Unique))
		for _, name := range c.Unique {
			unique = append(unique, name)
		}
		collections = append(collections, map[string]any{
			"name":         c.Name,
			"data":         data,
			"maxId":        c.MaxID,
			"uniqueNames":  unique,
			"trackChanges": c.TrackChanges,
			"constraints":  rt.Constraints[c.Name],
			"ttl":          rt.TTL[c.Name],
		})
	}

	tree := map[string]any{
		"name":               state.Header.Name,
		"snapshotVersion":    state.Header.Version,
		"savedAt":            state.Header.SavedAt.UTC().Format(time.RFC3339Nano),
		"collections":        collections,
		"autosaveHandle":     rt.AutosaveHandle,
		"persistenceAdapter": rt.PersistenceAdapter,
		"throttledSaves":     rt.ThrottledSaves,
		"models":             rt.Models,
		"typeTable":          rt.TypeTable,
	}

	return FilterTree(tree)
}

// Parse rebuilds a database image from a decoded tree. Numeric identity
// fields land as float64 after a JSON decode and are widened back to int64
// here.
func Parse(tree map[string]any) (domain.DatabaseState, error) {
	header := domain.SnapshotHeader{}
	header.Name, _ = tree["name"].(string)
	header.Version = int(asInt64(tree["snapshotVersion"]))
	if s, ok := tree["savedAt"].(string); ok {
		if at, err := time.Parse(time.RFC3339Nano, s); err == nil {
			header.SavedAt = at.UTC()
		}
	}

	state := domain.DatabaseState{Header: header.WithDefaults()}

	rawCollections, ok := tree["collections"].([]any)
	if !ok && tree["collections"] != nil {
		return domain.DatabaseState{}, ErrMalformedSnapshot
	}
	for _, raw := range rawCollections {
		entry, ok := raw.(map[string]any)
		if !ok {
			return domain.DatabaseState{}, ErrMalformedSnapshot
		}

		c := domain.CollectionState{MaxID: asInt64(entry["maxId"])}
		if c.Name, ok = entry["name"].(string); !ok || c.Name == "" {
			return domain.DatabaseState{}, ErrMalformedSnapshot
		}
		c.TrackChanges, _ = entry["trackChanges"].(bool)
		if unique, ok := entry["uniqueNames"].([]any); ok {
			for _, u := range unique {
				if name, ok := u.(string); ok {
					c.Unique = append(c.Unique, name)
				}
			}
		}
		if data, ok := entry["data"].([]any); ok {
			c.Docs = make([]domain.Document, 0, len(data))
			for _, rawDoc := range data {
				fields, ok := rawDoc.(map[string]any)
				if !ok {
					return domain.DatabaseState{}, ErrMalformedSnapshot
				}
				c.Docs = append(c.Docs, restoreDoc(fields))
			}
		}

		state.Collections = append(state.Collections, c)
	}

	return state, nil
}

func restoreDoc(fields map[string]any) domain.Document {
	doc := domain.Document(fields)
	if id, ok := doc[domain.IDField]; ok {
		doc[domain.IDField] = asInt64(id)
	}
	if meta, ok := doc[domain.MetaField].(map[string]any); ok {
		for _, key := range []string{"created", "revision", "updated", "version"} {
			if v, ok := meta[key]; ok {
				meta[key] = asInt64(v)
			}
		}
	}
	return doc
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
