package shapedbsdk

import (
	"time"

	"github.com/shapedb/shapedb/internal/app/model"
	"github.com/shapedb/shapedb/internal/domain"
)

// Property declares one model property. Type names a built-in coercion
// (any, integer, float, string, boolean, date); Coerce overrides it with
// a caller-supplied function when set.
type Property struct {
	Name    string
	Type    string
	Coerce  func(value any) any
	NotNull bool
	Default any
	Unique  bool
}

// CollectionConfig carries collection behavior that is independent of any
// model: extra unique constraints, TTL expiry and change tracking.
type CollectionConfig struct {
	Unique       []string
	TTL          time.Duration
	TTLInterval  time.Duration
	TrackChanges bool
}

func (c CollectionConfig) toDomain() domain.CollectionOptions {
	return domain.CollectionOptions{
		Unique:       append([]string(nil), c.Unique...),
		TTL:          c.TTL,
		TTLInterval:  c.TTLInterval,
		TrackChanges: c.TrackChanges,
	}
}

// ModelSpec declares a model: its name, ordered properties and collection
// behavior. AllowExtra keeps undeclared properties on inserted documents
// instead of dropping them.
type ModelSpec struct {
	Name       string
	Properties []Property
	AllowExtra bool
	Collection CollectionConfig
}

func (s ModelSpec) toDomain() (domain.Declaration, domain.ModelOptions, error) {
	decl := make(domain.Declaration, 0, len(s.Properties))
	for _, p := range s.Properties {
		coerce := domain.Any
		switch {
		case p.Coerce != nil:
			name := p.Type
			if name == "" {
				name = "custom"
			}
			coerce = domain.Custom(name, p.Coerce)
		case p.Type != "":
			parsed, err := domain.ParseCoercion(p.Type)
			if err != nil {
				return nil, domain.ModelOptions{}, err
			}
			coerce = parsed
		}
		decl = append(decl, domain.PropertyDecl{
			Name: p.Name,
			Rule: domain.RuleDecl{
				Type:    coerce,
				NotNull: p.NotNull,
				Default: p.Default,
				Unique:  p.Unique,
			},
		})
	}
	opts := domain.ModelOptions{
		AllowExtra: s.AllowExtra,
		Collection: s.Collection.toDomain(),
	}
	return decl, opts, nil
}

// Model is a handle on a declared model. Single-document writes are
// normalized against the model's rules; UpdateBatch is the raw path that
// skips normalization entirely.
type Model struct {
	db    *Database
	inner *model.Model
}

func (m *Model) Name() string { return m.inner.Name() }

// Insert normalizes and stores one document, returning the stored copy
// with its identity and bookkeeping fields attached.
func (m *Model) Insert(doc Document) (Document, error) {
	out, err := m.inner.Insert(doc)
	if err != nil {
		return nil, err
	}
	return out, m.db.noteWrite()
}

// InsertBatch normalizes every document before anything is stored. One
// bad document fails the whole batch.
func (m *Model) InsertBatch(docs []Document) ([]Document, error) {
	out, err := m.inner.InsertBatch(docs)
	if err != nil {
		return nil, err
	}
	return out, m.db.noteWrite()
}

// Update normalizes the document and writes it back under its existing
// identity.
func (m *Model) Update(doc Document) (Document, error) {
	out, err := m.inner.Update(doc)
	if err != nil {
		return nil, err
	}
	return out, m.db.noteWrite()
}

// UpdateBatch writes documents without normalizing them. Property rules
// do not run on this path.
func (m *Model) UpdateBatch(docs []Document) ([]Document, error) {
	out, err := m.inner.UpdateBatch(docs)
	if err != nil {
		return nil, err
	}
	return out, m.db.noteWrite()
}

// Patch applies an RFC 6902 patch to a stored document and routes the
// result through a normalized update.
func (m *Model) Patch(id int64, patch []byte) (Document, error) {
	out, err := m.inner.Patch(id, patch)
	if err != nil {
		return nil, err
	}
	return out, m.db.noteWrite()
}

func (m *Model) FindByID(id int64) (Document, bool) {
	return m.inner.FindByID(id)
}

func (m *Model) All() []Document {
	return m.inner.All()
}

func (m *Model) Count() int {
	return m.inner.Count()
}

// Collection is a raw handle on a store collection. Nothing on this path
// consults a model; documents are stored as given.
type Collection struct {
	db   *Database
	name string
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Insert(docs ...Document) ([]Document, error) {
	out, err := c.db.store.Insert(c.name, docs)
	if err != nil {
		return nil, err
	}
	return out, c.db.noteWrite()
}

func (c *Collection) Update(docs ...Document) ([]Document, error) {
	out, err := c.db.store.Update(c.name, docs)
	if err != nil {
		return nil, err
	}
	return out, c.db.noteWrite()
}

func (c *Collection) FindByID(id int64) (Document, bool) {
	return c.db.store.FindByID(c.name, id)
}

func (c *Collection) All() []Document {
	return c.db.store.All(c.name)
}

func (c *Collection) Count() int {
	return c.db.store.Count(c.name)
}
