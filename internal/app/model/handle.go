package model

import (
	"fmt"

	"github.com/shapedb/shapedb/internal/app/normalize"
	"github.com/shapedb/shapedb/internal/domain"
)

// Model is the write front for one declared model. Inserts and single
// updates are normalized before they reach the store; batch updates go to
// the store as-is.
type Model struct {
	svc *Service
	def domain.ModelDefinition
}

func (m *Model) Name() string { return m.def.Name }

func (m *Model) Definition() domain.ModelDefinition { return m.def }

func (m *Model) Insert(doc domain.Document) (domain.Document, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	inserted, err := m.InsertBatch([]domain.Document{doc})
	if err != nil {
		return nil, err
	}
	return inserted[0], nil
}

// InsertBatch normalizes every document before anything is written. One bad
// document fails the whole batch and the collection keeps its prior state.
func (m *Model) InsertBatch(docs []domain.Document) ([]domain.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	normalized := make([]domain.Document, len(docs))
	for i, doc := range docs {
		if doc == nil {
			return nil, ErrDocumentRequired
		}
		shaped, err := normalize.Apply(m.def, doc)
		if err != nil {
			return nil, err
		}
		normalized[i] = shaped
	}
	return m.svc.store.Insert(m.def.Name, normalized)
}

// Update normalizes the document, then restores the reserved fields from
// the caller's copy so the row identity survives reshaping.
func (m *Model) Update(doc domain.Document) (domain.Document, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	shaped, err := normalize.Apply(m.def, doc)
	if err != nil {
		return nil, err
	}
	if meta, ok := doc[domain.MetaField]; ok {
		shaped[domain.MetaField] = meta
	}
	if id, ok := doc[domain.IDField]; ok {
		shaped[domain.IDField] = id
	}

	updated, err := m.svc.store.Update(m.def.Name, []domain.Document{shaped})
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// UpdateBatch forwards the documents to the store untouched. Normalization
// applies to single updates only; batch callers get raw store semantics.
func (m *Model) UpdateBatch(docs []domain.Document) ([]domain.Document, error) {
	return m.svc.store.Update(m.def.Name, docs)
}

// Patch applies an RFC 6902 patch to the stored document and routes the
// result through the normalized update path. The row identity always comes
// from the stored document, regardless of what the patch wrote.
func (m *Model) Patch(id int64, patch []byte) (domain.Document, error) {
	if len(patch) == 0 {
		return nil, ErrPatchRequired
	}
	if m.svc.codec == nil || m.svc.patcher == nil {
		return nil, ErrPatchUnsupported
	}

	current, ok := m.svc.store.FindByID(m.def.Name, id)
	if !ok {
		return nil, fmt.Errorf("model %s: id %d: %w", m.def.Name, id, ErrDocNotFound)
	}

	encoded, err := m.svc.codec.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	patched, err := m.svc.patcher.Apply(encoded, patch)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	doc, err := m.svc.codec.Unmarshal(patched)
	if err != nil {
		return nil, fmt.Errorf("decode patched document: %w", err)
	}

	doc[domain.IDField] = current[domain.IDField]
	doc[domain.MetaField] = current[domain.MetaField]
	return m.Update(doc)
}

func (m *Model) FindByID(id int64) (domain.Document, bool) {
	return m.svc.store.FindByID(m.def.Name, id)
}

func (m *Model) All() []domain.Document {
	return m.svc.store.All(m.def.Name)
}

func (m *Model) Count() int {
	return m.svc.store.Count(m.def.Name)
}
