package memstore

import (
	"fmt"
	"time"

	"github.com/shapedb/shapedb/internal/domain"
)

// Collection holds documents in insertion order. Every document that
// crosses the collection boundary is deep-copied, so callers can never
// reach live store state through a returned value.
type Collection struct {
	store *Store
	name  string
	opts  domain.CollectionOptions

	docs    []domain.Document
	byID    map[int64]int
	unique  map[string]map[any]int64
	maxID   int64
	changes []domain.Change
}

func newCollection(store *Store, name string, opts domain.CollectionOptions) *Collection {
	c := &Collection{
		store:  store,
		name:   name,
		opts:   opts,
		byID:   make(map[int64]int),
		unique: make(map[string]map[any]int64, len(opts.Unique)),
	}
	for _, prop := range opts.Unique {
		c.unique[prop] = make(map[any]int64)
	}
	return c
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Options() domain.CollectionOptions { return c.opts }

// Insert assigns ids and meta to the given documents and stores them. The
// batch is atomic: every document is checked against the unique indexes,
// and against the rest of the batch, before anything is written.
func (c *Collection) Insert(docs []domain.Document) ([]domain.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	staged := make([]domain.Document, len(docs))
	for i, doc := range docs {
		if doc == nil {
			return nil, ErrNilDocument
		}
		if id, ok := doc[domain.IDField]; ok && id != nil {
			return nil, fmt.Errorf("collection %s: %w", c.name, ErrHasID)
		}
		staged[i] = domain.CloneDocument(doc)
	}
	if err := c.checkUnique(staged, nil); err != nil {
		return nil, err
	}

	now := c.store.now().UnixMilli()
	out := make([]domain.Document, len(staged))
	for i, doc := range staged {
		c.maxID++
		doc[domain.IDField] = c.maxID
		doc[domain.MetaField] = map[string]any{
			"created":  now,
			"revision": int64(0),
			"version":  int64(0),
		}
		c.byID[c.maxID] = len(c.docs)
		c.docs = append(c.docs, doc)
		c.indexDoc(doc)
		c.recordChange(domain.ChangeOpInsert, c.maxID, doc, now)
		out[i] = domain.CloneDocument(doc)
	}
	return out, nil
}

// Update replaces stored documents by id. Like Insert, the batch either
// applies in full or not at all. Revision and updated stamps come from the
// incoming document's meta when it carries one, from the stored copy
// otherwise.
func (c *Collection) Update(docs []domain.Document) ([]domain.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	staged := make([]domain.Document, len(docs))
	replacing := make(map[int64]struct{}, len(docs))
	for i, doc := range docs {
		if doc == nil {
			return nil, ErrNilDocument
		}
		id := doc.ID()
		if id == 0 {
			return nil, fmt.Errorf("collection %s: %w", c.name, ErrMissingID)
		}
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("collection %s: %w %d", c.name, ErrUnknownID, id)
		}
		clone := domain.CloneDocument(doc)
		clone[domain.IDField] = id
		staged[i] = clone
		replacing[id] = struct{}{}
	}
	if err := c.checkUnique(staged, replacing); err != nil {
		return nil, err
	}

	now := c.store.now().UnixMilli()
	out := make([]domain.Document, len(staged))
	for i, doc := range staged {
		id := doc.ID()
		idx := c.byID[id]
		old := c.docs[idx]

		doc[domain.MetaField] = nextMeta(doc, old, now)
		c.unindexDoc(old)
		c.docs[idx] = doc
		c.indexDoc(doc)
		c.recordChange(domain.ChangeOpUpdate, id, doc, now)
		out[i] = domain.CloneDocument(doc)
	}
	return out, nil
}

func (c *Collection) FindByID(id int64) (domain.Document, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	idx, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	doc := c.docs[idx]
	if c.stale(doc, c.store.now()) {
		return nil, false
	}
	return domain.CloneDocument(doc), true
}

func (c *Collection) All() []domain.Document {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	now := c.store.now()
	out := make([]domain.Document, 0, len(c.docs))
	for _, doc := range c.docs {
		if c.stale(doc, now) {
			continue
		}
		out = append(out, domain.CloneDocument(doc))
	}
	return out
}

func (c *Collection) Count() int {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	if c.opts.TTL <= 0 {
		return len(c.docs)
	}
	now := c.store.now()
	count := 0
	for _, doc := range c.docs {
		if !c.stale(doc, now) {
			count++
		}
	}
	return count
}

func (c *Collection) MaxID() int64 {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.maxID
}

// PurgeStale drops every document older than the collection's TTL and
// reports how many were removed.
func (c *Collection) PurgeStale() int {
	if c.opts.TTL <= 0 {
		return 0
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	now := c.store.now()
	kept := c.docs[:0]
	removed := 0
	for _, doc := range c.docs {
		if c.stale(doc, now) {
			c.unindexDoc(doc)
			delete(c.byID, doc.ID())
			c.recordChange(domain.ChangeOpRemove, doc.ID(), nil, now.UnixMilli())
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	if removed > 0 {
		c.docs = kept
		for idx, doc := range c.docs {
			c.byID[doc.ID()] = idx
		}
	}
	return removed
}

// Changes returns a copy of the change log.
func (c *Collection) Changes() []domain.Change {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	out := make([]domain.Change, len(c.changes))
	copy(out, c.changes)
	return out
}

func (c *Collection) FlushChanges() {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.changes = nil
}

// State captures the collection for serialization.
func (c *Collection) State() domain.CollectionState {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	docs := make([]domain.Document, len(c.docs))
	for i, doc := range c.docs {
		docs[i] = domain.CloneDocument(doc)
	}
	return domain.CollectionState{
		Name:         c.name,
		Docs:         docs,
		MaxID:        c.maxID,
		Unique:       append([]string(nil), c.opts.Unique...),
		TrackChanges: c.opts.TrackChanges,
	}
}

func (c *Collection) restore(state domain.CollectionState) {
	c.docs = make([]domain.Document, 0, len(state.Docs))
	c.byID = make(map[int64]int, len(state.Docs))
	c.maxID = state.MaxID
	for _, doc := range state.Docs {
		clone := domain.CloneDocument(doc)
		id := clone.ID()
		if id > c.maxID {
			c.maxID = id
		}
		c.byID[id] = len(c.docs)
		c.docs = append(c.docs, clone)
		c.indexDoc(clone)
	}
}

func (c *Collection) checkUnique(staged []domain.Document, replacing map[int64]struct{}) error {
	if len(c.unique) == 0 {
		return nil
	}

	batch := make(map[string]map[any]struct{}, len(c.unique))
	for prop := range c.unique {
		batch[prop] = make(map[any]struct{})
	}
	for _, doc := range staged {
		for prop := range c.unique {
			value, ok := doc[prop]
			if !ok || value == nil {
				continue
			}
			if !indexable(value) {
				continue
			}
			if owner, exists := c.unique[prop][value]; exists {
				// An existing owner blocks the write unless this batch is
				// about to replace that owner anyway.
				if _, replaced := replacing[owner]; !replaced {
					return fmt.Errorf("collection %s: %s=%v: %w", c.name, prop, value, ErrUniqueViolation)
				}
			}
			if _, dup := batch[prop][value]; dup {
				return fmt.Errorf("collection %s: %s=%v: %w", c.name, prop, value, ErrUniqueViolation)
			}
			batch[prop][value] = struct{}{}
		}
	}
	return nil
}

func (c *Collection) indexDoc(doc domain.Document) {
	for prop, index := range c.unique {
		value, ok := doc[prop]
		if !ok || value == nil || !indexable(value) {
			continue
		}
		index[value] = doc.ID()
	}
}

func (c *Collection) unindexDoc(doc domain.Document) {
	for prop, index := range c.unique {
		value, ok := doc[prop]
		if !ok || value == nil || !indexable(value) {
			continue
		}
		if index[value] == doc.ID() {
			delete(index, value)
		}
	}
}

func (c *Collection) recordChange(op domain.ChangeOp, id int64, doc domain.Document, millis int64) {
	if !c.opts.TrackChanges {
		return
	}
	changeID, err := c.store.newID()
	if err != nil {
		changeID = fmt.Sprintf("chg-%d-%d", millis, id)
	}
	c.changes = append(c.changes, domain.Change{
		ID:         changeID,
		Timestamp:  millis,
		Collection: c.name,
		DocID:      id,
		Op:         op,
		Doc:        domain.CloneDocument(doc),
	})
}

func (c *Collection) stale(doc domain.Document, now time.Time) bool {
	if c.opts.TTL <= 0 {
		return false
	}
	meta, ok := doc[domain.MetaField].(map[string]any)
	if !ok {
		return false
	}
	ref, ok := meta["updated"].(int64)
	if !ok || ref == 0 {
		if ref, ok = meta["created"].(int64); !ok || ref == 0 {
			return false
		}
	}
	return now.UnixMilli()-ref > c.opts.TTL.Milliseconds()
}

// indexable reports whether a value can key a unique index. Maps and slices
// are not comparable and never participate.
func indexable(value any) bool {
	switch value.(type) {
	case map[string]any, domain.Document, []any:
		return false
	default:
		return true
	}
}

func nextMeta(incoming, old domain.Document, now int64) map[string]any {
	var base map[string]any
	if m, ok := incoming[domain.MetaField].(map[string]any); ok {
		base = m
	} else if m, ok := old[domain.MetaField].(map[string]any); ok {
		base = make(map[string]any, len(m)+2)
		for k, v := range m {
			base[k] = v
		}
	} else {
		base = map[string]any{"created": now, "version": int64(0)}
	}

	revision := int64(0)
	switch r := base["revision"].(type) {
	case int64:
		revision = r
	case int:
		revision = int64(r)
	case float64:
		revision = int64(r)
	}
	base["revision"] = revision + 1
	base["updated"] = now
	if _, ok := base["created"]; !ok {
		base["created"] = now
	}
	return base
}
