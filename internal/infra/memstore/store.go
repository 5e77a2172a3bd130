package memstore

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shapedb/shapedb/internal/domain"
	"github.com/shapedb/shapedb/internal/infra/ident"
)

// Store keeps named collections in memory. The first creation of a name
// fixes that collection's options; later CreateOrGet calls return the
// existing collection untouched.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	order       []string
	now         func() time.Time
	newID       func() (string, error)
}

// NewStore builds an empty store. A nil clock falls back to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	gen := ident.NewULIDGenerator()
	return &Store{
		collections: make(map[string]*Collection),
		now:         now,
		newID:       gen.NewID,
	}
}

func (s *Store) CreateOrGet(name string, opts domain.CollectionOptions) (*Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCollectionNameRequired
	}
	if !domain.IsValidModelName(name) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCollectionName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.collections[name]; ok {
		return existing, nil
	}
	c := newCollection(s, name, opts)
	s.collections[name] = c
	s.order = append(s.order, name)
	return c, nil
}

func (s *Store) Get(name string) (*Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	return c, ok
}

// Collections returns the collections in creation order.
func (s *Store) Collections() []*Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Collection, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.collections[name])
	}
	return out
}

func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// States captures every collection for serialization, in creation order.
func (s *Store) States() []domain.CollectionState {
	out := make([]domain.CollectionState, 0, len(s.Collections()))
	for _, c := range s.Collections() {
		out = append(out, c.State())
	}
	return out
}

// Restore replaces the store contents with the given collection states.
// Restored collections keep their serialized unique constraints; options
// that never survive serialization come back at their zero values.
func (s *Store) Restore(states []domain.CollectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make(map[string]*Collection, len(states))
	s.order = s.order[:0]
	for _, state := range states {
		name := strings.TrimSpace(state.Name)
		if name == "" {
			return ErrCollectionNameRequired
		}
		c := newCollection(s, name, domain.CollectionOptions{
			Unique:       append([]string(nil), state.Unique...),
			TrackChanges: state.TrackChanges,
		})
		c.restore(state)
		s.collections[name] = c
		s.order = append(s.order, name)
	}
	return nil
}

// PurgeStale sweeps every collection and reports how many documents were
// dropped.
func (s *Store) PurgeStale() int {
	total := 0
	for _, c := range s.Collections() {
		total += c.PurgeStale()
	}
	return total
}

func (s *Store) EnsureCollection(name string, opts domain.CollectionOptions) error {
	_, err := s.CreateOrGet(name, opts)
	return err
}

func (s *Store) Insert(collection string, docs []domain.Document) ([]domain.Document, error) {
	c, ok := s.Get(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return c.Insert(docs)
}

func (s *Store) Update(collection string, docs []domain.Document) ([]domain.Document, error) {
	c, ok := s.Get(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return c.Update(docs)
}

func (s *Store) FindByID(collection string, id int64) (domain.Document, bool) {
	c, ok := s.Get(collection)
	if !ok {
		return nil, false
	}
	return c.FindByID(id)
}

func (s *Store) All(collection string) []domain.Document {
	c, ok := s.Get(collection)
	if !ok {
		return nil
	}
	return c.All()
}

func (s *Store) Count(collection string) int {
	c, ok := s.Get(collection)
	if !ok {
		return 0
	}
	return c.Count()
}
