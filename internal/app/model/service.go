package model

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shapedb/shapedb/internal/app/schema"
	"github.com/shapedb/shapedb/internal/domain"
)

// Service owns the model registry of one database instance. Models declared
// on one service are invisible to every other instance in the process.
type Service struct {
	store   Store
	codec   Codec
	patcher Patcher

	mu     sync.RWMutex
	models map[string]*Model
	order  []string
}

func NewService(store Store, codec Codec, patcher Patcher) *Service {
	return &Service{
		store:   store,
		codec:   codec,
		patcher: patcher,
		models:  make(map[string]*Model),
	}
}

// Declare compiles a declaration and registers the resulting model.
// Compilation failures surface before the backing collection is touched;
// declaring the same name twice is an error and leaves the first model and
// its collection as they were.
func (s *Service) Declare(name string, decl domain.Declaration, opts domain.ModelOptions) (*Model, error) {
	def, err := schema.CompileModel(name, decl, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[def.Name]; exists {
		return nil, fmt.Errorf("model %s: %w", def.Name, ErrModelExists)
	}

	collOpts := opts.Collection
	collOpts.Unique = mergeUnique(def.Unique, collOpts.Unique)
	if err := s.store.EnsureCollection(def.Name, collOpts); err != nil {
		return nil, fmt.Errorf("ensure collection %s: %w", def.Name, err)
	}

	m := &Model{svc: s, def: def}
	s.models[def.Name] = m
	s.order = append(s.order, def.Name)
	return m, nil
}

// Model returns the handle registered under name, or nil if the name was
// never declared.
func (s *Service) Model(name string) *Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models[name]
}

// Models lists declared model names in declaration order.
func (s *Service) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Definitions returns the compiled definitions in declaration order.
func (s *Service) Definitions() []domain.ModelDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ModelDefinition, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.models[name].def)
	}
	return out
}

func mergeUnique(declared, extra []string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, set := range [][]string{declared, extra} {
		for _, name := range set {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, exists := seen[name]; exists {
				continue
			}
			seen[name] = struct{}{}
			merged = append(merged, name)
		}
	}
	return merged
}
