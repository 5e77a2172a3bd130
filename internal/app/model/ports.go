package model

import "github.com/shapedb/shapedb/internal/domain"

type Store interface {
	EnsureCollection(name string, opts domain.CollectionOptions) error
	Insert(collection string, docs []domain.Document) ([]domain.Document, error)
	Update(collection string, docs []domain.Document) ([]domain.Document, error)
	FindByID(collection string, id int64) (domain.Document, bool)
	All(collection string) []domain.Document
	Count(collection string) int
}

type Codec interface {
	Marshal(doc domain.Document) ([]byte, error)
	Unmarshal(data []byte) (domain.Document, error)
}

type Patcher interface {
	Apply(target, patch []byte) ([]byte, error)
}
