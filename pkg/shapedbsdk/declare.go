package shapedbsdk

import (
	"fmt"

	"github.com/shapedb/shapedb/internal/infra/modelfile"
	"github.com/shapedb/shapedb/internal/infra/schemaimport"
)

// DeclareFile declares every model from a YAML model file and returns the
// declared names in file order.
func (db *Database) DeclareFile(path string) ([]string, error) {
	compiled, err := modelfile.Load(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(compiled))
	for _, m := range compiled {
		if _, err := db.registry.Declare(m.Name, m.Decl, m.Options); err != nil {
			return names, fmt.Errorf("declare model %s: %w", m.Name, err)
		}
		names = append(names, m.Name)
	}
	db.markDirty()
	db.logger.Debug("models declared from file", "path", path, "models", len(names))
	return names, nil
}

// DeclareSchema declares a model derived from a JSON Schema document. An
// empty name falls back to the schema's title.
func (db *Database) DeclareSchema(name string, schema []byte) (*Model, error) {
	imp, err := schemaimport.Parse(schema)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = imp.Name
	}
	handle, err := db.registry.Declare(name, imp.Decl, imp.Options)
	if err != nil {
		return nil, err
	}
	db.markDirty()
	return &Model{db: db, inner: handle}, nil
}
