package shapedbsdk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shapedb/shapedb/internal/app/model"
	"github.com/shapedb/shapedb/internal/domain"
	"github.com/shapedb/shapedb/internal/infra/fsadapter"
	"github.com/shapedb/shapedb/internal/infra/gitadapter"
	"github.com/shapedb/shapedb/internal/infra/jsonpatch"
	"github.com/shapedb/shapedb/internal/infra/memstore"
	"github.com/shapedb/shapedb/internal/infra/pbcodec"
	"github.com/shapedb/shapedb/internal/infra/snapjson"
	"github.com/shapedb/shapedb/internal/infra/sqliteadapter"
	"github.com/shapedb/shapedb/internal/platform"
)

// Document is a schemaless record. Reserved fields are managed by the
// store: "$id" carries the document identity and "meta" its bookkeeping.
type Document = domain.Document

type snapshotCodec interface {
	Encode(tree map[string]any) ([]byte, error)
	Decode(data []byte) (map[string]any, error)
}

type snapshotStore interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
}

// Database is an in-memory document store guarded by declared models.
// Writes that pass through a model are normalized against its rules
// before they reach a collection.
type Database struct {
	cfg      Config
	logger   *slog.Logger
	store    *memstore.Store
	registry *model.Service
	adapter  snapshotStore
	codec    snapshotCodec
	sqlite   *sqliteadapter.Adapter

	mu     sync.Mutex
	dirty  bool
	closed bool

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

// New creates a database without loading a snapshot or starting autosave.
func New(cfg Config) (*Database, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger := normalized.Logger
	if logger == nil {
		logger = platform.DiscardLogger()
	}

	db := &Database{
		cfg:    normalized,
		logger: logger,
		store:  memstore.NewStore(platform.RealClock{}.Now),
	}
	db.registry = model.NewService(db.store, snapjson.Codec{}, jsonpatch.Patcher{})

	switch normalized.Format {
	case FormatProto:
		db.codec = pbcodec.Codec{}
	default:
		db.codec = snapjson.Codec{}
	}

	if err := db.openAdapter(); err != nil {
		return nil, err
	}
	return db, nil
}

// Open creates a database, loads an existing snapshot when Autoload is
// set, and starts autosave when Autosave is set.
func Open(ctx context.Context, cfg Config) (*Database, error) {
	db, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if db.cfg.Autoload {
		if err := db.Load(ctx); err != nil && !isMissingSnapshot(err) {
			_ = db.Close()
			return nil, err
		}
	}
	if db.cfg.Autosave {
		if err := db.StartAutosave(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Close stops autosave, saves once more if the database is dirty and
// autosave was on, and releases the persistence backend.
func (db *Database) Close() error {
	db.StopAutosave()

	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	flush := db.cfg.Autosave && db.dirty
	db.mu.Unlock()

	var saveErr error
	if flush {
		saveErr = db.save(context.Background())
	}

	if db.sqlite != nil {
		if err := db.sqlite.Close(); err != nil && saveErr == nil {
			saveErr = err
		}
	}
	return saveErr
}

// Name returns the database name used in snapshot headers.
func (db *Database) Name() string { return db.cfg.Name }

// Path returns the configured snapshot location.
func (db *Database) Path() string { return db.cfg.Path }

// Declare compiles a model and registers it under its name. The backing
// collection is created as a side effect. Declaring the same name twice
// fails with ErrModelExists.
func (db *Database) Declare(spec ModelSpec) (*Model, error) {
	decl, opts, err := spec.toDomain()
	if err != nil {
		return nil, err
	}
	handle, err := db.registry.Declare(spec.Name, decl, opts)
	if err != nil {
		return nil, err
	}
	db.markDirty()
	db.logger.Debug("model declared", "model", spec.Name, "properties", len(decl))
	return &Model{db: db, inner: handle}, nil
}

// Model returns a declared model handle or nil when the name is unknown.
func (db *Database) Model(name string) *Model {
	handle := db.registry.Model(name)
	if handle == nil {
		return nil
	}
	return &Model{db: db, inner: handle}
}

// Models lists declared model names in declaration order.
func (db *Database) Models() []string {
	return db.registry.Models()
}

// Collection returns a raw handle on a collection, creating it when
// needed. Documents written through it bypass model normalization.
func (db *Database) Collection(name string, cfg CollectionConfig) (*Collection, error) {
	if err := db.store.EnsureCollection(name, cfg.toDomain()); err != nil {
		return nil, err
	}
	return &Collection{db: db, name: name}, nil
}

// Find looks up one document by $id without creating the collection.
func (db *Database) Find(collection string, id int64) (Document, error) {
	c, ok := db.store.Get(collection)
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", collection, memstore.ErrUnknownCollection)
	}
	doc, ok := c.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, model.ErrDocNotFound)
	}
	return doc, nil
}

// Documents returns every document in a collection in insertion order.
func (db *Database) Documents(collection string) ([]Document, error) {
	c, ok := db.store.Get(collection)
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", collection, memstore.ErrUnknownCollection)
	}
	return c.All(), nil
}

// PurgeStale removes documents whose TTL has lapsed and reports how many
// were dropped.
func (db *Database) PurgeStale() int {
	purged := db.store.PurgeStale()
	if purged > 0 {
		db.markDirty()
	}
	return purged
}

// Dirty reports whether the in-memory state has diverged from the last
// saved snapshot.
func (db *Database) Dirty() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.dirty
}

func (db *Database) markDirty() {
	db.mu.Lock()
	db.dirty = true
	db.mu.Unlock()
}

// noteWrite records a mutation and, in immediate save mode, persists it
// right away.
func (db *Database) noteWrite() error {
	db.markDirty()
	if db.cfg.SaveMode == SaveModeImmediate {
		return db.save(context.Background())
	}
	return nil
}

func (db *Database) openAdapter() error {
	switch db.cfg.Backend {
	case BackendSQLite:
		adapter, err := sqliteadapter.OpenWithOptions(db.cfg.Path, db.cfg.Name, sqliteadapter.OpenOptions{Fast: db.cfg.Fast})
		if err != nil {
			return fmt.Errorf("open sqlite backend: %w", err)
		}
		db.sqlite = adapter
		db.adapter = adapter
	case BackendGit:
		adapter, err := gitadapter.New(db.cfg.Path, snapshotFile(db.cfg.Name, db.cfg.Format))
		if err != nil {
			return fmt.Errorf("open git backend: %w", err)
		}
		db.adapter = adapter
	default:
		adapter, err := fsadapter.New(db.cfg.Path)
		if err != nil {
			return fmt.Errorf("open file backend: %w", err)
		}
		db.adapter = adapter
	}
	return nil
}

func snapshotFile(name string, format Format) string {
	if format == FormatProto {
		return name + ".pb"
	}
	return name + ".json"
}
