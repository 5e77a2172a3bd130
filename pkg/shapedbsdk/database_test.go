package shapedbsdk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func userSpec() ModelSpec {
	return ModelSpec{
		Name: "users",
		Properties: []Property{
			{Name: "name", Type: "string", NotNull: true},
			{Name: "age", Type: "integer", Default: int64(18)},
			{Name: "email", Type: "string", Unique: true},
		},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); !errors.Is(err, ErrPathRequired) {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
}

func TestDeclareAndInsertCoerces(t *testing.T) {
	db, err := Open(context.Background(), DefaultConfig(filepath.Join(t.TempDir(), "db.json")))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users, err := db.Declare(userSpec())
	if err != nil {
		t.Fatalf("declare model: %v", err)
	}

	doc, err := users.Insert(Document{"name": "Ada", "age": "30", "email": "ada@example.com"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if doc["age"] != int64(30) {
		t.Fatalf("expected coerced age 30, got %#v", doc["age"])
	}
	if doc.ID() == 0 {
		t.Fatalf("expected assigned id")
	}
	if !db.Dirty() {
		t.Fatalf("expected dirty database after insert")
	}

	if _, err := db.Declare(userSpec()); !errors.Is(err, ErrModelExists) {
		t.Fatalf("expected ErrModelExists, got %v", err)
	}
}

func TestMissingRequiredProperty(t *testing.T) {
	db, err := Open(context.Background(), DefaultConfig(filepath.Join(t.TempDir(), "db.json")))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users, err := db.Declare(userSpec())
	if err != nil {
		t.Fatalf("declare model: %v", err)
	}
	if _, err := users.Insert(Document{"age": 5}); !errors.Is(err, ErrNotNull) {
		t.Fatalf("expected ErrNotNull, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	ctx := context.Background()

	db, err := Open(ctx, DefaultConfig(path))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	users, err := db.Declare(userSpec())
	if err != nil {
		t.Fatalf("declare model: %v", err)
	}
	inserted, err := users.Insert(Document{"name": "Ada", "email": "ada@example.com"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if db.Dirty() {
		t.Fatalf("expected clean database after save")
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(ctx, DefaultConfig(path))
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer reopened.Close()

	coll, err := reopened.Collection("users", CollectionConfig{})
	if err != nil {
		t.Fatalf("collection handle: %v", err)
	}
	if coll.Count() != 1 {
		t.Fatalf("expected 1 document after reload, got %d", coll.Count())
	}
	doc, ok := coll.FindByID(inserted.ID())
	if !ok {
		t.Fatalf("expected document %d after reload", inserted.ID())
	}
	if doc["name"] != "Ada" {
		t.Fatalf("expected name Ada, got %v", doc["name"])
	}

	// Unique constraint names survive the round trip even though the
	// constraint objects themselves are serialized as nulls.
	if _, err := coll.Insert(Document{"name": "Eve", "email": "ada@example.com"}); !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation after reload, got %v", err)
	}
}

func TestProtoFormatRoundTrip(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "db.pb"))
	cfg.Format = FormatProto
	ctx := context.Background()

	db, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	users, err := db.Declare(userSpec())
	if err != nil {
		t.Fatalf("declare model: %v", err)
	}
	if _, err := users.Insert(Document{"name": "Ada", "email": "ada@example.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer reopened.Close()
	status := reopened.Status()
	if len(status.Collections) != 1 || status.Collections[0].Documents != 1 {
		t.Fatalf("expected one collection with one document, got %+v", status.Collections)
	}
}

func TestImmediateSaveMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	cfg := DefaultConfig(path)
	cfg.SaveMode = SaveModeImmediate

	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users, err := db.Declare(userSpec())
	if err != nil {
		t.Fatalf("declare model: %v", err)
	}
	if _, err := users.Insert(Document{"name": "Ada", "email": "ada@example.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if db.Dirty() {
		t.Fatalf("expected immediate mode to leave a clean database")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected snapshot on disk: %v", err)
	}
}

func TestAutosavePersistsDirtyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	cfg := DefaultConfig(path)
	cfg.Autosave = true
	cfg.AutosaveInterval = 10 * time.Millisecond

	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if !db.AutosaveRunning() {
		t.Fatalf("expected autosave to be running")
	}
	if err := db.StartAutosave(context.Background()); !errors.Is(err, ErrAutosaveRunning) {
		t.Fatalf("expected ErrAutosaveRunning, got %v", err)
	}

	users, err := db.Declare(userSpec())
	if err != nil {
		t.Fatalf("declare model: %v", err)
	}
	if _, err := users.Insert(Document{"name": "Ada", "email": "ada@example.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("autosave never wrote a snapshot")
		}
		time.Sleep(10 * time.Millisecond)
	}

	db.StopAutosave()
	if db.AutosaveRunning() {
		t.Fatalf("expected autosave to be stopped")
	}
}

func TestCloseFlushesWhenAutosaveEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	cfg := DefaultConfig(path)
	cfg.Autosave = true
	cfg.AutosaveInterval = time.Hour

	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	users, err := db.Declare(userSpec())
	if err != nil {
		t.Fatalf("declare model: %v", err)
	}
	if _, err := users.Insert(Document{"name": "Ada", "email": "ada@example.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected close to flush snapshot: %v", err)
	}
}

func TestChangeLogThroughDatabase(t *testing.T) {
	db, err := Open(context.Background(), DefaultConfig(filepath.Join(t.TempDir(), "db.json")))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	events, err := db.Collection("events", CollectionConfig{TrackChanges: true})
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	if _, err := events.Insert(Document{"kind": "signup"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	changes, err := db.Changes("events")
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Op != "insert" || changes[0].Collection != "events" {
		t.Fatalf("unexpected change %+v", changes[0])
	}
	if changes[0].At.IsZero() {
		t.Fatalf("expected change timestamp")
	}

	if err := db.FlushChanges("events"); err != nil {
		t.Fatalf("flush changes: %v", err)
	}
	changes, err = db.Changes("events")
	if err != nil {
		t.Fatalf("changes after flush: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected empty change log, got %d", len(changes))
	}

	if _, err := db.Changes("absent"); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}
