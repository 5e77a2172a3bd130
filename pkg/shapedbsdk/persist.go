package shapedbsdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shapedb/shapedb/internal/app/snapshot"
	"github.com/shapedb/shapedb/internal/domain"
	"github.com/shapedb/shapedb/internal/infra/memstore"
	"github.com/shapedb/shapedb/internal/infra/snapjson"
)

// Save encodes the current state and writes it to the backend. Runtime
// references never reach the encoder: collection constraints and TTL
// settings are serialized as nulls, model definitions and the coercion
// table are omitted, so a reloaded database only recovers data and
// unique constraint names.
func (db *Database) Save(ctx context.Context) error {
	return db.save(ctx)
}

func (db *Database) save(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	state := domain.DatabaseState{
		Header:      domain.NewSnapshotHeader(db.cfg.Name, time.Now()),
		Collections: db.store.States(),
	}
	tree := snapshot.Assemble(state, db.runtime())
	data, err := db.codec.Encode(tree)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := db.adapter.Save(ctx, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	db.dirty = false
	db.logger.Debug("snapshot saved", "name", db.cfg.Name, "bytes", len(data), "collections", len(state.Collections))
	return nil
}

// Load replaces the in-memory state with the latest snapshot. Collections
// belonging to declared models are re-created if the snapshot does not
// mention them.
func (db *Database) Load(ctx context.Context) error {
	data, err := db.adapter.Load(ctx)
	if err != nil {
		return err
	}
	tree, err := db.codec.Decode(data)
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	state, err := snapshot.Parse(tree)
	if err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.store.Restore(state.Collections); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	for _, def := range db.registry.Definitions() {
		if err := db.store.EnsureCollection(def.Name, domain.CollectionOptions{Unique: def.Unique}); err != nil {
			return fmt.Errorf("restore model collection %s: %w", def.Name, err)
		}
	}
	db.dirty = false
	db.logger.Debug("snapshot loaded", "name", state.Header.Name, "collections", len(state.Collections))
	return nil
}

func (db *Database) runtime() snapshot.Runtime {
	rt := snapshot.Runtime{
		PersistenceAdapter: string(db.cfg.Backend),
		ThrottledSaves:     db.cfg.SaveMode == SaveModeThrottled,
		Models:             db.registry.Definitions(),
		TypeTable:          domain.TypeTable(),
		Constraints:        make(map[string]any),
		TTL:                make(map[string]any),
	}
	if db.AutosaveRunning() {
		rt.AutosaveHandle = struct{}{}
	}
	for _, c := range db.store.Collections() {
		opts := c.Options()
		rt.Constraints[c.Name()] = map[string]any{"unique": opts.Unique}
		if opts.TTL > 0 {
			rt.TTL[c.Name()] = map[string]any{
				"age":         opts.TTL.Milliseconds(),
				"ttlInterval": opts.TTLInterval.Milliseconds(),
			}
		}
	}
	return rt
}

func isMissingSnapshot(err error) bool {
	return errors.Is(err, domain.ErrNoSnapshot)
}

// Dump renders the current state as a canonical JSON snapshot, whatever
// the configured snapshot format is.
func (db *Database) Dump() ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	state := domain.DatabaseState{
		Header:      domain.NewSnapshotHeader(db.cfg.Name, time.Now()),
		Collections: db.store.States(),
	}
	tree := snapshot.Assemble(state, db.runtime())
	data, err := snapjson.Codec{}.Encode(tree)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// StartAutosave begins a polling loop that saves the database whenever it
// is dirty. The loop stops when ctx is canceled or StopAutosave is
// called.
func (db *Database) StartAutosave(ctx context.Context) error {
	db.watchMu.Lock()
	defer db.watchMu.Unlock()
	if db.watchCancel != nil {
		return ErrAutosaveRunning
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(db.cfg.AutosaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
			}
			if !db.Dirty() {
				continue
			}
			if err := db.save(watchCtx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				db.logger.Error("autosave failed", "name", db.cfg.Name, "error", err)
			}
		}
	}()

	db.watchCancel = cancel
	db.watchDone = done
	return nil
}

// StopAutosave stops the autosave loop and waits for it to exit. It is a
// no-op when autosave is not running.
func (db *Database) StopAutosave() {
	db.watchMu.Lock()
	cancel := db.watchCancel
	done := db.watchDone
	db.watchCancel = nil
	db.watchDone = nil
	db.watchMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// AutosaveRunning reports whether the autosave loop is active.
func (db *Database) AutosaveRunning() bool {
	db.watchMu.Lock()
	defer db.watchMu.Unlock()
	return db.watchCancel != nil
}

// CollectionStatus aliases the domain report line so callers can name it
// without importing internal packages.
type CollectionStatus = domain.CollectionStatus

type Status struct {
	Name        string
	Path        string
	Format      Format
	Backend     Backend
	SaveMode    SaveMode
	Dirty       bool
	Autosave    bool
	Collections []CollectionStatus
}

// Status summarizes the database and its collections.
func (db *Database) Status() Status {
	strict := make(map[string]bool)
	for _, def := range db.registry.Definitions() {
		strict[def.Name] = def.Strict
	}

	status := Status{
		Name:     db.cfg.Name,
		Path:     db.cfg.Path,
		Format:   db.cfg.Format,
		Backend:  db.cfg.Backend,
		SaveMode: db.cfg.SaveMode,
		Dirty:    db.Dirty(),
		Autosave: db.AutosaveRunning(),
	}
	for _, state := range db.store.States() {
		status.Collections = append(status.Collections, CollectionStatus{
			Name:      state.Name,
			Documents: len(state.Docs),
			MaxID:     state.MaxID,
			Unique:    state.Unique,
			Strict:    strict[state.Name],
		})
	}
	return status
}

// Change is one entry from a collection's change log.
type Change struct {
	ID         string
	At         time.Time
	Collection string
	DocID      int64
	Op         string
	Doc        Document
}

// Changes returns the pending change log for a collection. The collection
// must have been created with TrackChanges.
func (db *Database) Changes(collection string) ([]Change, error) {
	c, ok := db.store.Get(collection)
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", collection, memstore.ErrUnknownCollection)
	}
	entries := c.Changes()
	out := make([]Change, 0, len(entries))
	for _, entry := range entries {
		out = append(out, Change{
			ID:         entry.ID,
			At:         time.UnixMilli(entry.Timestamp).UTC(),
			Collection: entry.Collection,
			DocID:      entry.DocID,
			Op:         entry.Op.String(),
			Doc:        entry.Doc,
		})
	}
	return out, nil
}

// FlushChanges clears a collection's pending change log.
func (db *Database) FlushChanges(collection string) error {
	c, ok := db.store.Get(collection)
	if !ok {
		return fmt.Errorf("collection %s: %w", collection, memstore.ErrUnknownCollection)
	}
	c.FlushChanges()
	return nil
}
