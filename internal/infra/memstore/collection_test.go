package memstore

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shapedb/shapedb/internal/domain"
)

type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.UnixMilli(1_000_000)}
}

func (c *testClock) Now() time.Time { return c.current }

func (c *testClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestCollection(t *testing.T, opts domain.CollectionOptions) (*Collection, *testClock) {
	t.Helper()
	clock := newTestClock()
	store := NewStore(clock.Now)
	c, err := store.CreateOrGet("users", opts)
	if err != nil {
		t.Fatalf("CreateOrGet returned error: %v", err)
	}
	return c, clock
}

func TestInsertStampsIdentity(t *testing.T) {
	c, clock := newTestCollection(t, domain.CollectionOptions{})

	docs, err := c.Insert([]domain.Document{{"name": "Ada"}, {"name": "Grace"}})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if docs[0].ID() != 1 || docs[1].ID() != 2 {
		t.Fatalf("expected ids 1 and 2, got %v and %v", docs[0].ID(), docs[1].ID())
	}
	meta := docs[0][domain.MetaField].(map[string]any)
	if meta["created"] != clock.Now().UnixMilli() {
		t.Fatalf("expected created stamp, got %v", meta["created"])
	}
	if meta["revision"] != int64(0) {
		t.Fatalf("expected revision 0, got %v", meta["revision"])
	}
}

func TestInsertCopiesInAndOut(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	in := domain.Document{"name": "Ada", "tags": []any{"math"}}
	out, err := c.Insert([]domain.Document{in})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	in["name"] = "changed"
	out[0]["tags"].([]any)[0] = "changed"

	stored, ok := c.FindByID(1)
	if !ok {
		t.Fatalf("expected document 1")
	}
	if stored["name"] != "Ada" {
		t.Fatalf("expected stored name Ada, got %v", stored["name"])
	}
	if stored["tags"].([]any)[0] != "math" {
		t.Fatalf("expected stored tags intact, got %v", stored["tags"])
	}
}

func TestInsertRejectsExistingID(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	_, err := c.Insert([]domain.Document{{"name": "Ada", domain.IDField: int64(9)}})
	if !errors.Is(err, ErrHasID) {
		t.Fatalf("expected ErrHasID, got %v", err)
	}
}

func TestInsertBatchAtomicOnUniqueClash(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{Unique: []string{"email"}})

	if _, err := c.Insert([]domain.Document{{"email": "ada@example.com"}}); err != nil {
		t.Fatalf("seed insert returned error: %v", err)
	}

	_, err := c.Insert([]domain.Document{
		{"email": "grace@example.com"},
		{"email": "ada@example.com"},
	})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
	if c.Count() != 1 {
		t.Fatalf("expected count unchanged at 1, got %d", c.Count())
	}
}

func TestInsertBatchAtomicOnIntraBatchClash(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{Unique: []string{"email"}})

	_, err := c.Insert([]domain.Document{
		{"email": "ada@example.com"},
		{"email": "ada@example.com"},
	})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
	if c.Count() != 0 {
		t.Fatalf("expected empty collection, got %d", c.Count())
	}
}

func TestUniqueIgnoresNull(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{Unique: []string{"email"}})

	_, err := c.Insert([]domain.Document{
		{"email": nil},
		{"email": nil},
		{"name": "no email at all"},
	})
	if err != nil {
		t.Fatalf("expected null values to skip the unique index, got %v", err)
	}
	if c.Count() != 3 {
		t.Fatalf("expected 3 documents, got %d", c.Count())
	}
}

func TestUpdateBumpsRevision(t *testing.T) {
	c, clock := newTestCollection(t, domain.CollectionOptions{})

	docs, err := c.Insert([]domain.Document{{"name": "Ada"}})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	clock.Advance(5 * time.Second)
	doc := docs[0]
	doc["name"] = "Ada L."
	updated, err := c.Update([]domain.Document{doc})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	meta := updated[0][domain.MetaField].(map[string]any)
	if meta["revision"] != int64(1) {
		t.Fatalf("expected revision 1, got %v", meta["revision"])
	}
	if meta["updated"] != clock.Now().UnixMilli() {
		t.Fatalf("expected updated stamp, got %v", meta["updated"])
	}
	if meta["created"] != clock.Now().Add(-5*time.Second).UnixMilli() {
		t.Fatalf("expected created preserved, got %v", meta["created"])
	}
}

func TestUpdateWithoutMetaSynthesizes(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	if _, err := c.Insert([]domain.Document{{"name": "Ada"}}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	updated, err := c.Update([]domain.Document{{"name": "Ada L.", domain.IDField: int64(1)}})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	meta, ok := updated[0][domain.MetaField].(map[string]any)
	if !ok {
		t.Fatalf("expected meta synthesized, got %v", updated[0][domain.MetaField])
	}
	if meta["revision"] != int64(1) {
		t.Fatalf("expected revision 1, got %v", meta["revision"])
	}
}

func TestUpdateUnknownID(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	_, err := c.Update([]domain.Document{{"name": "ghost", domain.IDField: int64(42)}})
	if !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
}

func TestUpdateMissingID(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	_, err := c.Update([]domain.Document{{"name": "ghost"}})
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestUpdateBatchAtomic(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	docs, err := c.Insert([]domain.Document{{"name": "Ada"}})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	good := docs[0]
	good["name"] = "Ada L."
	_, err = c.Update([]domain.Document{good, {"name": "ghost", domain.IDField: int64(42)}})
	if !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}

	stored, _ := c.FindByID(1)
	if stored["name"] != "Ada" {
		t.Fatalf("expected first document untouched, got %v", stored["name"])
	}
}

func TestUpdateMovesUniqueValue(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{Unique: []string{"email"}})

	docs, err := c.Insert([]domain.Document{{"email": "ada@example.com"}})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	doc := docs[0]
	doc["email"] = "lovelace@example.com"
	if _, err := c.Update([]domain.Document{doc}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	// old value is free again
	if _, err := c.Insert([]domain.Document{{"email": "ada@example.com"}}); err != nil {
		t.Fatalf("expected released unique value, got %v", err)
	}

	// new value is taken
	_, err = c.Insert([]domain.Document{{"email": "lovelace@example.com"}})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
}

func TestAllKeepsInsertionOrder(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	if _, err := c.Insert([]domain.Document{{"n": 1}, {"n": 2}, {"n": 3}}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	all := c.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(all))
	}
	for i, doc := range all {
		if doc.ID() != int64(i+1) {
			t.Fatalf("expected insertion order, got %v", all)
		}
	}
}

func TestChangeLog(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{TrackChanges: true})

	docs, err := c.Insert([]domain.Document{{"name": "Ada"}})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	doc := docs[0]
	doc["name"] = "Ada L."
	if _, err := c.Update([]domain.Document{doc}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	changes := c.Changes()
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].Op != domain.ChangeOpInsert || changes[1].Op != domain.ChangeOpUpdate {
		t.Fatalf("expected insert then update, got %v %v", changes[0].Op, changes[1].Op)
	}
	for _, change := range changes {
		if err := change.Validate(); err != nil {
			t.Fatalf("expected valid change, got %v", err)
		}
	}

	c.FlushChanges()
	if len(c.Changes()) != 0 {
		t.Fatalf("expected flushed change log")
	}
}

func TestChangeLogOffByDefault(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{})

	if _, err := c.Insert([]domain.Document{{"name": "Ada"}}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if len(c.Changes()) != 0 {
		t.Fatalf("expected no change log entries")
	}
}

func TestTTLHidesAndPurges(t *testing.T) {
	c, clock := newTestCollection(t, domain.CollectionOptions{TTL: time.Minute, TrackChanges: true})

	if _, err := c.Insert([]domain.Document{{"name": "Ada"}}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	if _, ok := c.FindByID(1); !ok {
		t.Fatalf("expected fresh document visible")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.FindByID(1); ok {
		t.Fatalf("expected stale document hidden")
	}
	if c.Count() != 0 {
		t.Fatalf("expected count 0, got %d", c.Count())
	}
	if len(c.All()) != 0 {
		t.Fatalf("expected stale document skipped in All")
	}

	if removed := c.PurgeStale(); removed != 1 {
		t.Fatalf("expected 1 purged, got %d", removed)
	}
	changes := c.Changes()
	last := changes[len(changes)-1]
	if last.Op != domain.ChangeOpRemove {
		t.Fatalf("expected remove change, got %v", last.Op)
	}
}

func TestStateRestoreRoundTrip(t *testing.T) {
	c, _ := newTestCollection(t, domain.CollectionOptions{Unique: []string{"email"}})

	if _, err := c.Insert([]domain.Document{
		{"email": "ada@example.com"},
		{"email": "grace@example.com"},
	}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	state := c.State()

	restored := NewStore(nil)
	if err := restored.Restore([]domain.CollectionState{state}); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	rc, ok := restored.Get("users")
	if !ok {
		t.Fatalf("expected restored collection")
	}

	if diff := cmp.Diff(c.All(), rc.All()); diff != "" {
		t.Fatalf("documents mismatch (-want +got):\n%s", diff)
	}

	// unique index is live again
	_, err := rc.Insert([]domain.Document{{"email": "ada@example.com"}})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation after restore, got %v", err)
	}

	// id sequence resumes past the restored maximum
	docs, err := rc.Insert([]domain.Document{{"email": "new@example.com"}})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if docs[0].ID() != 3 {
		t.Fatalf("expected id 3, got %d", docs[0].ID())
	}
}
