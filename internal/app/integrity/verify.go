package integrity

import (
	"fmt"

	"github.com/shapedb/shapedb/internal/domain"
)

const (
	IssueMissingID   = "missing_id"
	IssueBadID       = "bad_id"
	IssueDuplicateID = "duplicate_id"
	IssueIDAboveMax  = "id_above_max"
	IssueMissingMeta = "missing_meta"
	IssueUniqueDup   = "unique_duplicate"
)

// Issue is one invariant violation found in a snapshot.
type Issue struct {
	Collection string
	DocID      int64
	Kind       string
	Detail     string
}

type Report struct {
	Collections int
	Documents   int
	Issues      []Issue
}

func (r Report) Clean() bool { return len(r.Issues) == 0 }

// Verify checks the structural invariants a healthy store maintains: every
// document carries a positive $id no greater than the collection's maxId,
// ids are unique, meta is present, and unique properties hold distinct
// values. A snapshot edited by hand or written by another tool can break
// any of these.
func Verify(state domain.DatabaseState) Report {
	report := Report{Collections: len(state.Collections)}
	for _, c := range state.Collections {
		report.Documents += len(c.Docs)
		verifyCollection(&report, c)
	}
	return report
}

func verifyCollection(report *Report, c domain.CollectionState) {
	seen := make(map[int64]struct{}, len(c.Docs))
	uniques := make(map[string]map[any]struct{}, len(c.Unique))
	for _, name := range c.Unique {
		uniques[name] = make(map[any]struct{})
	}

	for _, doc := range c.Docs {
		id := doc.ID()
		if _, ok := doc[domain.IDField]; !ok {
			report.add(c.Name, 0, IssueMissingID, "document has no $id")
		} else if id < 1 {
			report.add(c.Name, id, IssueBadID, fmt.Sprintf("$id %d is not positive", id))
		} else {
			if _, dup := seen[id]; dup {
				report.add(c.Name, id, IssueDuplicateID, fmt.Sprintf("$id %d appears more than once", id))
			}
			seen[id] = struct{}{}
			if id > c.MaxID {
				report.add(c.Name, id, IssueIDAboveMax, fmt.Sprintf("$id %d exceeds maxId %d", id, c.MaxID))
			}
		}

		if _, ok := doc[domain.MetaField].(map[string]any); !ok {
			report.add(c.Name, id, IssueMissingMeta, "document has no meta")
		}

		for name, values := range uniques {
			value, ok := doc[name]
			if !ok || value == nil || !comparableValue(value) {
				continue
			}
			if _, dup := values[value]; dup {
				report.add(c.Name, id, IssueUniqueDup, fmt.Sprintf("%s=%v is not unique", name, value))
				continue
			}
			values[value] = struct{}{}
		}
	}
}

func (r *Report) add(collection string, docID int64, kind, detail string) {
	r.Issues = append(r.Issues, Issue{
		Collection: collection,
		DocID:      docID,
		Kind:       kind,
		Detail:     detail,
	})
}

// Mirrors what the store will index: composite values never participate in
// unique constraints.
func comparableValue(value any) bool {
	switch value.(type) {
	case map[string]any, domain.Document, []any:
		return false
	default:
		return true
	}
}
