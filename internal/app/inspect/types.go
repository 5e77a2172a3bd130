package inspect

import "time"

// CollectionSummary describes one collection exactly as the snapshot
// recorded it. Model settings are not part of a snapshot, so nothing here
// says whether the collection backed a strict model.
type CollectionSummary struct {
	Name         string
	Documents    int
	MaxID        int64
	Unique       []string
	TrackChanges bool
}

// Report summarizes a snapshot file without loading it into a store.
type Report struct {
	Path        string
	Name        string
	Version     int
	SavedAt     time.Time
	Digest      string
	Collections []CollectionSummary
}

// TotalDocuments sums the document counts of every collection.
func (r Report) TotalDocuments() int {
	total := 0
	for _, c := range r.Collections {
		total += c.Documents
	}
	return total
}
