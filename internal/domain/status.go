package domain

// CollectionStatus is the per-collection line of a database status report.
// Strict reflects the declared model backing the collection, when one
// exists.
type CollectionStatus struct {
	Name      string
	Documents int
	MaxID     int64
	Unique    []string
	Strict    bool
}
