package domain

// CollectionState is the persistable image of one collection: its documents
// in insertion order plus everything needed to rebuild indexes on load.
type CollectionState struct {
	Name         string
	Docs         []Document
	MaxID        int64
	Unique       []string
	TrackChanges bool
}

// DatabaseState is the persistable image of a whole database.
type DatabaseState struct {
	Header      SnapshotHeader
	Collections []CollectionState
}
