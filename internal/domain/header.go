package domain

import "time"

const SnapshotVersion = 2

// SnapshotHeader identifies a serialized database image. Version gates how a
// loader interprets the rest of the tree.
type SnapshotHeader struct {
	Version int
	Name    string
	SavedAt time.Time
}

func NewSnapshotHeader(name string, savedAt time.Time) SnapshotHeader {
	return SnapshotHeader{
		Version: SnapshotVersion,
		Name:    name,
		SavedAt: savedAt.UTC(),
	}
}

func (h SnapshotHeader) WithDefaults() SnapshotHeader {
	if h.Version == 0 {
		h.Version = 1
	}
	return h
}
