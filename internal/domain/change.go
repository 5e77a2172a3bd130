package domain

import "errors"

type ChangeOp int

const (
	ChangeOpUnknown ChangeOp = iota
	ChangeOpInsert
	ChangeOpUpdate
	ChangeOpRemove
)

var (
	ErrChangeIDRequired        = errors.New("change id is required")
	ErrChangeTimestampRequired = errors.New("change timestamp is required")
	ErrChangeCollectionMissing = errors.New("change collection is required")
	ErrChangeDocRequired       = errors.New("change document is required")
	ErrInvalidChangeOp         = errors.New("invalid change op")
)

// Change is one entry in a collection's change log, recorded when the
// collection was created with TrackChanges.
type Change struct {
	ID         string
	Timestamp  int64
	Collection string
	DocID      int64
	Op         ChangeOp
	Doc        Document
}

func (op ChangeOp) IsValid() bool {
	return op >= ChangeOpInsert && op <= ChangeOpRemove
}

func (op ChangeOp) String() string {
	switch op {
	case ChangeOpInsert:
		return "insert"
	case ChangeOpUpdate:
		return "update"
	case ChangeOpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

func (c Change) Validate() error {
	if c.ID == "" {
		return ErrChangeIDRequired
	}
	if c.Timestamp == 0 {
		return ErrChangeTimestampRequired
	}
	if c.Collection == "" {
		return ErrChangeCollectionMissing
	}
	if !c.Op.IsValid() {
		return ErrInvalidChangeOp
	}
	if c.Op != ChangeOpRemove && c.Doc == nil {
		return ErrChangeDocRequired
	}
	return nil
}
