package domain

import "testing"

func TestChangeValidateInsert(t *testing.T) {
	change := Change{
		ID:         "01H123",
		Timestamp:  1,
		Collection: "users",
		DocID:      1,
		Op:         ChangeOpInsert,
		Doc:        Document{"name": "Ada"},
	}

	if err := change.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestChangeValidateInsertRequiresDoc(t *testing.T) {
	change := Change{
		ID:         "01H123",
		Timestamp:  1,
		Collection: "users",
		DocID:      1,
		Op:         ChangeOpInsert,
	}

	if err := change.Validate(); err != ErrChangeDocRequired {
		t.Fatalf("expected ErrChangeDocRequired, got %v", err)
	}
}

func TestChangeValidateRemoveWithoutDoc(t *testing.T) {
	change := Change{
		ID:         "01H123",
		Timestamp:  1,
		Collection: "users",
		DocID:      1,
		Op:         ChangeOpRemove,
	}

	if err := change.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestChangeValidateOp(t *testing.T) {
	change := Change{
		ID:         "01H123",
		Timestamp:  1,
		Collection: "users",
		DocID:      1,
		Op:         ChangeOpUnknown,
		Doc:        Document{"name": "Ada"},
	}

	if err := change.Validate(); err != ErrInvalidChangeOp {
		t.Fatalf("expected ErrInvalidChangeOp, got %v", err)
	}
}
