package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shapedb/shapedb/internal/app/model"
	"github.com/shapedb/shapedb/internal/app/normalize"
	"github.com/shapedb/shapedb/internal/app/schema"
	"github.com/shapedb/shapedb/internal/domain"
	"github.com/shapedb/shapedb/internal/infra/memstore"
	"github.com/shapedb/shapedb/internal/infra/modelfile"
	"github.com/shapedb/shapedb/internal/infra/schemaimport"
	"github.com/shapedb/shapedb/pkg/shapedbsdk"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantKind ErrorKind
	}{
		{err: model.ErrDocNotFound, wantCode: ExitNotFound, wantKind: KindNotFound},
		{err: memstore.ErrUnknownCollection, wantCode: ExitNotFound, wantKind: KindNotFound},
		{err: domain.ErrNoSnapshot, wantCode: ExitNotFound, wantKind: KindNotFound},
		{err: fmt.Errorf("model users: %w", ErrModelUnknown), wantCode: ExitNotFound, wantKind: KindNotFound},
		{err: model.ErrModelExists, wantCode: ExitConflict, wantKind: KindConflict},
		{err: memstore.ErrUniqueViolation, wantCode: ExitConflict, wantKind: KindConflict},
		{err: memstore.ErrHasID, wantCode: ExitConflict, wantKind: KindConflict},
		{err: shapedbsdk.ErrPathRequired, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: schema.ErrModelNameRequired, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: domain.ErrReservedProperty, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: normalize.ErrNotNull, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: memstore.ErrMissingID, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: schemaimport.ErrInvalidSchema, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: modelfile.ErrNoModels, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: ErrInvalidDocID, wantCode: ExitInvalid, wantKind: KindValidation},
		{err: errors.New("boom"), wantCode: ExitInternal, wantKind: KindInternal},
	}

	for _, tt := range tests {
		got := NormalizeError(tt.err)
		if got.Code != tt.wantCode {
			t.Fatalf("expected code %d, got %d for %v", tt.wantCode, got.Code, tt.err)
		}
		if got.Kind != tt.wantKind {
			t.Fatalf("expected kind %s, got %s for %v", tt.wantKind, got.Kind, tt.err)
		}
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Fatalf("expected ExitCode(nil) == 0")
	}

	custom := ExitError{Code: 9, Kind: KindInternal, Message: "custom"}
	if ExitCode(custom) != 9 {
		t.Fatalf("expected ExitCode(custom) == 9")
	}
}
