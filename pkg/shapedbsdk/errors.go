package shapedbsdk

import (
	"errors"

	"github.com/shapedb/shapedb/internal/app/model"
	"github.com/shapedb/shapedb/internal/app/normalize"
	"github.com/shapedb/shapedb/internal/domain"
	"github.com/shapedb/shapedb/internal/infra/memstore"
)

var (
	ErrPathRequired    = errors.New("shapedb-sdk: path required")
	ErrAutosaveRunning = errors.New("shapedb-sdk: autosave already running")
)

// Sentinels raised by the underlying layers, re-exported so callers can
// match them with errors.Is without importing internal packages.
var (
	ErrNoSnapshot        = domain.ErrNoSnapshot
	ErrModelExists       = model.ErrModelExists
	ErrNotFound          = model.ErrDocNotFound
	ErrNotNull           = normalize.ErrNotNull
	ErrUniqueViolation   = memstore.ErrUniqueViolation
	ErrHasID             = memstore.ErrHasID
	ErrMissingID         = memstore.ErrMissingID
	ErrUnknownCollection = memstore.ErrUnknownCollection
)
