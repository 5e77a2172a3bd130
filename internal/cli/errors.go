package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shapedb/shapedb/internal/app/inspect"
	"github.com/shapedb/shapedb/internal/app/model"
	"github.com/shapedb/shapedb/internal/app/normalize"
	"github.com/shapedb/shapedb/internal/app/schema"
	"github.com/shapedb/shapedb/internal/domain"
	"github.com/shapedb/shapedb/internal/infra/memstore"
	"github.com/shapedb/shapedb/internal/infra/modelfile"
	"github.com/shapedb/shapedb/internal/infra/schemaimport"
	"github.com/shapedb/shapedb/pkg/shapedbsdk"
)

var (
	ErrModelUnknown  = errors.New("model is not declared (check --models)")
	ErrInvalidDocID  = errors.New("document id must be an integer")
	ErrInputRequired = errors.New("input is required")
)

type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
)

const (
	ExitInternal = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitConflict = 4
)

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, model.ErrDocNotFound),
		errors.Is(err, memstore.ErrUnknownID),
		errors.Is(err, memstore.ErrUnknownCollection),
		errors.Is(err, domain.ErrNoSnapshot),
		errors.Is(err, ErrModelUnknown):
		return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: err}
	case errors.Is(err, model.ErrModelExists),
		errors.Is(err, memstore.ErrUniqueViolation),
		errors.Is(err, memstore.ErrHasID):
		return ExitError{Code: ExitConflict, Kind: KindConflict, Err: err}
	case errors.Is(err, shapedbsdk.ErrPathRequired),
		errors.Is(err, schema.ErrModelNameRequired),
		errors.Is(err, schema.ErrInvalidModelName),
		errors.Is(err, domain.ErrPropertyNameRequired),
		errors.Is(err, domain.ErrReservedProperty),
		errors.Is(err, domain.ErrDuplicateProperty),
		errors.Is(err, normalize.ErrNotNull),
		errors.Is(err, model.ErrDocumentRequired),
		errors.Is(err, model.ErrPatchRequired),
		errors.Is(err, memstore.ErrMissingID),
		errors.Is(err, memstore.ErrNilDocument),
		errors.Is(err, memstore.ErrCollectionNameRequired),
		errors.Is(err, memstore.ErrInvalidCollectionName),
		errors.Is(err, schemaimport.ErrSchemaRequired),
		errors.Is(err, schemaimport.ErrInvalidSchema),
		errors.Is(err, modelfile.ErrNoModels),
		errors.Is(err, inspect.ErrPathRequired),
		errors.Is(err, ErrInvalidDocID),
		errors.Is(err, ErrInputRequired):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
