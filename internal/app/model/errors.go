package model

import "errors"

var ErrModelExists = errors.New("model already declared")
var ErrDocumentRequired = errors.New("document is required")
var ErrDocNotFound = errors.New("document not found")
var ErrPatchRequired = errors.New("patch is required")
var ErrPatchUnsupported = errors.New("patch operations not supported")
