package memstore

import "errors"

var ErrCollectionNameRequired = errors.New("collection name is required")
var ErrInvalidCollectionName = errors.New("invalid collection name")
var ErrUnknownCollection = errors.New("unknown collection")
var ErrNilDocument = errors.New("nil document")
var ErrHasID = errors.New("document already has an id; use update")
var ErrMissingID = errors.New("document has no id")
var ErrUnknownID = errors.New("no document with id")
var ErrUniqueViolation = errors.New("unique constraint violation")
