package domain

import "errors"

var ErrPropertyNameRequired = errors.New("property name is required")
var ErrReservedProperty = errors.New("property name is reserved")
var ErrDuplicateProperty = errors.New("property declared more than once")
var ErrNoSnapshot = errors.New("no snapshot")
