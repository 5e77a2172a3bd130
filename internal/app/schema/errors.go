package schema

import "errors"

var ErrModelNameRequired = errors.New("model name is required")
var ErrInvalidModelName = errors.New("invalid model name")
