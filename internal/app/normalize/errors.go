package normalize

import "errors"

var ErrNotNull = errors.New("value cannot be null")
