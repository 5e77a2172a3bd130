package inspect

import "errors"

var ErrPathRequired = errors.New("snapshot path is required")
