package snapshot

import "errors"

var ErrMalformedSnapshot = errors.New("malformed snapshot")
