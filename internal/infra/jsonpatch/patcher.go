package jsonpatch

import (
	"fmt"

	"github.com/evanphx/json-patch/v5"
)

type Patcher struct{}

func (Patcher) Apply(target, patch []byte) ([]byte, error) {
	decoded, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}

	out, err := decoded.Apply(target)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	return out, nil
}
