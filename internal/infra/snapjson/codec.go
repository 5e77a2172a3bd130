package snapjson

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/shapedb/shapedb/internal/domain"
)

// Codec encodes snapshot trees and single documents as canonical JSON:
// object keys sorted, no insignificant whitespace. Two encodes of the same
// state produce identical bytes.
type Codec struct{}

func (Codec) Encode(tree map[string]any) ([]byte, error) {
	return marshalCanonical(tree)
}

func (Codec) Decode(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return tree, nil
}

func (Codec) Marshal(doc domain.Document) ([]byte, error) {
	return marshalCanonical(doc)
}

func (Codec) Unmarshal(data []byte) (domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func marshalCanonical(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	canonical := jsontext.Value(data)
	if err := canonical.Canonicalize(); err != nil {
		return nil, fmt.Errorf("canonicalize json: %w", err)
	}
	return []byte(canonical), nil
}
