package pbcodec

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/shapedb/shapedb/internal/domain"
)

// Codec encodes snapshot trees as a protobuf Struct. Marshaling is
// deterministic, so equal trees produce identical bytes. Values with no
// protobuf representation are rewritten first: timestamps become RFC 3339
// strings, typed documents become plain maps.
type Codec struct{}

func (Codec) Encode(tree map[string]any) ([]byte, error) {
	return Encode(tree)
}

func (Codec) Decode(data []byte) (map[string]any, error) {
	return Decode(data)
}

func Encode(tree map[string]any) ([]byte, error) {
	pb, err := structpb.NewStruct(normalizeTree(tree))
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}

	out, err := proto.MarshalOptions{Deterministic: true}.Marshal(pb)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return out, nil
}

func Decode(data []byte) (map[string]any, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("decode struct: %w", err)
	}
	return pb.AsMap(), nil
}

func normalizeTree(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case domain.Document:
		return normalizeTree(v)
	case map[string]any:
		return normalizeTree(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}
