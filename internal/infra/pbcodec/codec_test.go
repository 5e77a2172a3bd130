package pbcodec

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tree := map[string]any{
		"name": "app.db",
		"collections": []any{
			map[string]any{
				"name":  "users",
				"maxId": int64(2),
				"data": []any{
					map[string]any{"name": "Ada", "$id": int64(1)},
				},
			},
		},
	}

	data, err := Encode(tree)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if decoded["name"] != "app.db" {
		t.Fatalf("expected name decoded, got %v", decoded["name"])
	}
	coll := decoded["collections"].([]any)[0].(map[string]any)
	if coll["maxId"] != float64(2) {
		t.Fatalf("expected numbers back as float64, got %T", coll["maxId"])
	}
	doc := coll["data"].([]any)[0].(map[string]any)
	if doc["name"] != "Ada" {
		t.Fatalf("expected document field, got %v", doc)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	tree := map[string]any{"b": int64(2), "a": "one", "nested": map[string]any{"y": 1, "x": 2}}

	first, err := Encode(tree)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	second, err := Encode(tree)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical bytes")
	}
}

func TestEncodeRewritesTime(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	data, err := Encode(map[string]any{"savedAt": at})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if decoded["savedAt"] != "2024-03-01T12:00:00Z" {
		t.Fatalf("expected RFC3339 text, got %v", decoded["savedAt"])
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not protobuf")); err == nil {
		t.Fatalf("expected decode error")
	}
}
