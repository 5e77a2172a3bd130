package modelfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleFile = `
models:
  - name: users
    collection:
      unique: [email]
      ttl: 30s
      ttlInterval: 5s
      trackChanges: true
    properties:
      - name: name
        type: string
        notNull: true
      - name: age
        type: integer
        default: 18
      - name: email
        type: string
        unique: true
  - name: events
    allowExtra: true
    properties:
      - name: at
        type: date
`

func TestParseModelFile(t *testing.T) {
	compiled, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("parse model file: %v", err)
	}
	if len(compiled) != 2 {
		t.Fatalf("expected 2 models, got %d", len(compiled))
	}

	users := compiled[0]
	if users.Name != "users" {
		t.Fatalf("expected users, got %s", users.Name)
	}
	if users.Options.AllowExtra {
		t.Fatalf("expected strict model by default")
	}
	if users.Options.Collection.TTL != 30*time.Second {
		t.Fatalf("expected ttl 30s, got %v", users.Options.Collection.TTL)
	}
	if users.Options.Collection.TTLInterval != 5*time.Second {
		t.Fatalf("expected ttl interval 5s, got %v", users.Options.Collection.TTLInterval)
	}
	if !users.Options.Collection.TrackChanges {
		t.Fatalf("expected change tracking on")
	}
	if len(users.Options.Collection.Unique) != 1 || users.Options.Collection.Unique[0] != "email" {
		t.Fatalf("expected unique [email], got %v", users.Options.Collection.Unique)
	}

	names := make([]string, 0, len(users.Decl))
	for _, p := range users.Decl {
		names = append(names, p.Name)
	}
	want := []string{"name", "age", "email"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected property order %v, got %v", want, names)
		}
	}
	if !users.Decl[0].Rule.NotNull {
		t.Fatalf("expected name to be not-null")
	}
	if users.Decl[1].Rule.Default != 18 {
		t.Fatalf("expected age default 18, got %v", users.Decl[1].Rule.Default)
	}
	if !users.Decl[2].Rule.Unique {
		t.Fatalf("expected email to be unique")
	}

	events := compiled[1]
	if !events.Options.AllowExtra {
		t.Fatalf("expected events to allow extra properties")
	}
	if events.Decl[0].Rule.Type.Name != "date" {
		t.Fatalf("expected date coercion, got %s", events.Decl[0].Rule.Type.Name)
	}
}

func TestParseUntypedPropertyDefaultsToAny(t *testing.T) {
	compiled, err := Parse([]byte("models:\n  - name: blobs\n    properties:\n      - name: payload\n"))
	if err != nil {
		t.Fatalf("parse model file: %v", err)
	}
	if compiled[0].Decl[0].Rule.Type.Name != "any" {
		t.Fatalf("expected any coercion, got %s", compiled[0].Decl[0].Rule.Type.Name)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	data := "models:\n  - name: users\n    description: oops\n"
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestParseRejectsUnknownType(t *testing.T) {
	data := "models:\n  - name: users\n    properties:\n      - name: age\n        type: long\n"
	_, err := Parse([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "invalid coercion type") {
		t.Fatalf("expected coercion type error, got %v", err)
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	data := "models:\n  - name: users\n    collection:\n      ttl: soon\n"
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestParseRequiresName(t *testing.T) {
	data := "models:\n  - properties:\n      - name: a\n"
	_, err := Parse([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected name error, got %v", err)
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse([]byte("models: []\n")); !errors.Is(err, ErrNoModels) {
		t.Fatalf("expected ErrNoModels, got %v", err)
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(sampleFile), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	compiled, err := Load(path)
	if err != nil {
		t.Fatalf("load model file: %v", err)
	}
	if len(compiled) != 2 {
		t.Fatalf("expected 2 models, got %d", len(compiled))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
