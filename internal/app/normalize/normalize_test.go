package normalize

import (
	"errors"
	"testing"

	"github.com/shapedb/shapedb/internal/app/schema"
	"github.com/shapedb/shapedb/internal/domain"
)

func compile(t *testing.T, name string, decl domain.Declaration, opts domain.ModelOptions) domain.ModelDefinition {
	t.Helper()
	def, err := schema.CompileModel(name, decl, opts)
	if err != nil {
		t.Fatalf("compile model: %v", err)
	}
	return def
}

func TestApplyCoercesDeclaredProperties(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		domain.Typed("age", domain.Integer),
		domain.Typed("name", domain.String),
	}, domain.ModelOptions{})

	out, err := Apply(def, domain.Document{"age": "30", "name": 42})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out["age"] != int64(30) {
		t.Fatalf("expected age 30, got %v (%T)", out["age"], out["age"])
	}
	if out["name"] != "42" {
		t.Fatalf("expected name \"42\", got %v", out["name"])
	}
}

func TestApplyUsesDefaultsForMissing(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		{Name: "active", Rule: domain.RuleDecl{Type: domain.Boolean, Default: 1}},
		domain.Typed("nickname", domain.String),
	}, domain.ModelOptions{})

	out, err := Apply(def, domain.Document{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out["active"] != true {
		t.Fatalf("expected coerced default true, got %v", out["active"])
	}
	if value, present := out["nickname"]; !present || value != nil {
		t.Fatalf("expected nickname present as nil, got %v present=%v", value, present)
	}
}

func TestApplyKeepsExplicitNull(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		{Name: "active", Rule: domain.RuleDecl{Type: domain.Boolean, Default: true}},
	}, domain.ModelOptions{})

	out, err := Apply(def, domain.Document{"active": nil})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out["active"] != nil {
		t.Fatalf("expected explicit null preserved, got %v", out["active"])
	}
}

func TestApplyNotNull(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		{Name: "email", Rule: domain.RuleDecl{Type: domain.String, NotNull: true}},
	}, domain.ModelOptions{})

	if _, err := Apply(def, domain.Document{}); !errors.Is(err, ErrNotNull) {
		t.Fatalf("expected ErrNotNull, got %v", err)
	}
	if _, err := Apply(def, domain.Document{"email": nil}); !errors.Is(err, ErrNotNull) {
		t.Fatalf("expected ErrNotNull for explicit null, got %v", err)
	}
}

func TestApplyNotNullAfterCoercion(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		{Name: "age", Rule: domain.RuleDecl{Type: domain.Integer, NotNull: true}},
	}, domain.ModelOptions{})

	if _, err := Apply(def, domain.Document{"age": "not a number"}); !errors.Is(err, ErrNotNull) {
		t.Fatalf("expected ErrNotNull for unparseable value, got %v", err)
	}
}

func TestApplyStrictDropsExtras(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		domain.Typed("name", domain.String),
	}, domain.ModelOptions{})

	out, err := Apply(def, domain.Document{"name": "Ada", "debug": true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, present := out["debug"]; present {
		t.Fatalf("expected undeclared property dropped, got %v", out)
	}
}

func TestApplyAllowExtraKeepsExtras(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		domain.Typed("name", domain.String),
	}, domain.ModelOptions{AllowExtra: true})

	out, err := Apply(def, domain.Document{"name": "Ada", "debug": true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out["debug"] != true {
		t.Fatalf("expected undeclared property kept, got %v", out)
	}
}

func TestApplyPassesReservedFieldsThrough(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		domain.Typed("name", domain.String),
	}, domain.ModelOptions{})

	meta := map[string]any{"revision": int64(3)}
	out, err := Apply(def, domain.Document{"name": "Ada", domain.MetaField: meta, domain.IDField: int64(7)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out[domain.IDField] != int64(7) {
		t.Fatalf("expected id preserved, got %v", out[domain.IDField])
	}
	if out[domain.MetaField].(map[string]any)["revision"] != int64(3) {
		t.Fatalf("expected meta preserved, got %v", out[domain.MetaField])
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	def := compile(t, "users", domain.Declaration{
		domain.Typed("age", domain.Integer),
	}, domain.ModelOptions{})

	in := domain.Document{"age": "30"}
	if _, err := Apply(def, in); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if in["age"] != "30" {
		t.Fatalf("expected input untouched, got %v", in["age"])
	}
}
