package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shapedb/shapedb/pkg/shapedbsdk"
)

func main() {
	path := os.Getenv("SHAPEDB_PATH")
	if path == "" {
		fmt.Fprintln(os.Stderr, "SHAPEDB_PATH is required (snapshot file path)")
		os.Exit(1)
	}

	cfg := shapedbsdk.DefaultConfig(path)
	cfg.Autosave = true

	ctx := context.Background()
	db, err := shapedbsdk.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	users, err := db.Declare(shapedbsdk.ModelSpec{
		Name: "users",
		Properties: []shapedbsdk.Property{
			{Name: "name", Type: "string", NotNull: true},
			{Name: "age", Type: "integer", Default: 18},
			{Name: "email", Type: "string", Unique: true},
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "declare: %v\n", err)
		os.Exit(1)
	}

	doc, err := users.Insert(shapedbsdk.Document{
		"name":  "Ada",
		"age":   "36",
		"email": fmt.Sprintf("ada+%d@example.com", time.Now().UnixNano()),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("inserted id=%d age=%v\n", doc.ID(), doc["age"])

	patched, err := users.Patch(doc.ID(), []byte(`[{"op":"replace","path":"/age","value":37}]`))
	if err != nil {
		fmt.Fprintf(os.Stderr, "patch: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("patched id=%d age=%v\n", patched.ID(), patched["age"])

	if err := db.Save(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}

	status := db.Status()
	for _, c := range status.Collections {
		fmt.Printf("collection %s docs=%d maxId=%d unique=%v\n", c.Name, c.Documents, c.MaxID, c.Unique)
	}
}
