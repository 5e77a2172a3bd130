package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shapedb/shapedb/internal/app/inspect"
	"github.com/shapedb/shapedb/internal/app/integrity"
	"github.com/shapedb/shapedb/internal/app/schema"
	"github.com/shapedb/shapedb/internal/app/snapshot"
	"github.com/shapedb/shapedb/internal/domain"
	"github.com/shapedb/shapedb/internal/infra/canonicaljson"
	"github.com/shapedb/shapedb/internal/infra/filesystem"
	"github.com/shapedb/shapedb/internal/infra/hash"
	"github.com/shapedb/shapedb/internal/infra/modelfile"
	"github.com/shapedb/shapedb/internal/infra/pbcodec"
	"github.com/shapedb/shapedb/internal/infra/schemaimport"
	"github.com/shapedb/shapedb/internal/infra/snapjson"
	"github.com/shapedb/shapedb/pkg/shapedbsdk"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInitCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a database snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
				if err := db.Save(cmd.Context()); err != nil {
					return err
				}
				return writeInitResult(cmd, db.Path(), db.Models(), opts.JSONOutput)
			})
		},
	}
}

func newStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show snapshot and collection status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
				return writeStatus(cmd, db.Status(), opts.JSONOutput)
			})
		},
	}
}

func newInspectCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [snapshot-file]",
		Short: "Summarize a snapshot file without loading it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.DBPath
			if len(args) == 1 {
				path = args[0]
			}
			service := inspect.NewService(
				filesystem.SnapshotSource{},
				snapshotDecoder(path),
				snapjson.Codec{},
				canonicaljson.Canonicalizer{},
				hash.SHA256{},
			)
			report, err := service.Inspect(cmd.Context(), path)
			if err != nil {
				return err
			}
			return writeInspectReport(cmd, report, opts.JSONOutput)
		},
	}
}

func newVerifyCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [snapshot-file]",
		Short: "Check the invariants of a snapshot file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.DBPath
			if len(args) == 1 {
				path = args[0]
			}
			state, err := readSnapshotState(cmd.Context(), path)
			if err != nil {
				return err
			}
			report := integrity.Verify(state)
			if err := writeVerifyReport(cmd, report, opts.JSONOutput); err != nil {
				return err
			}
			if !report.Clean() {
				return ExitError{
					Code:    ExitConflict,
					Kind:    KindConflict,
					Message: fmt.Sprintf("%d integrity issue(s) found", len(report.Issues)),
				}
			}
			return nil
		},
	}
}

func newModelsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Validate and list the declared models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.ModelsPath) == "" {
				return fmt.Errorf("model file: %w", ErrInputRequired)
			}
			compiled, err := modelfile.Load(opts.ModelsPath)
			if err != nil {
				return err
			}
			defs := make([]domain.ModelDefinition, 0, len(compiled))
			for _, entry := range compiled {
				def, err := schema.CompileModel(entry.Name, entry.Decl, entry.Options)
				if err != nil {
					return err
				}
				defs = append(defs, def)
			}
			return writeModels(cmd, defs, opts.JSONOutput)
		},
	}
}

func newInsertCmd(opts *RootOptions) *cobra.Command {
	var doc string
	var file string
	cmd := &cobra.Command{
		Use:   "insert <model>",
		Short: "Insert one or more documents through a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readJSONInput("doc", doc, file)
			if err != nil {
				return err
			}
			docs, err := decodeDocuments(data)
			if err != nil {
				return err
			}
			return runWithSave(cmd, opts, func(db *shapedbsdk.Database) error {
				m, err := resolveModel(db, args[0])
				if err != nil {
					return err
				}
				inserted, err := m.InsertBatch(docs)
				if err != nil {
					return err
				}
				return writeDocs(cmd, inserted, opts.JSONOutput)
			})
		},
	}
	cmd.Flags().StringVar(&doc, "doc", "", "Inline JSON document or array of documents")
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON document or array of documents")
	return cmd
}

func newUpdateCmd(opts *RootOptions) *cobra.Command {
	var doc string
	var file string
	var raw bool
	cmd := &cobra.Command{
		Use:   "update <model>",
		Short: "Update documents by $id through a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readJSONInput("doc", doc, file)
			if err != nil {
				return err
			}
			docs, err := decodeDocuments(data)
			if err != nil {
				return err
			}
			return runWithSave(cmd, opts, func(db *shapedbsdk.Database) error {
				m, err := resolveModel(db, args[0])
				if err != nil {
					return err
				}
				if raw {
					updated, err := m.UpdateBatch(docs)
					if err != nil {
						return err
					}
					return writeDocs(cmd, updated, opts.JSONOutput)
				}
				updated := make([]shapedbsdk.Document, 0, len(docs))
				for _, d := range docs {
					u, err := m.Update(d)
					if err != nil {
						return err
					}
					updated = append(updated, u)
				}
				return writeDocs(cmd, updated, opts.JSONOutput)
			})
		},
	}
	cmd.Flags().StringVar(&doc, "doc", "", "Inline JSON document or array of documents")
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON document or array of documents")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write documents back without running property rules")
	return cmd
}

func newPatchCmd(opts *RootOptions) *cobra.Command {
	var ops string
	var file string
	cmd := &cobra.Command{
		Use:   "patch <model> <id>",
		Short: "Apply a JSON Patch to one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDocID(args[1])
			if err != nil {
				return err
			}
			data, err := readJSONInput("ops", ops, file)
			if err != nil {
				return err
			}
			return runWithSave(cmd, opts, func(db *shapedbsdk.Database) error {
				m, err := resolveModel(db, args[0])
				if err != nil {
					return err
				}
				patched, err := m.Patch(id, data)
				if err != nil {
					return err
				}
				return writeDoc(cmd, patched, opts.JSONOutput)
			})
		},
	}
	cmd.Flags().StringVar(&ops, "ops", "", "Inline JSON Patch operations")
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON Patch file")
	return cmd
}

func newGetCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Fetch one document by $id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDocID(args[1])
			if err != nil {
				return err
			}
			return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
				doc, err := db.Find(args[0], id)
				if err != nil {
					return err
				}
				return writeDoc(cmd, doc, opts.JSONOutput)
			})
		},
	}
}

func newListCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection>",
		Short: "List every document in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
				docs, err := db.Documents(args[0])
				if err != nil {
					return err
				}
				return writeDocs(cmd, docs, opts.JSONOutput)
			})
		},
	}
}

func newChangesCmd(opts *RootOptions) *cobra.Command {
	var flush bool
	cmd := &cobra.Command{
		Use:   "changes <collection>",
		Short: "Show the pending change log of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
				changes, err := db.Changes(args[0])
				if err != nil {
					return err
				}
				if flush {
					if err := db.FlushChanges(args[0]); err != nil {
						return err
					}
				}
				return writeChanges(cmd, changes, opts.JSONOutput)
			})
		},
	}
	cmd.Flags().BoolVar(&flush, "flush", false, "Clear the change log after printing it")
	return cmd
}

func newDumpCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the database as canonical JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
				data, err := db.Dump()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if _, err := out.Write(data); err != nil {
					return err
				}
				if len(data) == 0 || data[len(data)-1] != '\n' {
					if _, err := io.WriteString(out, "\n"); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newPurgeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
				purged := db.PurgeStale()
				if purged > 0 {
					if err := db.Save(cmd.Context()); err != nil {
						return err
					}
				}
				return writePurgeResult(cmd, purged, opts.JSONOutput)
			})
		},
	}
}

func newSchemaCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Work with JSON Schema documents",
		RunE:  runHelp,
	}
	cmd.AddCommand(newSchemaImportCmd(opts))
	return cmd
}

func newSchemaImportCmd(opts *RootOptions) *cobra.Command {
	var name string
	var outPath string
	cmd := &cobra.Command{
		Use:   "import <schema.json>",
		Short: "Convert a JSON Schema into a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema file: %w", err)
			}
			imp, err := schemaimport.Parse(data)
			if err != nil {
				return err
			}
			modelName := strings.TrimSpace(name)
			if modelName == "" {
				modelName = imp.Name
			}
			if modelName == "" {
				return fmt.Errorf("model name: %w", ErrInputRequired)
			}
			file := modelfile.File{Models: []modelfile.Model{importedModel(modelName, imp)}}
			encoded, err := yaml.Marshal(file)
			if err != nil {
				return fmt.Errorf("encode model file: %w", err)
			}
			if strings.TrimSpace(outPath) == "" {
				_, err := cmd.OutOrStdout().Write(encoded)
				return err
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write model file: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Model name override (defaults to the schema title)")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the model file here instead of stdout")
	return cmd
}

func openDatabase(cmd *cobra.Command, opts *RootOptions) (*shapedbsdk.Database, error) {
	cfg := shapedbsdk.DefaultConfig(opts.DBPath)
	cfg.Backend = shapedbsdk.Backend(opts.Backend)
	cfg.Format = shapedbsdk.Format(opts.Format)
	cfg.Logger = slog.Default()
	db, err := shapedbsdk.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.ModelsPath) != "" {
		if _, err := db.DeclareFile(opts.ModelsPath); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func withDatabase(cmd *cobra.Command, opts *RootOptions, fn func(db *shapedbsdk.Database) error) error {
	db, err := openDatabase(cmd, opts)
	if err != nil {
		return err
	}
	runErr := fn(db)
	if closeErr := db.Close(); runErr == nil {
		runErr = closeErr
	}
	return runErr
}

func runWithSave(cmd *cobra.Command, opts *RootOptions, fn func(db *shapedbsdk.Database) error) error {
	return withDatabase(cmd, opts, func(db *shapedbsdk.Database) error {
		if err := fn(db); err != nil {
			return err
		}
		return db.Save(cmd.Context())
	})
}

// snapshotDecoder picks the codec by file extension, matching how the SDK
// names snapshot files.
func snapshotDecoder(path string) inspect.Decoder {
	if strings.HasSuffix(path, ".pb") {
		return pbcodec.Codec{}
	}
	return snapjson.Codec{}
}

func readSnapshotState(ctx context.Context, path string) (domain.DatabaseState, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.DatabaseState{}, fmt.Errorf("snapshot path: %w", ErrInputRequired)
	}
	data, err := filesystem.SnapshotSource{}.ReadSnapshot(ctx, path)
	if err != nil {
		return domain.DatabaseState{}, err
	}
	tree, err := snapshotDecoder(path).Decode(data)
	if err != nil {
		return domain.DatabaseState{}, fmt.Errorf("decode snapshot: %w", err)
	}
	state, err := snapshot.Parse(tree)
	if err != nil {
		return domain.DatabaseState{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return state, nil
}

func resolveModel(db *shapedbsdk.Database, name string) (*shapedbsdk.Model, error) {
	m := db.Model(name)
	if m == nil {
		return nil, fmt.Errorf("model %s: %w", name, ErrModelUnknown)
	}
	return m, nil
}

func parseDocID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDocID, value)
	}
	return id, nil
}

func decodeDocuments(data []byte) ([]shapedbsdk.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []shapedbsdk.Document
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("parse documents: %w", err)
		}
		return docs, nil
	}
	var doc shapedbsdk.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return []shapedbsdk.Document{doc}, nil
}

func readJSONInput(label, inline, filePath string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	filePath = strings.TrimSpace(filePath)
	if inline != "" && filePath != "" {
		return nil, ExitError{
			Code:    ExitInvalid,
			Kind:    KindValidation,
			Message: fmt.Sprintf("use either --%s or --file, not both", label),
		}
	}
	if inline == "" && filePath == "" {
		return nil, ExitError{
			Code:    ExitInvalid,
			Kind:    KindValidation,
			Message: fmt.Sprintf("%s is required (use --%s or --file)", label, label),
		}
	}
	if inline != "" {
		return []byte(inline), nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", label, err)
	}
	return data, nil
}

func importedModel(name string, imp schemaimport.Import) modelfile.Model {
	m := modelfile.Model{Name: name, AllowExtra: imp.Options.AllowExtra}
	for _, prop := range imp.Decl {
		m.Properties = append(m.Properties, modelfile.Property{
			Name:    prop.Name,
			Type:    prop.Rule.Type.Name,
			NotNull: prop.Rule.NotNull,
			Default: prop.Rule.Default,
			Unique:  prop.Rule.Unique,
		})
	}
	return m
}

type initOutput struct {
	Path   string   `json:"path"`
	Models []string `json:"models,omitempty"`
}

type collectionOutput struct {
	Name      string   `json:"name"`
	Documents int      `json:"documents"`
	MaxID     int64    `json:"max_id"`
	Unique    []string `json:"unique,omitempty"`
	Strict    bool     `json:"strict"`
}

type statusOutput struct {
	Name        string             `json:"name"`
	Path        string             `json:"path"`
	Format      string             `json:"format"`
	Backend     string             `json:"backend"`
	SaveMode    string             `json:"save_mode"`
	Dirty       bool               `json:"dirty"`
	Collections []collectionOutput `json:"collections,omitempty"`
}

type propertyOutput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	NotNull bool   `json:"not_null,omitempty"`
	Default any    `json:"default,omitempty"`
	Unique  bool   `json:"unique,omitempty"`
}

type modelOutput struct {
	Name       string           `json:"name"`
	Strict     bool             `json:"strict"`
	Unique     []string         `json:"unique,omitempty"`
	Properties []propertyOutput `json:"properties"`
}

type inspectCollectionOutput struct {
	Name         string   `json:"name"`
	Documents    int      `json:"documents"`
	MaxID        int64    `json:"max_id"`
	Unique       []string `json:"unique,omitempty"`
	TrackChanges bool     `json:"track_changes,omitempty"`
}

type inspectOutput struct {
	Path        string                    `json:"path"`
	Name        string                    `json:"name"`
	Version     int                       `json:"version"`
	SavedAt     string                    `json:"saved_at"`
	Digest      string                    `json:"digest"`
	Documents   int                       `json:"documents"`
	Collections []inspectCollectionOutput `json:"collections,omitempty"`
}

type issueOutput struct {
	Collection string `json:"collection"`
	DocID      int64  `json:"doc_id,omitempty"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
}

type verifyOutput struct {
	Collections int           `json:"collections"`
	Documents   int           `json:"documents"`
	Clean       bool          `json:"clean"`
	Issues      []issueOutput `json:"issues,omitempty"`
}

type changeOutput struct {
	ID    string              `json:"id"`
	At    string              `json:"at"`
	Op    string              `json:"op"`
	DocID int64               `json:"doc_id"`
	Doc   shapedbsdk.Document `json:"doc,omitempty"`
}

type purgeOutput struct {
	Purged int `json:"purged"`
}

func writeInitResult(cmd *cobra.Command, path string, models []string, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(initOutput{Path: path, Models: models})
	}
	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Created", path); err != nil {
		return err
	}
	if len(models) > 0 {
		return writeKV(out, ui, "Models", strings.Join(models, ", "))
	}
	return nil
}

func writeStatus(cmd *cobra.Command, status shapedbsdk.Status, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		output := statusOutput{
			Name:     status.Name,
			Path:     status.Path,
			Format:   string(status.Format),
			Backend:  string(status.Backend),
			SaveMode: string(status.SaveMode),
			Dirty:    status.Dirty,
		}
		for _, c := range status.Collections {
			output.Collections = append(output.Collections, collectionOutput{
				Name:      c.Name,
				Documents: c.Documents,
				MaxID:     c.MaxID,
				Unique:    c.Unique,
				Strict:    c.Strict,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Name", status.Name); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Path", status.Path); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Format", string(status.Format)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Backend", string(status.Backend)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Save Mode", string(status.SaveMode)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Dirty", fmt.Sprintf("%t", status.Dirty)); err != nil {
		return err
	}
	if len(status.Collections) == 0 {
		return writeKV(out, ui, "Collections", ui.dim("(none)"))
	}
	for _, c := range status.Collections {
		value := fmt.Sprintf("%d documents, max id %d", c.Documents, c.MaxID)
		if c.Strict {
			value += ", strict"
		}
		if len(c.Unique) > 0 {
			value += ", unique " + strings.Join(c.Unique, ",")
		}
		if err := writeKV(out, ui, c.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func writeInspectReport(cmd *cobra.Command, report inspect.Report, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		output := inspectOutput{
			Path:      report.Path,
			Name:      report.Name,
			Version:   report.Version,
			SavedAt:   report.SavedAt.Format(time.RFC3339),
			Digest:    report.Digest,
			Documents: report.TotalDocuments(),
		}
		for _, c := range report.Collections {
			output.Collections = append(output.Collections, inspectCollectionOutput{
				Name:         c.Name,
				Documents:    c.Documents,
				MaxID:        c.MaxID,
				Unique:       c.Unique,
				TrackChanges: c.TrackChanges,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Name", report.Name); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Path", report.Path); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Version", fmt.Sprintf("%d", report.Version)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Saved At", report.SavedAt.Format(time.RFC3339)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Digest", ui.dim(report.Digest)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Documents", fmt.Sprintf("%d", report.TotalDocuments())); err != nil {
		return err
	}
	for _, c := range report.Collections {
		value := fmt.Sprintf("%d documents, max id %d", c.Documents, c.MaxID)
		if len(c.Unique) > 0 {
			value += ", unique " + strings.Join(c.Unique, ",")
		}
		if c.TrackChanges {
			value += ", changes tracked"
		}
		if err := writeKV(out, ui, c.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func writeVerifyReport(cmd *cobra.Command, report integrity.Report, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		output := verifyOutput{
			Collections: report.Collections,
			Documents:   report.Documents,
			Clean:       report.Clean(),
		}
		for _, issue := range report.Issues {
			output.Issues = append(output.Issues, issueOutput{
				Collection: issue.Collection,
				DocID:      issue.DocID,
				Kind:       issue.Kind,
				Detail:     issue.Detail,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Collections", fmt.Sprintf("%d", report.Collections)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Documents", fmt.Sprintf("%d", report.Documents)); err != nil {
		return err
	}
	if report.Clean() {
		return writeKV(out, ui, "Integrity", ui.ok("ok"))
	}
	for _, issue := range report.Issues {
		ref := issue.Collection
		if issue.DocID != 0 {
			ref = fmt.Sprintf("%s #%d", issue.Collection, issue.DocID)
		}
		line := fmt.Sprintf("%s %s: %s", ui.err(issue.Kind), ui.key(ref), issue.Detail)
		if _, err := fmt.Fprintf(out, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func writeModels(cmd *cobra.Command, defs []domain.ModelDefinition, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		models := make([]modelOutput, 0, len(defs))
		for _, def := range defs {
			m := modelOutput{Name: def.Name, Strict: def.Strict, Unique: def.Unique}
			for _, name := range def.Order {
				rule := def.Rules[name]
				m.Properties = append(m.Properties, propertyOutput{
					Name:    name,
					Type:    rule.Coerce.Name,
					NotNull: rule.NotNull,
					Default: rule.Default,
					Unique:  rule.Unique,
				})
			}
			models = append(models, m)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(models)
	}

	ui := newRenderer(out, asJSON)
	for _, def := range defs {
		header := def.Name
		if def.Strict {
			header += " " + ui.dim("(strict)")
		}
		if _, err := fmt.Fprintf(out, "%s\n", ui.accent(header)); err != nil {
			return err
		}
		for _, name := range def.Order {
			rule := def.Rules[name]
			attrs := []string{rule.Coerce.Name}
			if rule.NotNull {
				attrs = append(attrs, "not null")
			}
			if rule.Unique {
				attrs = append(attrs, "unique")
			}
			if rule.Default != nil {
				attrs = append(attrs, fmt.Sprintf("default %v", rule.Default))
			}
			if _, err := fmt.Fprintf(out, "  %s: %s\n", ui.key(name), strings.Join(attrs, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDoc(cmd *cobra.Command, doc shapedbsdk.Document, asJSON bool) error {
	out := cmd.OutOrStdout()
	encoder := json.NewEncoder(out)
	if asJSON {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(doc)
}

func writeDocs(cmd *cobra.Command, docs []shapedbsdk.Document, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(docs)
	}
	ui := newRenderer(out, asJSON)
	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		id := ui.key(strconv.FormatInt(doc.ID(), 10))
		if _, err := fmt.Fprintf(out, "%s %s\n", id, line); err != nil {
			return err
		}
	}
	return nil
}

func writeChanges(cmd *cobra.Command, changes []shapedbsdk.Change, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		output := make([]changeOutput, 0, len(changes))
		for _, ch := range changes {
			output = append(output, changeOutput{
				ID:    ch.ID,
				At:    ch.At.Format(time.RFC3339),
				Op:    ch.Op,
				DocID: ch.DocID,
				Doc:   ch.Doc,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	if len(changes) == 0 {
		_, err := fmt.Fprintf(out, "%s\n", ui.dim("(no pending changes)"))
		return err
	}
	for _, ch := range changes {
		at := ui.dim(ch.At.Format(time.RFC3339))
		ref := ui.key(fmt.Sprintf("#%d", ch.DocID))
		if _, err := fmt.Fprintf(out, "%s %s %s\n", at, colorOp(ui, ch.Op), ref); err != nil {
			return err
		}
	}
	return nil
}

func writePurgeResult(cmd *cobra.Command, purged int, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(purgeOutput{Purged: purged})
	}
	ui := newRenderer(out, asJSON)
	return writeKV(out, ui, "Purged", fmt.Sprintf("%d document(s)", purged))
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}

func runHelp(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
