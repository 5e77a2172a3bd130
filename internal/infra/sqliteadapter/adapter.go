package sqliteadapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shapedb/shapedb/internal/domain"
)

// Adapter persists snapshots into a sqlite database, one row per snapshot
// name. Saves replace the previous row in a single statement.
type Adapter struct {
	db   *sql.DB
	name string
}

type OpenOptions struct {
	Fast bool
}

func Open(path, name string) (*Adapter, error) {
	return OpenWithOptions(path, name, OpenOptions{})
}

func OpenWithOptions(path, name string, opts OpenOptions) (*Adapter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("snapshot name required")
	}

	if shouldCreateDir(path) {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	adapter := &Adapter{db: db, name: name}
	if err := adapter.applyPragmas(context.Background(), opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := adapter.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return adapter, nil
}

func (a *Adapter) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Adapter) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			saved_at = excluded.saved_at
	`, a.name, data, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (a *Adapter) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := a.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE name = ?", a.name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", a.name, domain.ErrNoSnapshot)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

func (a *Adapter) initSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			saved_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

func (a *Adapter) applyPragmas(ctx context.Context, opts OpenOptions) error {
	if !opts.Fast {
		return nil
	}
	var mode string
	if err := a.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, "PRAGMA temp_store = MEMORY"); err != nil {
		return fmt.Errorf("set temp_store: %w", err)
	}
	return nil
}

func shouldCreateDir(path string) bool {
	if path == ":memory:" {
		return false
	}
	if strings.HasPrefix(path, "file:") {
		return false
	}
	return true
}
