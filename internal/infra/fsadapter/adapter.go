package fsadapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/shapedb/shapedb/internal/domain"
)

// Adapter persists snapshots to a single file. Writes go through a rename,
// so a crash mid-save leaves the previous snapshot intact.
type Adapter struct {
	path string
}

func New(path string) (*Adapter, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("snapshot path required")
	}
	return &Adapter{path: path}, nil
}

func (a *Adapter) Path() string { return a.path }

func (a *Adapter) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(a.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	if err := atomic.WriteFile(a.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (a *Adapter) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", a.path, domain.ErrNoSnapshot)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}
