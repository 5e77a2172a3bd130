package filesystem

import (
	"context"
	"fmt"
	"os"
)

// SnapshotSource reads snapshot files straight from disk.
type SnapshotSource struct{}

func (SnapshotSource) ReadSnapshot(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}
