package inspect

import "context"

// SnapshotSource reads raw snapshot bytes from wherever a backend keeps
// them.
type SnapshotSource interface {
	ReadSnapshot(ctx context.Context, path string) ([]byte, error)
}

// Decoder turns raw snapshot bytes into a snapshot tree.
type Decoder interface {
	Decode(data []byte) (map[string]any, error)
}

// Encoder renders a snapshot tree as JSON for fingerprinting.
type Encoder interface {
	Encode(tree map[string]any) ([]byte, error)
}

// Canonicalizer rewrites JSON into its canonical byte form.
type Canonicalizer interface {
	Canonicalize(ctx context.Context, input []byte) ([]byte, error)
}

type Hasher interface {
	SumHex(data []byte) string
}
