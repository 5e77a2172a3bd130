package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/shapedb/shapedb/internal/app/snapshot"
	"github.com/shapedb/shapedb/internal/domain"
)

type Service struct {
	source  SnapshotSource
	decoder Decoder
	encoder Encoder
	canon   Canonicalizer
	hasher  Hasher
}

func NewService(source SnapshotSource, decoder Decoder, encoder Encoder, canon Canonicalizer, hasher Hasher) *Service {
	return &Service{
		source:  source,
		decoder: decoder,
		encoder: encoder,
		canon:   canon,
		hasher:  hasher,
	}
}

// Inspect reads a snapshot file and reports what it holds. The digest is
// computed over the parsed state re-encoded as canonical JSON, so snapshots
// with the same contents fingerprint identically whatever format they were
// written in.
func (s *Service) Inspect(ctx context.Context, path string) (Report, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Report{}, ErrPathRequired
	}

	data, err := s.source.ReadSnapshot(ctx, path)
	if err != nil {
		return Report{}, err
	}

	tree, err := s.decoder.Decode(data)
	if err != nil {
		return Report{}, fmt.Errorf("decode snapshot: %w", err)
	}

	state, err := snapshot.Parse(tree)
	if err != nil {
		return Report{}, fmt.Errorf("parse snapshot: %w", err)
	}

	digest, err := s.digest(ctx, state)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Path:    path,
		Name:    state.Header.Name,
		Version: state.Header.Version,
		SavedAt: state.Header.SavedAt,
		Digest:  digest,
	}
	for _, c := range state.Collections {
		report.Collections = append(report.Collections, CollectionSummary{
			Name:         c.Name,
			Documents:    len(c.Docs),
			MaxID:        c.MaxID,
			Unique:       c.Unique,
			TrackChanges: c.TrackChanges,
		})
	}
	return report, nil
}

// digest fingerprints the state, not the file. Canonicalization fixes
// object key order, so the result does not depend on map iteration.
func (s *Service) digest(ctx context.Context, state domain.DatabaseState) (string, error) {
	encoded, err := s.encoder.Encode(snapshot.Assemble(state, snapshot.Runtime{}))
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	canonical, err := s.canon.Canonicalize(ctx, encoded)
	if err != nil {
		return "", fmt.Errorf("canonicalize state: %w", err)
	}
	return s.hasher.SumHex(canonical), nil
}
