package shapedbsdk

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shapedb/shapedb/internal/domain"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatProto Format = "proto"
)

type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendGit    Backend = "git"
)

type SaveMode string

const (
	SaveModeImmediate SaveMode = "immediate"
	SaveModeThrottled SaveMode = "throttled"
)

// Config defines how a database is opened and persisted.
type Config struct {
	// Name labels the database inside its snapshot header. Defaults to the
	// base name of Path.
	Name string
	// Path is the snapshot location: a file for the file backend, a SQLite
	// database for the sqlite backend, a repository directory for git.
	Path string
	// Format selects the snapshot encoding.
	Format Format
	// Backend selects where snapshots are stored.
	Backend Backend
	// SaveMode controls whether writes persist immediately or mark the
	// database dirty for a later save.
	SaveMode SaveMode
	// Autoload loads an existing snapshot during Open. A missing snapshot
	// is not an error; the database starts empty.
	Autoload bool
	// Autosave starts a background loop that saves the database whenever
	// it is dirty.
	Autosave bool
	// AutosaveInterval is the autosave poll interval.
	AutosaveInterval time.Duration
	// Fast relaxes SQLite durability pragmas for the sqlite backend.
	Fast bool
	// Logger receives structured records. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a throttled file-backed configuration.
func DefaultConfig(path string) Config {
	return Config{
		Name:             snapshotName(path),
		Path:             path,
		Format:           FormatJSON,
		Backend:          BackendFile,
		SaveMode:         SaveModeThrottled,
		Autoload:         true,
		AutosaveInterval: 5 * time.Second,
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return cfg, ErrPathRequired
	}
	if cfg.Name == "" {
		cfg.Name = snapshotName(cfg.Path)
	}
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}
	if cfg.SaveMode == "" {
		cfg.SaveMode = SaveModeThrottled
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 5 * time.Second
	}
	if _, err := toDomainFormat(cfg.Format); err != nil {
		return cfg, err
	}
	if _, err := toDomainSaveMode(cfg.SaveMode); err != nil {
		return cfg, err
	}
	switch cfg.Backend {
	case BackendFile, BackendSQLite, BackendGit:
	default:
		return cfg, fmt.Errorf("invalid backend: %s", cfg.Backend)
	}
	return cfg, nil
}

func snapshotName(path string) string {
	name := filepath.Base(strings.TrimSpace(path))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "shapedb"
	}
	return name
}

func toDomainFormat(format Format) (domain.SnapshotFormat, error) {
	switch format {
	case FormatJSON:
		return domain.SnapshotFormatJSON, nil
	case FormatProto:
		return domain.SnapshotFormatProto, nil
	default:
		return "", fmt.Errorf("invalid snapshot format: %s", format)
	}
}

func toDomainSaveMode(mode SaveMode) (domain.SaveMode, error) {
	switch mode {
	case SaveModeImmediate:
		return domain.SaveModeImmediate, nil
	case SaveModeThrottled:
		return domain.SaveModeThrottled, nil
	default:
		return "", fmt.Errorf("invalid save mode: %s", mode)
	}
}
