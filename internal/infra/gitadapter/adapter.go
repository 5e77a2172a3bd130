package gitadapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/shapedb/shapedb/internal/domain"
)

// Adapter persists snapshots as commits in a local git repository: every
// save rewrites the snapshot file and commits it, so the repository history
// is the save history. Saving an unchanged snapshot is a no-op.
type Adapter struct {
	dir  string
	file string
}

func New(dir, file string) (*Adapter, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("repo dir required")
	}
	file = strings.TrimSpace(file)
	if file == "" {
		return nil, errors.New("snapshot file required")
	}
	return &Adapter{dir: dir, file: file}, nil
}

func (a *Adapter) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := a.openOrInit()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(a.dir, a.file), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if _, err := wt.Add(a.file); err != nil {
		return fmt.Errorf("stage snapshot: %w", err)
	}

	author := object.Signature{
		Name:  "shapedb",
		Email: "shapedb@local",
		When:  time.Now().UTC(),
	}
	_, err = wt.Commit("save "+a.file, &git.CommitOptions{Author: &author, Committer: &author})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return nil
		}
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (a *Adapter) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(a.dir, a.file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", a.file, domain.ErrNoSnapshot)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Saves reports how many snapshot commits the repository holds.
func (a *Adapter) Saves() (int, error) {
	repo, err := git.PlainOpen(a.dir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return 0, nil
		}
		return 0, fmt.Errorf("open repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return 0, nil
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return 0, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	count := 0
	err = iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("iterate log: %w", err)
	}
	return count, nil
}

func (a *Adapter) openOrInit() (*git.Repository, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}

	repo, err := git.PlainOpen(a.dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	repo, err = git.PlainInit(a.dir, false)
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	return repo, nil
}
