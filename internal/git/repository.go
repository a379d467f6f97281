package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"

	gserrors "gitstack.dev/gitstack/internal/errors"
)

// Repository wraps a go-git repository opened at a working copy
type Repository struct {
	*gogit.Repository
	root string
}

// OpenRepository opens the repository containing path.
// Parent directories are searched for .git, and linked worktrees are supported.
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", absPath, gserrors.ErrNotGitRepository)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no working copy to operate on
		return nil, fmt.Errorf("%s has no working tree: %w", absPath, gserrors.ErrNotGitRepository)
	}

	return &Repository{
		Repository: repo,
		root:       worktree.Filesystem.Root(),
	}, nil
}

// Root returns the top-level directory of the working copy
func (r *Repository) Root() string {
	return r.root
}

// RepoRoot returns the root of the working copy containing path
func RepoRoot(path string) (string, error) {
	repo, err := OpenRepository(path)
	if err != nil {
		return "", err
	}
	return repo.Root(), nil
}
