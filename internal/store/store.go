package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/model"
)

const (
	// DirName is the metadata directory inside the git common dir
	DirName = "gitstack"

	stacksDir     = "stacks"
	activeFile    = "active.toml"
	operationFile = "operation.toml"
	stackExt      = ".toml"
)

// Store is the persistence contract used by the stack manager and sync engine
type Store interface {
	LoadStack(ctx context.Context, repo, name string) (*model.Stack, error)
	SaveStack(ctx context.Context, repo string, s *model.Stack) error
	DeleteStack(ctx context.Context, repo, name string) error
	StackExists(ctx context.Context, repo, name string) (bool, error)
	ListStackNames(ctx context.Context, repo string) ([]string, error)

	LoadActive(ctx context.Context, repo string) (string, error)
	SaveActive(ctx context.Context, repo, name string) error

	LoadOperationState(ctx context.Context, repo string) (*model.OperationState, error)
	SaveOperationState(ctx context.Context, repo string, state *model.OperationState) error
	ClearOperationState(ctx context.Context, repo string) error
}

// DirResolver maps a repository path to its metadata directory
type DirResolver func(ctx context.Context, repo string) (string, error)

// FileStore is the Store backed by TOML files
type FileStore struct {
	resolve DirResolver

	mu    sync.Mutex
	cache map[string]string
}

// NewFileStore creates a FileStore that resolves metadata directories with git
func NewFileStore(inv git.Invoker) *FileStore {
	return NewFileStoreWithResolver(func(ctx context.Context, repo string) (string, error) {
		return MetadataDir(ctx, inv, repo)
	})
}

// NewFileStoreWithResolver creates a FileStore with a custom directory resolver
func NewFileStoreWithResolver(resolve DirResolver) *FileStore {
	return &FileStore{resolve: resolve, cache: map[string]string{}}
}

// MetadataDir returns <git-common-dir>/gitstack for the repository at repo.
// Linked worktrees share the common dir, so every worktree sees the same stacks.
func MetadataDir(ctx context.Context, inv git.Invoker, repo string) (string, error) {
	common, err := git.NewBackend(inv, repo).CommonDir(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", repo, gserrors.ErrNotGitRepository)
	}
	return filepath.Join(common, DirName), nil
}

func (s *FileStore) dir(ctx context.Context, repo string) (string, error) {
	s.mu.Lock()
	dir, ok := s.cache[repo]
	s.mu.Unlock()
	if ok {
		return dir, nil
	}

	dir, err := s.resolve(ctx, repo)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[repo] = dir
	s.mu.Unlock()
	return dir, nil
}

func (s *FileStore) stackPath(ctx context.Context, repo, name string) (string, error) {
	if err := model.ValidateStackName(name); err != nil {
		return "", err
	}
	dir, err := s.dir(ctx, repo)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stacksDir, name+stackExt), nil
}

// LoadStack reads a stack definition
func (s *FileStore) LoadStack(ctx context.Context, repo, name string) (*model.Stack, error) {
	path, err := s.stackPath(ctx, repo, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gserrors.NewStackNotFoundError(name)
		}
		return nil, fmt.Errorf("failed to read stack %s: %w", name, err)
	}

	var st model.Stack
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, gserrors.NewCorruptStateError(path, err)
	}
	if st.Branches == nil {
		st.Branches = []model.Branch{}
	}
	if err := st.Validate(); err != nil {
		return nil, gserrors.NewCorruptStateError(path, err)
	}
	if st.Name != name {
		return nil, gserrors.NewCorruptStateError(path, fmt.Errorf("document names stack %q", st.Name))
	}
	return &st, nil
}

// SaveStack writes a stack definition atomically
func (s *FileStore) SaveStack(ctx context.Context, repo string, st *model.Stack) error {
	if err := st.Validate(); err != nil {
		return err
	}
	path, err := s.stackPath(ctx, repo, st.Name)
	if err != nil {
		return err
	}
	if err := writeDocument(path, st); err != nil {
		return fmt.Errorf("failed to save stack %s: %w", st.Name, err)
	}
	return nil
}

// DeleteStack removes a stack definition
func (s *FileStore) DeleteStack(ctx context.Context, repo, name string) error {
	path, err := s.stackPath(ctx, repo, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return gserrors.NewStackNotFoundError(name)
		}
		return fmt.Errorf("failed to delete stack %s: %w", name, err)
	}
	return nil
}

// StackExists reports whether a definition file exists for name
func (s *FileStore) StackExists(ctx context.Context, repo, name string) (bool, error) {
	path, err := s.stackPath(ctx, repo, name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat stack %s: %w", name, err)
}

// ListStackNames returns all stack names, sorted
func (s *FileStore) ListStackNames(ctx context.Context, repo string) ([]string, error) {
	dir, err := s.dir(ctx, repo)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, stacksDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list stacks: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), stackExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), stackExt)
		if model.ValidateStackName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type activeDocument struct {
	Stack string `toml:"stack"`
}

// LoadActive returns the active stack marker, or "" when none is set
func (s *FileStore) LoadActive(ctx context.Context, repo string) (string, error) {
	dir, err := s.dir(ctx, repo)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, activeFile)

	var doc activeDocument
	found, err := readDocument(path, &doc)
	if err != nil || !found {
		return "", err
	}
	return doc.Stack, nil
}

// SaveActive writes the active stack marker. An empty name clears it.
func (s *FileStore) SaveActive(ctx context.Context, repo, name string) error {
	dir, err := s.dir(ctx, repo)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, activeFile)

	if name == "" {
		return removeIfExists(path)
	}
	if err := writeDocument(path, activeDocument{Stack: name}); err != nil {
		return fmt.Errorf("failed to save active stack: %w", err)
	}
	return nil
}

// LoadOperationState returns the pending sync checkpoint, or nil when there is none
func (s *FileStore) LoadOperationState(ctx context.Context, repo string) (*model.OperationState, error) {
	dir, err := s.dir(ctx, repo)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, operationFile)

	var state model.OperationState
	found, err := readDocument(path, &state)
	if err != nil || !found {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		return nil, gserrors.NewCorruptStateError(path, err)
	}
	return &state, nil
}

// SaveOperationState writes the sync checkpoint atomically
func (s *FileStore) SaveOperationState(ctx context.Context, repo string, state *model.OperationState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("refusing to save operation state: %w", err)
	}
	dir, err := s.dir(ctx, repo)
	if err != nil {
		return err
	}
	if err := writeDocument(filepath.Join(dir, operationFile), state); err != nil {
		return fmt.Errorf("failed to save operation state: %w", err)
	}
	return nil
}

// ClearOperationState removes the sync checkpoint. It is a no-op when none exists.
func (s *FileStore) ClearOperationState(ctx context.Context, repo string) error {
	dir, err := s.dir(ctx, repo)
	if err != nil {
		return err
	}
	return removeIfExists(filepath.Join(dir, operationFile))
}

// readDocument decodes path into v. found is false when the file does not exist.
func readDocument(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return false, gserrors.NewCorruptStateError(path, err)
	}
	return true, nil
}

// writeDocument encodes v and renames it into place
func writeDocument(path string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
	}
	return nil
}
