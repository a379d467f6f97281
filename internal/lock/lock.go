// Package lock serializes gitstack commands that modify a repository.
package lock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	gserrors "gitstack.dev/gitstack/internal/errors"
)

// FileName is the lock file inside the metadata directory
const FileName = "lock"

// RepoLock is an exclusive advisory lock on a repository's metadata
type RepoLock struct {
	fl *flock.Flock
}

// Acquire takes the lock in metaDir without waiting.
// It returns ErrLocked when another process holds it.
func Acquire(metaDir string) (*RepoLock, error) {
	fl := flock.New(filepath.Join(metaDir, FileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring repository lock: %w", err)
	}
	if !locked {
		return nil, gserrors.ErrLocked
	}
	return &RepoLock{fl: fl}, nil
}

// Path returns the lock file path
func (l *RepoLock) Path() string {
	return l.fl.Path()
}

// Release drops the lock
func (l *RepoLock) Release() error {
	return l.fl.Unlock()
}
