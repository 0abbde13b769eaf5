package fileops

import (
	"fmt"

	"github.com/gofrs/flock"

	"github.com/joe/efs/pkg/filesystem"
)

// FileLock is an advisory inter-process lock held on a sidecar file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock on path. The file is created on first Lock and
// left in place afterwards.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock blocks until the lock is acquired.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}

	return nil
}

// TryLock acquires the lock if it is free and reports whether it did.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}

	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}

	return nil
}

// lockTarget takes "<target>.lock" when fsys is the local disk. Other
// filesystems have no shared lock primitive and get a no-op.
func lockTarget(fsys filesystem.FileSystem, target string) (func(), error) {
	if _, local := fsys.(*filesystem.RealFileSystem); !local {
		return func() {}, nil
	}

	lock := NewFileLock(target + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, err
	}

	return func() { _ = lock.Unlock() }, nil
}
