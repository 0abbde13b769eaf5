// Package fileops provides the everyday file operations (existence checks,
// copy, move, mkdir, merge, line counting) on top of a filesystem.FileSystem.
//
// Operations that touch the filesystem follow the catch-and-report policy:
// under Log (the default) and Ignore a failure yields the operation's safe
// default (false, -1, the zero time) and a nil error; under Raise the failure
// is returned. NextAvailableFileName is the exception and always returns its
// errors.
package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (32KB)
	BufferSize = 32 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
	// DefaultFilePermissions is the default permission mode for created files
	DefaultFilePermissions = 0o644
)

// FileOps runs file operations against FS, reporting failures through
// Handler according to Policy.
type FileOps struct {
	FS      filesystem.FileSystem
	Handler *pkgerrors.Handler
	Policy  pkgerrors.Policy
}

// New creates a FileOps over fsys with the Log policy and the default handler.
func New(fsys filesystem.FileSystem) *FileOps {
	return &FileOps{
		FS:      fsys,
		Handler: pkgerrors.DefaultHandler(),
		Policy:  pkgerrors.Log,
	}
}

// NewLocal creates a FileOps over the local disk.
func NewLocal() *FileOps {
	return New(filesystem.NewRealFileSystem())
}

// WithPolicy returns a copy of fo using policy.
func (fo *FileOps) WithPolicy(policy pkgerrors.Policy) *FileOps {
	clone := *fo
	clone.Policy = policy

	return &clone
}

// WithHandler returns a copy of fo reporting through handler.
func (fo *FileOps) WithHandler(handler *pkgerrors.Handler) *FileOps {
	clone := *fo
	clone.Handler = handler

	return &clone
}

// Exists reports whether path exists. A missing path is not a failure.
func (fo *FileOps) Exists(path string) (bool, error) {
	_, ok, err := fo.stat(path)

	return ok, err
}

// IsFile reports whether path is a regular file.
func (fo *FileOps) IsFile(path string) (bool, error) {
	info, ok, err := fo.stat(path)

	return ok && info.Mode().IsRegular(), err
}

// IsDirectory reports whether path is a directory.
func (fo *FileOps) IsDirectory(path string) (bool, error) {
	info, ok, err := fo.stat(path)

	return ok && info.IsDir(), err
}

// IsLink reports whether path is a symbolic link.
func (fo *FileOps) IsLink(path string) (bool, error) {
	info, err := fo.FS.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fo.handle(err, "failed to inspect "+path)
	}

	return info.Mode()&os.ModeSymlink != 0, nil
}

// FileSize returns the size of path in bytes, or -1.
func (fo *FileOps) FileSize(path string) (int64, error) {
	info, err := fo.FS.Stat(path)
	if err != nil {
		return -1, fo.handle(err, "failed to get size of "+path)
	}

	return info.Size(), nil
}

// ModTime returns the last modification time of path, or the zero time.
func (fo *FileOps) ModTime(path string) (time.Time, error) {
	info, err := fo.FS.Stat(path)
	if err != nil {
		return time.Time{}, fo.handle(err, "failed to get modification time of "+path)
	}

	return info.ModTime(), nil
}

// Chtimes sets the access and modification times of path.
func (fo *FileOps) Chtimes(path string, atime, mtime time.Time) (bool, error) {
	if err := fo.FS.Chtimes(path, atime, mtime); err != nil {
		return false, fo.handle(err, "failed to change times for "+path)
	}

	return true, nil
}

// stat distinguishes "missing" (ok false, nil error) from a real failure.
func (fo *FileOps) stat(path string) (os.FileInfo, bool, error) {
	info, err := fo.FS.Stat(path)
	if err == nil {
		return info, true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	return nil, false, fo.handle(err, "failed to inspect "+path)
}

func (fo *FileOps) handle(err error, message string) error {
	handler := fo.Handler
	if handler == nil {
		handler = pkgerrors.DefaultHandler()
	}

	return handler.Handle(err, fo.Policy, message) //nolint:wrapcheck // Handler returns the enriched original
}

// fail is handle for operations whose safe default is false.
func (fo *FileOps) fail(err error, format string, args ...any) (bool, error) {
	return false, fo.handle(err, fmt.Sprintf(format, args...))
}
