package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joe/efs/pkg/filesystem"
	"github.com/joe/efs/pkg/paths"
)

// MergeOptions controls MergeFiles.
type MergeOptions struct {
	// IgnoreMissing skips input files that do not exist.
	IgnoreMissing bool
	// JoinToken is written after each merged file.
	JoinToken string
}

// MergeFiles concatenates files into dst. The result appears atomically and,
// on the local disk, under a lock on "<dst>.lock".
func (fo *FileOps) MergeFiles(dst string, files []string, opts MergeOptions) (bool, error) {
	err := fo.writeLocked(dst, func(out io.Writer) error {
		return mergeInto(fo.FS, out, files, opts)
	})
	if err != nil {
		return fo.fail(err, "failed to merge into %s", dst)
	}

	return true, nil
}

// AtomicWrite replaces path with data so that readers see either the old or
// the new content, never a mix.
func (fo *FileOps) AtomicWrite(path string, data []byte) (bool, error) {
	err := fo.writeLocked(path, func(out io.Writer) error {
		_, err := out.Write(data)

		return err //nolint:wrapcheck // Wrapped by writeAtomic
	})
	if err != nil {
		return fo.fail(err, "failed to write %s", path)
	}

	return true, nil
}

func (fo *FileOps) writeLocked(path string, fill func(io.Writer) error) error {
	if dir := paths.Dir(path); dir != "" {
		if err := fo.FS.MkdirAll(dir, DefaultDirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	unlock, err := lockTarget(fo.FS, path)
	if err != nil {
		return err
	}
	defer unlock()

	return writeAtomic(fo.FS, path, fill)
}

// writeAtomic fills a temporary sibling of path and renames it into place.
// The parent directory must exist.
func writeAtomic(fsys filesystem.FileSystem, path string, fill func(io.Writer) error) error {
	dir := paths.Dir(path)
	tempPath := paths.Join(dir, "."+paths.Name(path)+".tmp-"+strconv.FormatInt(time.Now().UnixNano(), 36))

	temp, err := fsys.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	committed := false

	defer func() {
		if !committed {
			_ = temp.Close()
			_ = fsys.Remove(tempPath)
		}
	}()

	if err := fill(temp); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := temp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	committed = true

	if err := fsys.Rename(tempPath, path); err != nil {
		_ = fsys.Remove(tempPath)

		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	return nil
}

func mergeInto(fsys filesystem.FileSystem, out io.Writer, files []string, opts MergeOptions) error {
	buf := make([]byte, BufferSize)

	for _, name := range files {
		in, err := fsys.Open(name)
		if err != nil {
			if opts.IgnoreMissing && errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return err //nolint:wrapcheck // Filesystem errors carry the path
		}

		_, err = io.CopyBuffer(out, in, buf)
		_ = in.Close()

		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}

		if opts.JoinToken != "" {
			if _, err := io.WriteString(out, opts.JoinToken); err != nil {
				return fmt.Errorf("failed to write join token: %w", err)
			}
		}
	}

	return nil
}
