package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/filesystem"
	"github.com/joe/efs/pkg/paths"
)

// ProgressCallback is called during a copy to report progress.
type ProgressCallback func(bytesTransferred int64, totalBytes int64, currentFile string)

// CreateFile creates an empty file, truncating an existing one unless
// mustNotExist is set, in which case an existing file is a failure.
func (fo *FileOps) CreateFile(path string, mustNotExist bool) (bool, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mustNotExist {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	file, err := fo.FS.OpenFile(path, flag, DefaultFilePermissions)
	if err != nil {
		return fo.fail(err, "failed to create file %s", path)
	}

	if err := file.Close(); err != nil {
		return fo.fail(err, "failed to close file %s", path)
	}

	return true, nil
}

// DeleteFile removes a file. Directories are refused.
func (fo *FileOps) DeleteFile(path string) (bool, error) {
	info, err := fo.FS.Lstat(path)
	if err != nil {
		return fo.fail(err, "unable to delete file %s", path)
	}

	if info.IsDir() {
		err := fmt.Errorf("failed to delete %s: %w", path, pkgerrors.ErrIsADirectory)

		return fo.fail(err, "unable to delete %s as it is a directory", path)
	}

	if err := fo.FS.Remove(path); err != nil {
		return fo.fail(err, "unable to delete file %s", path)
	}

	return true, nil
}

// Rename renames oldPath to newPath.
func (fo *FileOps) Rename(oldPath, newPath string) (bool, error) {
	if err := fo.FS.Rename(oldPath, newPath); err != nil {
		return fo.fail(err, "failed to rename %s", oldPath)
	}

	return true, nil
}

// CopyFile copies src to dst, creating dst's directory and keeping the
// source modification time.
func (fo *FileOps) CopyFile(src, dst string) (bool, error) {
	if _, err := copyFile(fo.FS, src, dst, nil); err != nil {
		return fo.fail(err, "failed to copy %s", src)
	}

	return true, nil
}

// CopyFileWithProgress is CopyFile reporting progress after every buffer.
// It returns the number of bytes written.
func (fo *FileOps) CopyFileWithProgress(src, dst string, progress ProgressCallback) (int64, error) {
	written, err := copyFile(fo.FS, src, dst, progress)
	if err != nil {
		return written, fo.handle(err, "failed to copy "+src)
	}

	return written, nil
}

// MoveFile moves src to dst, copying and removing when a rename cannot cross
// devices.
func (fo *FileOps) MoveFile(src, dst string) (bool, error) {
	err := fo.FS.Rename(src, dst)
	if errors.Is(err, syscall.EXDEV) {
		_, err = copyFile(fo.FS, src, dst, nil)
		if err == nil {
			err = fo.FS.Remove(src)
		}
	}

	if err != nil {
		return fo.fail(err, "failed to move %s", src)
	}

	return true, nil
}

// CopyDirectory copies the tree at src to dst, which must not exist.
func (fo *FileOps) CopyDirectory(src, dst string) (bool, error) {
	if err := copyTree(fo.FS, src, dst); err != nil {
		return fo.fail(err, "failed to copy directory %s", src)
	}

	return true, nil
}

// MoveDirectory moves the tree at src to dst, copying and removing when a
// rename cannot cross devices.
func (fo *FileOps) MoveDirectory(src, dst string) (bool, error) {
	err := fo.FS.Rename(src, dst)
	if errors.Is(err, syscall.EXDEV) {
		err = copyTree(fo.FS, src, dst)
		if err == nil {
			err = fo.FS.RemoveAll(src)
		}
	}

	if err != nil {
		return fo.fail(err, "failed to move directory %s", src)
	}

	return true, nil
}

// Mkdir creates path and any missing parents. An existing directory is a
// failure unless ignoreExisting is set.
func (fo *FileOps) Mkdir(path string, ignoreExisting bool) (bool, error) {
	if !ignoreExisting {
		if _, err := fo.FS.Stat(path); err == nil {
			err = &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}

			return fo.fail(err, "failed to create directory %s", path)
		}
	}

	if err := fo.FS.MkdirAll(path, DefaultDirPermissions); err != nil {
		return fo.fail(err, "failed to create directory %s", path)
	}

	return true, nil
}

// Rmdir removes a directory. With mustBeEmpty a non-empty directory is a
// failure; otherwise the whole tree goes.
func (fo *FileOps) Rmdir(path string, mustBeEmpty bool) (bool, error) {
	info, err := fo.FS.Stat(path)
	if err != nil {
		return fo.fail(err, "failed to remove directory %s", path)
	}

	if !info.IsDir() {
		err := fmt.Errorf("failed to remove %s: %w", path, pkgerrors.ErrNotADirectory)

		return fo.fail(err, "failed to remove directory %s", path)
	}

	if mustBeEmpty {
		err = fo.FS.Remove(path)
	} else {
		err = fo.FS.RemoveAll(path)
	}

	if err != nil {
		return fo.fail(err, "failed to remove directory %s", path)
	}

	return true, nil
}

// RemakeDir removes the tree at path and creates it again, empty.
func (fo *FileOps) RemakeDir(path string) (bool, error) {
	removed, err := fo.Rmdir(path, false)
	if !removed {
		return false, err
	}

	return fo.Mkdir(path, true)
}

func copyFile(fsys filesystem.FileSystem, src, dst string, progress ProgressCallback) (int64, error) {
	sourceFile, err := fsys.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	if sourceInfo.IsDir() {
		return 0, fmt.Errorf("failed to copy %s: %w", src, pkgerrors.ErrIsADirectory)
	}

	if dstDir := paths.Dir(dst); dstDir != "" {
		err = fsys.MkdirAll(dstDir, DefaultDirPermissions)
		if err != nil {
			return 0, fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
		}
	}

	destFile, err := fsys.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	written, err := copyLoop(sourceFile, destFile, sourceInfo.Size(), src, progress)
	if err != nil {
		_ = destFile.Close()

		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	// Close before Chtimes; some network filesystems reset the time on close.
	err = destFile.Close()
	if err != nil {
		return written, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	err = fsys.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	return written, nil
}

// copyTree recreates src's directories under dst and copies every file.
func copyTree(fsys filesystem.FileSystem, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("failed to copy %s: %w", src, pkgerrors.ErrNotADirectory)
	}

	if _, err := fsys.Stat(dst); err == nil {
		return &fs.PathError{Op: "copy", Path: dst, Err: fs.ErrExist}
	}

	err = fsys.MkdirAll(dst, DefaultDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dst, err)
	}

	scanner := fsys.Scan(src)
	for entry, ok := scanner.Next(); ok; entry, ok = scanner.Next() {
		from := paths.Join(src, entry.RelativePath)
		to := paths.Join(dst, entry.RelativePath)

		if entry.IsDir {
			err = fsys.MkdirAll(to, DefaultDirPermissions)
			if err != nil {
				return fmt.Errorf("failed to create directory %s: %w", to, err)
			}

			continue
		}

		if _, err := copyFile(fsys, from, to, nil); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan directory %s: %w", src, err)
	}

	return nil
}

// copyLoop performs the copy with progress tracking.
func copyLoop(sourceFile io.Reader, destFile io.Writer, sourceSize int64, srcPath string, progress ProgressCallback) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		if nr > 0 {
			nw, err := destFile.Write(buf[0:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			if err != nil {
				return written, fmt.Errorf("failed to write to destination: %w", err)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)

			if progress != nil {
				progress(written, sourceSize, srcPath)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}

	return written, nil
}
