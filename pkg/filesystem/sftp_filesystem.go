package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pkg/sftp"
)

// SFTPFileSystem implements FileSystem over one SFTP session. Instances are
// confined to a single goroutine, like every other component in the toolkit,
// so one client is enough.
type SFTPFileSystem struct {
	client *sftp.Client
}

// NewSFTPFileSystem creates a new SFTP filesystem using an established connection.
func NewSFTPFileSystem(conn *SFTPConnection) *SFTPFileSystem {
	return &SFTPFileSystem{client: conn.Client()}
}

// NewSFTPFileSystemFromClient wraps an existing client.
func NewSFTPFileSystemFromClient(client *sftp.Client) *SFTPFileSystem {
	return &SFTPFileSystem{client: client}
}

// Chtimes changes the access and modification times of a remote file.
func (s *SFTPFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	if err := s.client.Chtimes(path, atime, mtime); err != nil {
		return fmt.Errorf("failed to change times for remote file %s: %w", path, err)
	}

	return nil
}

// Create creates a remote file for writing.
func (s *SFTPFileSystem) Create(path string) (File, error) {
	file, err := s.client.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote file %s: %w", path, err)
	}

	return file, nil
}

// Lstat returns file information for a remote entry without following links.
func (s *SFTPFileSystem) Lstat(path string) (os.FileInfo, error) {
	info, err := s.client.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat remote file %s: %w", path, err)
	}

	return info, nil
}

// Mkdir creates a single remote directory. perm is ignored; the server applies its defaults.
func (s *SFTPFileSystem) Mkdir(path string, _ os.FileMode) error {
	if err := s.client.Mkdir(path); err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", path, err)
	}

	return nil
}

// MkdirAll creates a remote directory and all necessary parents.
func (s *SFTPFileSystem) MkdirAll(path string, _ os.FileMode) error {
	if err := s.client.MkdirAll(path); err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", path, err)
	}

	return nil
}

// Open opens a remote file for reading.
func (s *SFTPFileSystem) Open(path string) (File, error) {
	file, err := s.client.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", path, err)
	}

	return file, nil
}

// OpenFile opens a remote file with os-style flags.
func (s *SFTPFileSystem) OpenFile(path string, flag int, _ os.FileMode) (File, error) {
	file, err := s.client.OpenFile(path, flag)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", path, err)
	}

	return file, nil
}

// ReadDir lists a remote directory.
func (s *SFTPFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	infos, err := s.client.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote directory %s: %w", path, err)
	}

	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}

	return entries, nil
}

// Remove removes a remote file or empty directory.
func (s *SFTPFileSystem) Remove(path string) error {
	if err := s.client.Remove(path); err != nil {
		return fmt.Errorf("failed to remove remote file %s: %w", path, err)
	}

	return nil
}

// RemoveAll removes a remote path and everything below it.
func (s *SFTPFileSystem) RemoveAll(path string) error {
	if err := s.client.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove remote path %s: %w", path, err)
	}

	return nil
}

// Rename moves a remote entry.
func (s *SFTPFileSystem) Rename(oldPath, newPath string) error {
	if err := s.client.PosixRename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to rename remote file %s to %s: %w", oldPath, newPath, err)
	}

	return nil
}

// Scan returns an iterator over all files in a remote directory tree.
func (s *SFTPFileSystem) Scan(path string) FileScanner {
	if s.client == nil {
		return newFailedScanner(fmt.Errorf("no SFTP client for %s", path)) //nolint:err113 // Context-specific error
	}

	return newSFTPScanner(s.client, path)
}

// Stat returns file information for a remote file.
func (s *SFTPFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := s.client.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat remote file %s: %w", path, err)
	}

	return info, nil
}
