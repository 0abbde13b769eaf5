package filesystem

import (
	"time"
)

// FileScanner is an iterator over files in a directory.
// It provides a simple Next pattern for traversing directory contents.
type FileScanner interface {
	// Next advances to the next file and returns its info.
	// Returns (FileInfo{}, false) when done or on error.
	// Check Err() after Next() returns false to distinguish between end-of-scan and error.
	Next() (FileInfo, bool)

	// Err returns any error that occurred during scanning.
	// Should be checked after Next() returns false.
	Err() error
}

// FileInfo contains metadata about a file.
type FileInfo struct {
	// RelativePath is the path relative to the scan root, '/'-separated for
	// remote and mock filesystems and host-separated for the local one.
	RelativePath string

	// Size is the file size in bytes
	Size int64

	// ModTime is the modification time
	ModTime time.Time

	// IsDir indicates if this is a directory
	IsDir bool
}

// entryScanner is the shared Next/Err state: entries are collected once, on
// the first call to Next, by the collect function.
type entryScanner struct {
	collect func() ([]FileInfo, error)
	files   []FileInfo
	index   int
	err     error
	scanned bool
}

func newEntryScanner(collect func() ([]FileInfo, error)) *entryScanner {
	return &entryScanner{
		collect: collect,
		index:   -1,
	}
}

func newFailedScanner(err error) *entryScanner {
	return &entryScanner{
		err:     err,
		scanned: true,
		index:   -1,
	}
}

// Next advances to the next file and returns its info.
func (s *entryScanner) Next() (FileInfo, bool) {
	if !s.scanned {
		s.files, s.err = s.collect()
		s.scanned = true
	}

	if s.err != nil {
		return FileInfo{}, false
	}

	s.index++
	if s.index >= len(s.files) {
		return FileInfo{}, false
	}

	return s.files[s.index], true
}

// Err returns any error that occurred during scanning.
func (s *entryScanner) Err() error {
	return s.err
}
