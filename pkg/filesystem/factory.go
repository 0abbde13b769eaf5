package filesystem

import (
	"fmt"
	"time"
)

// CreateFileSystem returns the FileSystem a path argument refers to, the path
// to use within it, and a closer for any connection that was opened. The
// closer is never nil.
func CreateFileSystem(raw string, timeout time.Duration) (FileSystem, string, func(), error) {
	location, err := ParseLocation(raw)
	if err != nil {
		return nil, "", nil, err
	}

	if !location.IsRemote() {
		return NewRealFileSystem(), location.Path, func() {}, nil
	}

	remote := *location.Remote
	remote.Timeout = timeout

	conn, err := Connect(remote)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to connect to %s: %w", remote, err)
	}

	closer := func() {
		_ = conn.Close()
	}

	return NewSFTPFileSystem(conn), location.Path, closer, nil
}
