package filesystem

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Location errors.
var (
	ErrMissingHost = errors.New("SFTP URL must include host")
	ErrMissingUser = errors.New("SFTP URL must include username (sftp://user@host/path)")
)

const (
	sftpScheme  = "sftp://"
	defaultPort = 22
)

// Location is a parsed path argument: a local path, or a path on an SFTP
// server when Remote is set.
type Location struct {
	Remote *Remote
	Path   string
}

// IsRemote reports whether the location is on an SFTP server.
func (l Location) IsRemote() bool {
	return l.Remote != nil
}

// String renders the location back in the form ParseLocation accepts.
func (l Location) String() string {
	if l.Remote == nil {
		return l.Path
	}

	remotePath := "/" + l.Path
	if l.Path == "." {
		remotePath = ""
	}

	return sftpScheme + l.Remote.User + "@" + l.Remote.Address() + remotePath
}

// ParseLocation accepts either a local path or an SFTP URL of the form
// sftp://user@host[:port]/path. The port defaults to 22.
//
// Remote paths follow scp conventions:
//   - sftp://joe@host/data   → data, relative to the login directory
//   - sftp://joe@host//data  → /data
//   - sftp://joe@host        → the login directory
func ParseLocation(raw string) (Location, error) {
	if !strings.HasPrefix(raw, sftpScheme) {
		return Location{Path: raw}, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid SFTP URL: %w", err)
	}

	if parsed.User == nil || parsed.User.Username() == "" {
		return Location{}, ErrMissingUser
	}

	if parsed.Hostname() == "" {
		return Location{}, ErrMissingHost
	}

	port := defaultPort

	if portStr := parsed.Port(); portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return Location{}, fmt.Errorf("invalid port number: %w", err)
		}
	}

	return Location{
		Remote: &Remote{
			Host: parsed.Hostname(),
			Port: port,
			User: parsed.User.Username(),
		},
		Path: remotePath(parsed.Path),
	}, nil
}

func remotePath(urlPath string) string {
	switch {
	case urlPath == "" || urlPath == "/":
		return "."
	case strings.HasPrefix(urlPath, "//"):
		return urlPath[1:]
	default:
		return strings.TrimPrefix(urlPath, "/")
	}
}
