package errors

import (
	"errors"
	"io/fs"
	"syscall"
)

// Kinds of failure surfaced by the toolkit.
const (
	KindAlreadyExists   Kind = "already_exists"
	KindDiskSpace       Kind = "disk_space"
	KindIndexOutOfRange Kind = "index_out_of_range"
	KindIO              Kind = "io"
	KindIsDirectory     Kind = "is_directory"
	KindMalformed       Kind = "malformed"
	KindNotDirectory    Kind = "not_directory"
	KindNotEmpty        Kind = "not_empty"
	KindNotFound        Kind = "not_found"
	KindOverflow        Kind = "overflow"
	KindPermission      Kind = "permission"
	KindUnknown         Kind = "unknown"
)

// Sentinel errors for the failures that do not come from the operating system.
// OS-level failures keep their io/fs and syscall identities and are classified
// from those.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrIsADirectory    = errors.New("is a directory")
	ErrMalformed       = errors.New("malformed path")
	ErrNotADirectory   = errors.New("not a directory")
	ErrNotFound        = errors.New("not found")
	ErrOverflow        = errors.New("search space exhausted")
)

// Kind names a class of failure.
type Kind string

// Classify maps err to a Kind. Wrapped sentinels and io/fs/syscall errors are
// recognised through errors.Is; anything else falls back to matching the
// message text.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var actionable ActionableError
	if errors.As(err, &actionable) {
		return actionable.Kind()
	}

	for _, candidate := range identities {
		if errors.Is(err, candidate.target) {
			return candidate.kind
		}
	}

	return NewPatternMatcher().Match(err.Error())
}

// Is reports whether err classifies as kind.
func Is(err error, kind Kind) bool {
	return err != nil && Classify(err) == kind
}

type identity struct {
	target error
	kind   Kind
}

//nolint:gochecknoglobals // Ordered lookup table shared by Classify
var identities = []identity{
	{ErrIndexOutOfRange, KindIndexOutOfRange},
	{ErrOverflow, KindOverflow},
	{ErrMalformed, KindMalformed},
	{ErrIsADirectory, KindIsDirectory},
	{syscall.EISDIR, KindIsDirectory},
	{ErrNotADirectory, KindNotDirectory},
	{syscall.ENOTDIR, KindNotDirectory},
	{ErrNotFound, KindNotFound},
	{fs.ErrNotExist, KindNotFound},
	{syscall.ENOTEMPTY, KindNotEmpty},
	{syscall.ENOSPC, KindDiskSpace},
	{syscall.EIO, KindIO},
	// Errno values also match these, so they come after the specific ones.
	{fs.ErrExist, KindAlreadyExists},
	{fs.ErrPermission, KindPermission},
}
