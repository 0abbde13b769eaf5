package paths

import (
	"fmt"

	pkgerrors "github.com/joe/efs/pkg/errors"
)

// Path is an immutable path value. Every transform returns a new Path, so a
// Path handed to another component cannot change under it.
type Path struct {
	value string
}

// New wraps s after rejecting malformed input.
func New(s string) (Path, error) {
	if err := validate(s); err != nil {
		return Path{}, err
	}

	return Path{value: s}, nil
}

// MustNew is New for literals; it panics on malformed input.
func MustNew(s string) Path {
	p, err := New(s)
	if err != nil {
		panic(err)
	}

	return p
}

// FromUserDirectory returns the user's home directory.
func FromUserDirectory() (Path, error) {
	home, err := UserDirectory()
	if err != nil {
		return Path{}, err
	}

	return New(home)
}

// FromTempDirectory returns the temporary directory.
func FromTempDirectory() Path {
	return Path{value: TempDirectory()}
}

// FromWorkingDirectory returns the current working directory.
func FromWorkingDirectory() (Path, error) {
	cwd, err := Workdir().Get()
	if err != nil {
		return Path{}, err
	}

	return New(cwd)
}

// FromParentSibling returns the first entry called name found by walking up
// from start. See FindParentSibling.
func FromParentSibling(start, name string) (Path, error) {
	found, ok, err := FindParentSibling(start, name)
	if err != nil {
		return Path{}, err
	}

	if !ok {
		return Path{}, fmt.Errorf("no %q above %s: %w", name, start, pkgerrors.ErrNotFound)
	}

	return New(found)
}

// String returns the path text.
func (p Path) String() string { return p.value }

// Equal reports whether both paths hold the same text.
func (p Path) Equal(other Path) bool { return p.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so Path can be used as a flag value.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := New(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// Segments returns Split(p).
func (p Path) Segments() []string { return Split(p.value) }

// IsAbsolute reports whether the path starts at a root.
func (p Path) IsAbsolute() bool { return IsAbsolute(p.value) }

// IsUnixLike reports whether the path uses unix separators.
func (p Path) IsUnixLike() bool { return IsUnixLike(p.value) }

// IsWindowsLike reports whether the path uses a drive or windows separators.
func (p Path) IsWindowsLike() bool { return IsWindowsLike(p.value) }

// Dir returns the containing directory.
func (p Path) Dir() string { return Dir(p.value) }

// AbsoluteDir returns the containing directory resolved against the working directory.
func (p Path) AbsoluteDir() (string, error) { return AbsoluteDir(p.value) }

// Name returns the final segment with its extension.
func (p Path) Name() string { return Name(p.value) }

// Stem returns the final segment without its extension.
func (p Path) Stem() string { return Stem(p.value) }

// Ext returns the extension without its dot.
func (p Path) Ext() string { return Ext(p.value) }

// PartsAndExtension returns (directory, stem, extension).
func (p Path) PartsAndExtension() (dir, stem, ext string) { return PartsAndExtension(p.value) }

// PartsNoExtension returns (directory, stem).
func (p Path) PartsNoExtension() (dir, stem string) { return PartsNoExtension(p.value) }

// NodeAt returns the segment at index.
func (p Path) NodeAt(index int) (string, error) { return NodeAt(p.value, index) }

// FindParentSibling looks for name next to each ancestor of p.
func (p Path) FindParentSibling(name string) (string, bool, error) {
	return FindParentSibling(p.value, name)
}

// Join appends parts.
func (p Path) Join(parts ...string) Path { return Path{value: Join(p.value, parts...)} }

// ToWindows rewrites separators to '\'.
func (p Path) ToWindows() Path { return Path{value: ToWindows(p.value)} }

// ToUnix rewrites separators to '/'.
func (p Path) ToUnix() Path { return Path{value: ToUnix(p.value)} }

// WithoutExtension drops the last extension.
func (p Path) WithoutExtension() Path { return Path{value: RemoveExtension(p.value)} }

// WithExtension replaces the last extension.
func (p Path) WithExtension(ext string) Path { return Path{value: ReplaceExtension(p.value, ext)} }

// Parent strips one segment.
func (p Path) Parent() Path { return Path{value: Parent(p.value)} }

// RemoveFileNameIfFile drops the file name when p is an existing file.
func (p Path) RemoveFileNameIfFile() Path { return Path{value: RemoveFileNameIfFile(p.value)} }

// Expand resolves p against the home and working directories.
func (p Path) Expand() (Path, error) {
	return wrap(ExpandRelative(p.value))
}

// WithNodeAt replaces the segment at index.
func (p Path) WithNodeAt(index int, name string) (Path, error) {
	return wrap(SetNodeAt(p.value, index, name))
}

// StripUpToNode keeps the path from the first occurrence of node.
func (p Path) StripUpToNode(node string, inclusive bool) (Path, error) {
	return wrap(StripUpToNode(p.value, node, inclusive))
}

// StripUpToNodeReversed keeps the path up to the last occurrence of node.
func (p Path) StripUpToNodeReversed(node string, inclusive bool) (Path, error) {
	return wrap(StripUpToNodeReversed(p.value, node, inclusive))
}

// SetAsWorkingDirectory makes p the process working directory.
func (p Path) SetAsWorkingDirectory() error {
	return Workdir().Set(p.value)
}

// SwapWorkingDirectory makes p the working directory and returns the previous one.
func (p Path) SwapWorkingDirectory() (Path, error) {
	return wrap(Workdir().Swap(p.value))
}

func wrap(value string, err error) (Path, error) {
	if err != nil {
		return Path{}, err
	}

	return Path{value: value}, nil
}
