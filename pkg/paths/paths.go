// Package paths implements host-independent path algebra.
//
// Every function works on the syntactic path string: both '/' and '\' are
// separators, a leading "X:" is a drive, and nothing touches the filesystem
// except FindParentSibling, RemoveFileNameIfFile, AbsoluteDir and
// ExpandRelative.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/joe/efs/pkg/errors"
)

// Separators for the two dialects.
const (
	UnixSeparator    = '/'
	WindowsSeparator = '\\'
)

const separators = `/\`

// Join concatenates the non-empty parts onto base, in order, and collapses
// runs of separators. The separator is the dialect base already uses, or the
// host separator when base carries none. Absolute parts do not reset the
// result.
func Join(base string, parts ...string) string {
	dialect := base
	if dialect == "" {
		for _, part := range parts {
			if part != "" {
				dialect = part
				break
			}
		}
	}

	sep := separatorFor(dialect)

	var builder strings.Builder
	builder.WriteString(base)

	for _, part := range parts {
		if part == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte(sep)
		}
		builder.WriteString(part)
	}

	return collapseSeparators(builder.String())
}

// Split returns the non-empty segments of p. Drive and root markers are not
// segments.
func Split(p string) []string {
	return strings.FieldsFunc(p[len(volumeOf(p)):], func(r rune) bool {
		return r == UnixSeparator || r == WindowsSeparator
	})
}

// IsAbsolute reports whether p starts at a root: a leading separator, or a
// drive followed by a separator.
func IsAbsolute(p string) bool {
	rest := p[len(volumeOf(p)):]
	return rest != "" && isSeparator(rest[0])
}

// IsWindowsLike reports whether p has a drive or uses '\'.
func IsWindowsLike(p string) bool {
	return volumeOf(p) != "" || strings.ContainsRune(p, WindowsSeparator)
}

// IsUnixLike reports whether p uses '/' or carries no windows marker at all.
// "C:/x" is both unix-like and windows-like.
func IsUnixLike(p string) bool {
	return strings.ContainsRune(p, UnixSeparator) || !IsWindowsLike(p)
}

// ToWindows rewrites every separator to '\'.
func ToWindows(p string) string {
	return strings.ReplaceAll(p, string(UnixSeparator), string(WindowsSeparator))
}

// ToUnix rewrites every separator to '/'.
func ToUnix(p string) string {
	return strings.ReplaceAll(p, string(WindowsSeparator), string(UnixSeparator))
}

// Dir returns the directory portion of p: everything before the last
// separator. A root stays a root; a bare name yields "".
func Dir(p string) string {
	volume := volumeOf(p)
	rest := p[len(volume):]

	i := strings.LastIndexAny(rest, separators)
	if i < 0 {
		return volume
	}

	dir := strings.TrimRight(rest[:i], separators)
	if dir == "" {
		return volume + rest[:1]
	}

	return volume + dir
}

// AbsoluteDir is Dir of p after expanding it against the working directory.
func AbsoluteDir(p string) (string, error) {
	expanded, err := ExpandRelative(p)
	if err != nil {
		return "", err
	}

	return Dir(expanded), nil
}

// Name returns the final segment of p, extension included.
func Name(p string) string {
	rest := p[len(volumeOf(p)):]
	return rest[strings.LastIndexAny(rest, separators)+1:]
}

// Ext returns the extension of the final segment without its dot, or "".
func Ext(p string) string {
	_, ext := splitExt(Name(p))
	return ext
}

// Stem returns the final segment without its extension.
func Stem(p string) string {
	stem, _ := splitExt(Name(p))
	return stem
}

// PartsAndExtension decomposes p into (directory, stem, extension). The
// extension is "" when the name has none: "a/b/c" gives ("a/b", "c", "").
func PartsAndExtension(p string) (dir, stem, ext string) {
	stem, ext = splitExt(Name(p))
	return Dir(p), stem, ext
}

// PartsNoExtension decomposes p into (directory, stem).
func PartsNoExtension(p string) (dir, stem string) {
	dir, stem, _ = PartsAndExtension(p)
	return dir, stem
}

// RemoveExtension drops the last extension of the final segment, dot
// included. A bare trailing dot counts: "a." becomes "a".
func RemoveExtension(p string) string {
	name := Name(p)
	stem, _ := splitExt(name)

	return p[:len(p)-len(name)+len(stem)]
}

// ReplaceExtension swaps the last extension for with (leading dot optional).
// An empty with removes the extension; a name without one gains it.
func ReplaceExtension(p, with string) string {
	base := RemoveExtension(p)

	with = strings.TrimPrefix(with, ".")
	if with == "" {
		return base
	}

	return base + "." + with
}

// NodeAt returns segment index of p, counted from the root.
func NodeAt(p string, index int) (string, error) {
	if err := validate(p); err != nil {
		return "", err
	}

	segments := Split(p)
	if err := checkIndex(p, index, len(segments)); err != nil {
		return "", err
	}

	return segments[index], nil
}

// SetNodeAt replaces segment index of p with name. The result keeps p's
// drive and root and uses a single separator between segments.
func SetNodeAt(p string, index int, name string) (string, error) {
	if err := validate(p); err != nil {
		return "", err
	}

	if name == "" || strings.ContainsAny(name, separators) || strings.IndexByte(name, 0) >= 0 {
		return "", fmt.Errorf("invalid node name %q: %w", name, pkgerrors.ErrMalformed)
	}

	parsed := parse(p)
	if err := checkIndex(p, index, len(parsed.segments)); err != nil {
		return "", err
	}

	parsed.segments[index] = name

	return parsed.String(), nil
}

// Parent strips exactly one trailing segment. Roots and empty paths are
// returned unchanged; a single relative segment yields "".
func Parent(p string) string {
	parsed := parse(p)
	if len(parsed.segments) == 0 {
		return p
	}

	parsed.segments = parsed.segments[:len(parsed.segments)-1]

	return parsed.String()
}

// FindParentSibling walks up from p and, at every level, looks for an entry
// called name next to the current directory. It returns the first match, or
// false once the filesystem root has been checked. A p or name that is not a
// usable path fails with ErrMalformed before anything is stat'ed.
func FindParentSibling(p, name string) (string, bool, error) {
	if err := validate(name); err != nil {
		return "", false, err
	}

	current, err := ExpandRelative(p)
	if err != nil {
		return "", false, err
	}

	for {
		parent := Parent(current)

		candidate := Join(parent, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		}

		if parent == current || parent == "" {
			return "", false, nil
		}

		current = parent
	}
}

// StripUpToNode finds the first segment equal to node, scanning from the
// root, and returns the relative path from that segment on. inclusive keeps
// the matched segment in the result; otherwise the result starts after it.
func StripUpToNode(p, node string, inclusive bool) (string, error) {
	if err := validate(p); err != nil {
		return "", err
	}

	parsed := parse(p)

	index := indexOf(parsed.segments, node)
	if index < 0 {
		return "", fmt.Errorf("node %q not in %q: %w", node, p, pkgerrors.ErrNotFound)
	}

	if !inclusive {
		index++
	}

	return relative(parsed, parsed.segments[index:]).String(), nil
}

// StripUpToNodeReversed finds the last segment equal to node and returns the
// path up to it, keeping the drive and root. inclusive keeps the matched
// segment; otherwise the result ends before it.
func StripUpToNodeReversed(p, node string, inclusive bool) (string, error) {
	if err := validate(p); err != nil {
		return "", err
	}

	parsed := parse(p)

	index := lastIndexOf(parsed.segments, node)
	if index < 0 {
		return "", fmt.Errorf("node %q not in %q: %w", node, p, pkgerrors.ErrNotFound)
	}

	if inclusive {
		index++
	}

	parsed.segments = parsed.segments[:index]

	return parsed.String(), nil
}

// ExpandRelative makes p absolute: "~" becomes the user's home, relative
// paths are joined onto the working directory, then "." and ".." are
// resolved lexically.
func ExpandRelative(p string) (string, error) {
	if err := validate(p); err != nil {
		return "", err
	}

	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := UserDirectory()
		if err != nil {
			return "", err
		}
		p = Join(home, p[1:])
	}

	if !IsAbsolute(p) {
		cwd, err := Workdir().Get()
		if err != nil {
			return "", err
		}
		p = Join(cwd, p)
	}

	return Clean(p), nil
}

// Clean resolves "." and ".." segments lexically and normalizes separators
// to the path's dialect. ".." never climbs above a root.
func Clean(p string) string {
	parsed := parse(p)

	cleaned := make([]string, 0, len(parsed.segments))
	for _, segment := range parsed.segments {
		switch {
		case segment == ".":
		case segment == ".." && len(cleaned) > 0 && cleaned[len(cleaned)-1] != "..":
			cleaned = cleaned[:len(cleaned)-1]
		case segment == ".." && parsed.rooted:
		default:
			cleaned = append(cleaned, segment)
		}
	}

	parsed.segments = cleaned

	if out := parsed.String(); out != "" {
		return out
	}

	return "."
}

// RemoveFileNameIfFile returns Dir(p) when p names an existing regular file
// and p otherwise.
func RemoveFileNameIfFile(p string) string {
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return p
	}

	return Dir(p)
}

// UserDirectory returns the current user's home directory.
func UserDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user directory: %w", err)
	}

	return home, nil
}

// TempDirectory returns the default directory for temporary files.
func TempDirectory() string {
	return os.TempDir()
}

type parsedPath struct {
	volume   string
	rooted   bool
	segments []string
	sep      byte
}

func parse(p string) parsedPath {
	volume := volumeOf(p)
	rest := p[len(volume):]

	return parsedPath{
		volume:   volume,
		rooted:   rest != "" && isSeparator(rest[0]),
		segments: Split(p),
		sep:      separatorFor(p),
	}
}

func (pp parsedPath) String() string {
	var builder strings.Builder

	builder.WriteString(pp.volume)
	if pp.rooted {
		builder.WriteByte(pp.sep)
	}

	for i, segment := range pp.segments {
		if i > 0 {
			builder.WriteByte(pp.sep)
		}
		builder.WriteString(segment)
	}

	return builder.String()
}

func relative(pp parsedPath, segments []string) parsedPath {
	return parsedPath{segments: segments, sep: pp.sep}
}

func checkIndex(p string, index, count int) error {
	if index < 0 || index >= count {
		return fmt.Errorf("node index %d for %q with %d segments: %w", index, p, count, pkgerrors.ErrIndexOutOfRange)
	}

	return nil
}

func collapseSeparators(p string) string {
	var builder strings.Builder
	builder.Grow(len(p))

	for i := 0; i < len(p); i++ {
		if i > 0 && isSeparator(p[i]) && isSeparator(p[i-1]) {
			continue
		}
		builder.WriteByte(p[i])
	}

	return builder.String()
}

func indexOf(segments []string, node string) int {
	for i, segment := range segments {
		if segment == node {
			return i
		}
	}

	return -1
}

func lastIndexOf(segments []string, node string) int {
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == node {
			return i
		}
	}

	return -1
}

func isSeparator(c byte) bool {
	return c == UnixSeparator || c == WindowsSeparator
}

func separatorFor(p string) byte {
	switch {
	case strings.ContainsRune(p, WindowsSeparator):
		return WindowsSeparator
	case strings.ContainsRune(p, UnixSeparator):
		return UnixSeparator
	case volumeOf(p) != "":
		return WindowsSeparator
	default:
		return filepath.Separator
	}
}

// splitExt splits a single name at its last dot. Leading dots belong to the
// stem, so ".bashrc" has no extension and ".tar.gz" has extension "gz".
func splitExt(name string) (stem, ext string) {
	leading := len(name) - len(strings.TrimLeft(name, "."))

	i := strings.LastIndexByte(name[leading:], '.')
	if i < 0 {
		return name, ""
	}

	i += leading

	return name[:i], name[i+1:]
}

func validate(p string) error {
	if strings.IndexByte(p, 0) >= 0 {
		return fmt.Errorf("path %q contains NUL: %w", p, pkgerrors.ErrMalformed)
	}

	return nil
}

func volumeOf(p string) string {
	if len(p) >= 2 && p[1] == ':' && isLetter(p[0]) {
		return p[:2]
	}

	return ""
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
