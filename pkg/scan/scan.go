// Package scan walks a directory and collects what a callback emits for each
// entry.
//
// The walk is depth-first pre-order. In a recursive scan a directory's subtree
// results are spliced in ahead of the directory's own result, so a caller that
// emits every entry sees children before their parent:
//
//	root/x.txt
//	root/sub/z.txt
//	root/sub
//
// Entry order within a directory is whatever the filesystem returns.
package scan

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	pkgerrors "github.com/joe/efs/pkg/errors"
)

// Entry is one file or directory met during a scan.
type Entry struct {
	// Path is the scan root joined with the entry's relative path.
	Path string
	// RelativePath is '/'-separated and relative to the scan root.
	RelativePath string
	Name         string
	// IsDir follows symlinks: a link to a directory is a directory.
	IsDir bool
	// DirEntry is the raw handle the filesystem returned.
	DirEntry fs.DirEntry
}

// Args are passed through to every callback invocation unchanged.
type Args map[string]any

// Callback decides what, if anything, an entry contributes to the result.
// Returning false means no match and nothing is emitted.
type Callback[T any] interface {
	Visit(entry Entry, args Args) (T, bool)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc[T any] func(entry Entry, args Args) (T, bool)

// Visit calls f.
func (f CallbackFunc[T]) Visit(entry Entry, args Args) (T, bool) {
	return f(entry, args)
}

// Directory scans root and returns the callback's emissions in traversal
// order. A nil callback emits every entry's path and is only valid when T is
// string.
//
// A traversal failure stops the scan. The results gathered so far are always
// returned; the failure itself is handed to the configured error handler and
// only comes back as an error under the Raise policy.
func Directory[T any](root string, callback Callback[T], opts ...Option) ([]T, error) {
	cfg := newConfig(opts)

	if callback == nil {
		identity, ok := any(Identity).(Callback[T])
		if !ok {
			return nil, fmt.Errorf("nil callback for %T results: %w", *new(T), pkgerrors.ErrMalformed)
		}

		callback = identity
	}

	sep := separatorOf(root)

	walker := &walker[T]{
		root:     trimRoot(root, sep),
		sep:      sep,
		callback: callback,
		cfg:      cfg,
		results:  make([]T, 0),
	}

	err := walker.walk("")
	if err != nil {
		err = cfg.handler.Handle(err, cfg.policy, "failed to scan "+root)
	}

	return walker.results, err
}

// Paths returns the path of every entry below root.
func Paths(root string, opts ...Option) ([]string, error) {
	return Directory[string](root, Identity, opts...)
}

type walker[T any] struct {
	root     string
	sep      string
	callback Callback[T]
	cfg      *config
	results  []T
}

func (w *walker[T]) walk(relDir string) error {
	dir := w.pathOf(relDir)

	entries, err := w.cfg.fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, dirEntry := range entries {
		rel := path.Join(relDir, dirEntry.Name())
		entry := Entry{
			Path:         w.pathOf(rel),
			RelativePath: rel,
			Name:         dirEntry.Name(),
			IsDir:        dirEntry.IsDir(),
			DirEntry:     dirEntry,
		}

		if dirEntry.Type()&fs.ModeSymlink != 0 {
			// A dangling link stays a non-directory.
			if info, err := w.cfg.fsys.Stat(entry.Path); err == nil {
				entry.IsDir = info.IsDir()
			}
		}

		if w.cfg.recursive && entry.IsDir {
			if err := w.walk(rel); err != nil {
				return err
			}
		}

		if result, ok := w.callback.Visit(entry, w.cfg.args); ok {
			w.results = append(w.results, result)
		}
	}

	return nil
}

// pathOf joins the root with a '/'-separated relative path.
func (w *walker[T]) pathOf(rel string) string {
	if rel == "" {
		return w.root
	}

	if w.sep != "/" {
		rel = strings.ReplaceAll(rel, "/", w.sep)
	}

	if strings.HasSuffix(w.root, w.sep) {
		return w.root + rel
	}

	return w.root + w.sep + rel
}

// separatorOf returns the separator entry paths under root are built with.
// A root written with '/' keeps it; otherwise the host separator is used, so
// a '\' inside a unix name is never taken for a separator.
func separatorOf(root string) string {
	if strings.Contains(root, "/") {
		return "/"
	}

	return string(filepath.Separator)
}

// trimRoot drops trailing separators from root, leaving a bare root such
// as "/" or "C:\" intact. Nothing else about root is rewritten.
func trimRoot(root, sep string) string {
	trimmed := strings.TrimRight(root, sep)
	if trimmed == root {
		return root
	}

	if trimmed == "" || len(trimmed) == 2 && trimmed[1] == ':' {
		return trimmed + sep
	}

	return trimmed
}
