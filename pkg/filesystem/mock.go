package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// The mock reports type mismatches with the same errnos the host would.
var (
	errIsDir    = syscall.EISDIR
	errNotDir   = syscall.ENOTDIR
	errNotEmpty = syscall.ENOTEMPTY
)

// MockFileSystem is an in-memory filesystem for tests. Paths are
// '/'-separated and cleaned; the root "/" always exists.
type MockFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*mockEntry
}

type mockEntry struct {
	data    []byte
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() any           { return nil }

func (fi *mockFileInfo) Mode() os.FileMode {
	if fi.isDir {
		return fi.perm | os.ModeDir
	}

	return fi.perm
}

// mockHandle buffers writes and publishes them to the filesystem on Close.
// Written data replaces the file content unless the handle was opened with
// O_APPEND.
type mockHandle struct {
	owner  *MockFileSystem
	name   string
	reader *bytes.Reader
	writer *bytes.Buffer
	dirty  bool
	closed bool
}

func (h *mockHandle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, os.ErrClosed
	}

	if h.reader == nil {
		return 0, io.EOF
	}

	return h.reader.Read(p) //nolint:wrapcheck // io.Reader contract
}

func (h *mockHandle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, os.ErrClosed
	}

	if h.writer == nil {
		return 0, &fs.PathError{Op: "write", Path: h.name, Err: fs.ErrPermission}
	}

	h.dirty = true

	return h.writer.Write(p) //nolint:wrapcheck // io.Writer contract
}

func (h *mockHandle) Close() error {
	if h.closed {
		return os.ErrClosed
	}

	h.closed = true

	if !h.dirty {
		return nil
	}

	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()

	entry, exists := h.owner.entries[h.name]
	if !exists {
		entry = &mockEntry{perm: 0o644} //nolint:mnd // Default file permissions
		h.owner.entries[h.name] = entry
	}

	entry.data = append([]byte(nil), h.writer.Bytes()...)
	entry.modTime = time.Now()

	return nil
}

func (h *mockHandle) Stat() (os.FileInfo, error) {
	if h.closed {
		return nil, os.ErrClosed
	}

	return h.owner.Stat(h.name)
}

// NewMockFileSystem creates a new in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		entries: map[string]*mockEntry{
			"/": {isDir: true, perm: 0o755, modTime: time.Now()}, //nolint:mnd // Default directory permissions
		},
	}
}

func mockKey(name string) string {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}

	return path.Clean(name)
}

func notExist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

// AddDir adds a directory, creating parents as needed.
func (m *MockFileSystem) AddDir(name string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mockKey(name)
	m.mkdirAllLocked(path.Dir(key), 0o755) //nolint:mnd // Default directory permissions

	m.entries[key] = &mockEntry{modTime: modTime, isDir: true, perm: 0o755} //nolint:mnd // Default directory permissions
}

// AddFile adds a file with the given content and modtime, creating parents as needed.
func (m *MockFileSystem) AddFile(name string, content []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mockKey(name)
	m.mkdirAllLocked(path.Dir(key), 0o755) //nolint:mnd // Default directory permissions

	m.entries[key] = &mockEntry{
		data:    append([]byte(nil), content...),
		modTime: modTime,
		perm:    0o644, //nolint:mnd // Default file permissions
	}
}

// Chtimes changes the modification time of an entry.
func (m *MockFileSystem) Chtimes(name string, _, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[mockKey(name)]
	if !exists {
		return notExist("chtimes", name)
	}

	entry.modTime = mtime

	return nil
}

// Create creates or truncates a file for writing.
func (m *MockFileSystem) Create(name string) (File, error) {
	return m.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644) //nolint:mnd // Default file permissions
}

// Exists reports whether name exists.
func (m *MockFileSystem) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.entries[mockKey(name)]

	return exists
}

// GetFile returns a copy of a file's content and its modtime.
func (m *MockFileSystem) GetFile(name string) ([]byte, time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[mockKey(name)]
	if !exists {
		return nil, time.Time{}, notExist("read", name)
	}

	if entry.isDir {
		return nil, time.Time{}, &fs.PathError{Op: "read", Path: name, Err: errIsDir}
	}

	return append([]byte(nil), entry.data...), entry.modTime, nil
}

// ListFiles returns every path in the filesystem, sorted.
func (m *MockFileSystem) ListFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Lstat is Stat; the mock has no symlinks.
func (m *MockFileSystem) Lstat(name string) (os.FileInfo, error) {
	return m.Stat(name)
}

// Mkdir creates a single directory. The parent must exist.
func (m *MockFileSystem) Mkdir(name string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mockKey(name)
	if _, exists := m.entries[key]; exists {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}

	parent, exists := m.entries[path.Dir(key)]
	if !exists {
		return notExist("mkdir", name)
	}

	if !parent.isDir {
		return &fs.PathError{Op: "mkdir", Path: name, Err: errNotDir}
	}

	m.entries[key] = &mockEntry{modTime: time.Now(), isDir: true, perm: perm}

	return nil
}

// MkdirAll creates a directory and all necessary parents.
func (m *MockFileSystem) MkdirAll(name string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mockKey(name)
	if entry, exists := m.entries[key]; exists && !entry.isDir {
		return &fs.PathError{Op: "mkdir", Path: name, Err: errNotDir}
	}

	m.mkdirAllLocked(key, perm)

	return nil
}

func (m *MockFileSystem) mkdirAllLocked(key string, perm os.FileMode) {
	if _, exists := m.entries[key]; exists {
		return
	}

	m.mkdirAllLocked(path.Dir(key), perm)

	m.entries[key] = &mockEntry{modTime: time.Now(), isDir: true, perm: perm}
}

// Open opens a file for reading.
func (m *MockFileSystem) Open(name string) (File, error) {
	return m.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens a file honouring the create, exclusive, truncate and append flags.
//
//nolint:cyclop // One branch per supported open flag
func (m *MockFileSystem) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mockKey(name)
	entry, exists := m.entries[key]

	switch {
	case exists && flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	case exists && entry.isDir:
		return nil, &fs.PathError{Op: "open", Path: name, Err: errIsDir}
	case !exists && flag&os.O_CREATE == 0:
		return nil, notExist("open", name)
	}

	if !exists {
		parent, ok := m.entries[path.Dir(key)]
		if !ok || !parent.isDir {
			return nil, notExist("open", name)
		}

		entry = &mockEntry{modTime: time.Now(), perm: perm}
		m.entries[key] = entry
	}

	if flag&os.O_TRUNC != 0 {
		entry.data = nil
	}

	handle := &mockHandle{owner: m, name: key}

	writable := flag&(os.O_WRONLY|os.O_RDWR) != 0
	if flag&os.O_WRONLY == 0 {
		handle.reader = bytes.NewReader(append([]byte(nil), entry.data...))
	}

	if writable {
		handle.writer = &bytes.Buffer{}
		if flag&os.O_APPEND != 0 {
			handle.writer.Write(entry.data)
		}
	}

	return handle, nil
}

// ReadDir lists the direct children of a directory, sorted by name.
func (m *MockFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := mockKey(name)

	dir, exists := m.entries[key]
	if !exists {
		return nil, notExist("readdir", name)
	}

	if !dir.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errNotDir}
	}

	entries := make([]fs.DirEntry, 0)

	for child, entry := range m.entries {
		if child == key || path.Dir(child) != key {
			continue
		}

		entries = append(entries, fs.FileInfoToDirEntry(entry.info(child)))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	return entries, nil
}

// Remove removes a file or empty directory.
func (m *MockFileSystem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mockKey(name)

	entry, exists := m.entries[key]
	if !exists {
		return notExist("remove", name)
	}

	if entry.isDir && m.hasChildrenLocked(key) {
		return &fs.PathError{Op: "remove", Path: name, Err: errNotEmpty}
	}

	delete(m.entries, key)

	return nil
}

// RemoveAll removes name and everything below it. A missing path is not an error.
func (m *MockFileSystem) RemoveAll(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := mockKey(name)
	for child := range m.entries {
		if child == key || isBelow(child, key) {
			delete(m.entries, child)
		}
	}

	if key == "/" {
		m.entries[key] = &mockEntry{isDir: true, perm: 0o755, modTime: time.Now()} //nolint:mnd // Default directory permissions
	}

	return nil
}

// Rename moves an entry and, for directories, everything below it.
func (m *MockFileSystem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := mockKey(oldPath)
	to := mockKey(newPath)

	if _, exists := m.entries[from]; !exists {
		return notExist("rename", oldPath)
	}

	if parent, exists := m.entries[path.Dir(to)]; !exists || !parent.isDir {
		return notExist("rename", newPath)
	}

	moved := make(map[string]*mockEntry)

	for child, entry := range m.entries {
		if child == from || isBelow(child, from) {
			moved[to+strings.TrimPrefix(child, from)] = entry
			delete(m.entries, child)
		}
	}

	for child, entry := range moved {
		m.entries[child] = entry
	}

	return nil
}

// Scan returns an iterator over every entry below root, in lexical order.
func (m *MockFileSystem) Scan(root string) FileScanner {
	return newEntryScanner(func() ([]FileInfo, error) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		key := mockKey(root)
		if dir, exists := m.entries[key]; !exists || !dir.isDir {
			return nil, notExist("scan", root)
		}

		files := make([]FileInfo, 0)

		for child, entry := range m.entries {
			if !isBelow(child, key) {
				continue
			}

			rel := strings.TrimPrefix(strings.TrimPrefix(child, key), "/")
			files = append(files, FileInfo{
				RelativePath: rel,
				Size:         int64(len(entry.data)),
				ModTime:      entry.modTime,
				IsDir:        entry.isDir,
			})
		}

		sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })

		return files, nil
	})
}

// Stat returns file information.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := mockKey(name)

	entry, exists := m.entries[key]
	if !exists {
		return nil, notExist("stat", name)
	}

	return entry.info(key), nil
}

func (m *MockFileSystem) hasChildrenLocked(key string) bool {
	for child := range m.entries {
		if isBelow(child, key) {
			return true
		}
	}

	return false
}

func (e *mockEntry) info(key string) *mockFileInfo {
	return &mockFileInfo{
		name:    path.Base(key),
		size:    int64(len(e.data)),
		modTime: e.modTime,
		isDir:   e.isDir,
		perm:    e.perm,
	}
}

func isBelow(child, dir string) bool {
	if dir == "/" {
		return child != "/"
	}

	return strings.HasPrefix(child, dir+"/")
}
