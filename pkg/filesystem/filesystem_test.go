package filesystem_test

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/efs/pkg/filesystem"
)

func TestMockFileSystem_CreateAndOpen(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()

	file, err := mock.Create("/test.txt")
	g.Expect(err).ToNot(HaveOccurred())
	_, err = file.Write([]byte("test content"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(file.Close()).To(Succeed())

	file, err = mock.Open("test.txt")
	g.Expect(err).ToNot(HaveOccurred())

	data, err := io.ReadAll(file)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("test content"))
	g.Expect(file.Close()).To(Succeed())
	g.Expect(file.Close()).To(MatchError(os.ErrClosed))
}

func TestMockFileSystem_StatAndChtimes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	modTime := time.Now().Add(-time.Hour)
	mock.AddFile("/dir/test.txt", []byte("test"), modTime)

	info, err := mock.Stat("/dir/test.txt")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(info.Name()).To(Equal("test.txt"))
	g.Expect(info.Size()).To(Equal(int64(4)))
	g.Expect(info.ModTime()).To(Equal(modTime))

	dir, err := mock.Stat("/dir")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(dir.IsDir()).To(BeTrue())

	later := modTime.Add(time.Minute)
	g.Expect(mock.Chtimes("/dir/test.txt", later, later)).To(Succeed())

	_, got, err := mock.GetFile("/dir/test.txt")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal(later))

	_, err = mock.Stat("/missing")
	g.Expect(err).To(MatchError(fs.ErrNotExist))
}

func TestMockFileSystem_OpenFileFlags(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/log.txt", []byte("one\n"), time.Now())

	_, err := mock.OpenFile("/log.txt", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	g.Expect(err).To(MatchError(fs.ErrExist))

	file, err := mock.OpenFile("/log.txt", os.O_APPEND|os.O_WRONLY, 0o644)
	g.Expect(err).ToNot(HaveOccurred())
	_, err = file.Write([]byte("two\n"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(file.Close()).To(Succeed())

	data, _, err := mock.GetFile("/log.txt")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("one\ntwo\n"))

	_, err = mock.OpenFile("/nowhere/x.txt", os.O_CREATE|os.O_WRONLY, 0o644)
	g.Expect(err).To(MatchError(fs.ErrNotExist))

	_, err = mock.Open("/")
	g.Expect(err).To(MatchError(syscall.EISDIR))
}

func TestMockFileSystem_ReadDirSorted(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	now := time.Now()
	mock.AddFile("/root/b.txt", nil, now)
	mock.AddFile("/root/a.txt", nil, now)
	mock.AddFile("/root/sub/deep.txt", nil, now)

	entries, err := mock.ReadDir("/root")
	g.Expect(err).ToNot(HaveOccurred())

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	g.Expect(names).To(Equal([]string{"a.txt", "b.txt", "sub"}))
	g.Expect(entries[2].IsDir()).To(BeTrue())

	_, err = mock.ReadDir("/root/a.txt")
	g.Expect(err).To(MatchError(syscall.ENOTDIR))
}

func TestMockFileSystem_RemoveAndRename(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/a/x.txt", []byte("x"), time.Now())

	g.Expect(mock.Remove("/a")).To(MatchError(syscall.ENOTEMPTY))

	g.Expect(mock.Rename("/a", "/b")).To(Succeed())
	g.Expect(mock.Exists("/a/x.txt")).To(BeFalse())
	g.Expect(mock.Exists("/b/x.txt")).To(BeTrue())

	g.Expect(mock.RemoveAll("/b")).To(Succeed())
	g.Expect(mock.ListFiles()).To(Equal([]string{"/"}))
	g.Expect(mock.RemoveAll("/b")).To(Succeed())
}

func TestMockFileSystem_Mkdir(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()

	g.Expect(mock.Mkdir("/a/b", 0o755)).To(MatchError(fs.ErrNotExist))
	g.Expect(mock.MkdirAll("/a/b", 0o755)).To(Succeed())
	g.Expect(mock.Mkdir("/a/b", 0o755)).To(MatchError(fs.ErrExist))
	g.Expect(mock.Exists("/a")).To(BeTrue())
}

func TestMockFileSystem_ScanParentsFirst(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	now := time.Now()
	mock.AddFile("/src/a.txt", []byte("aa"), now)
	mock.AddFile("/src/a/b.txt", []byte("b"), now)
	mock.AddFile("/other.txt", nil, now)

	scanner := mock.Scan("/src")

	var got []string

	for {
		info, ok := scanner.Next()
		if !ok {
			break
		}

		got = append(got, info.RelativePath)
	}

	g.Expect(scanner.Err()).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{"a", "a.txt", "a/b.txt"}))

	missing := mock.Scan("/nope")
	_, ok := missing.Next()
	g.Expect(ok).To(BeFalse())
	g.Expect(missing.Err()).To(MatchError(fs.ErrNotExist))
}

func TestRealFileSystem_Scan(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	g.Expect(os.MkdirAll(filepath.Join(root, "sub"), 0o755)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "x.txt"), []byte("x"), 0o600)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "sub", "z.txt"), []byte("zz"), 0o600)).To(Succeed())

	realFS := filesystem.NewRealFileSystem()
	scanner := realFS.Scan(root)

	sizes := map[string]int64{}

	for {
		info, ok := scanner.Next()
		if !ok {
			break
		}

		sizes[info.RelativePath] = info.Size
	}

	g.Expect(scanner.Err()).ToNot(HaveOccurred())
	g.Expect(sizes).To(HaveLen(3))
	g.Expect(sizes).To(HaveKeyWithValue("x.txt", int64(1)))
	g.Expect(sizes).To(HaveKeyWithValue(filepath.Join("sub", "z.txt"), int64(2)))
	g.Expect(sizes).To(HaveKey("sub"))
}

func TestRealFileSystem_ErrorsKeepIdentity(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	realFS := filesystem.NewRealFileSystem()
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := realFS.Open(missing)
	g.Expect(err).To(MatchError(fs.ErrNotExist))
	g.Expect(err.Error()).To(ContainSubstring(missing))

	_, err = realFS.ReadDir(missing)
	g.Expect(err).To(MatchError(fs.ErrNotExist))

	scanner := realFS.Scan(missing)
	_, ok := scanner.Next()
	g.Expect(ok).To(BeFalse())
	g.Expect(scanner.Err()).To(HaveOccurred())
}
