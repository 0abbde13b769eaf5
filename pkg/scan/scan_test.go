package scan_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/filesystem"
	"github.com/joe/efs/pkg/logger"
	"github.com/joe/efs/pkg/scan"
)

func newTree() *filesystem.MockFileSystem {
	mock := filesystem.NewMockFileSystem()
	now := time.Now()
	mock.AddFile("/root/x.txt", []byte("x"), now)
	mock.AddFile("/root/y.log", []byte("y"), now)
	mock.AddFile("/root/sub/z.txt", []byte("z"), now)

	return mock
}

func TestDirectory_NonRecursiveSeesTopLevelOnly(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	got, err := scan.Directory("/root", scan.FilesOnly, scan.WithFileSystem(newTree()))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(ConsistOf("/root/x.txt", "/root/y.log"))
}

func TestDirectory_RecursiveSplicesSubtreeBeforeParent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	got, err := scan.Paths("/root", scan.WithFileSystem(newTree()), scan.WithRecursive(true))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{
		"/root/sub/z.txt",
		"/root/sub",
		"/root/x.txt",
		"/root/y.log",
	}))
}

func TestDirectory_TrailingSeparatorOnRoot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	got, err := scan.Directory("/root/", scan.FilesOnly, scan.WithFileSystem(newTree()))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(ConsistOf("/root/x.txt", "/root/y.log"))
}

func TestDirectory_NilCallbackIsIdentity(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	got, err := scan.Directory[string]("/root", nil, scan.WithFileSystem(newTree()))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(ConsistOf("/root/x.txt", "/root/y.log", "/root/sub"))

	_, err = scan.Directory[int]("/root", nil, scan.WithFileSystem(newTree()))
	g.Expect(err).To(MatchError(pkgerrors.ErrMalformed))
}

func TestDirectory_ArgsReachCallback(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sizeOf := scan.CallbackFunc[int](func(entry scan.Entry, args scan.Args) (int, bool) {
		if entry.IsDir {
			return 0, false
		}

		info, err := entry.DirEntry.Info()
		if err != nil {
			return 0, false
		}

		return int(info.Size()) * args["scale"].(int), true //nolint:forcetypeassert // Test controls args
	})

	got, err := scan.Directory("/root", sizeOf,
		scan.WithFileSystem(newTree()),
		scan.WithRecursive(true),
		scan.WithArgs(scan.Args{"scale": 10}),
	)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]int{10, 10, 10}))
}

func TestDirectory_MissingRootLogsByDefault(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var buf bytes.Buffer
	handler := pkgerrors.NewHandler(logger.NewConsoleLogger(&buf, "info"))

	got, err := scan.Paths("/nope", scan.WithFileSystem(newTree()), scan.WithHandler(handler))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(BeEmpty())
	g.Expect(buf.String()).To(ContainSubstring("failed to scan /nope"))
	g.Expect(buf.String()).To(ContainSubstring("[not_found]"))
}

func TestDirectory_RaiseReturnsPartialResults(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newTree()
	failing := &failingFS{MockFileSystem: mock, failOn: "/root/sub"}

	got, err := scan.Paths("/root",
		scan.WithFileSystem(failing),
		scan.WithRecursive(true),
		scan.WithPolicy(pkgerrors.Raise),
	)
	g.Expect(err).To(MatchError(fs.ErrPermission))
	g.Expect(pkgerrors.Is(err, pkgerrors.KindPermission)).To(BeTrue())
	g.Expect(got).To(BeEmpty())

	failing.failOn = "/root/zzz"
	mock.AddDir("/root/zzz", time.Now())

	got, err = scan.Paths("/root",
		scan.WithFileSystem(failing),
		scan.WithRecursive(true),
		scan.WithPolicy(pkgerrors.Raise),
	)
	g.Expect(err).To(HaveOccurred())
	g.Expect(got).To(Equal([]string{"/root/sub/z.txt", "/root/sub", "/root/x.txt", "/root/y.log"}))
}

func TestDirectory_IgnoreSwallowsFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var buf bytes.Buffer
	handler := pkgerrors.NewHandler(logger.NewConsoleLogger(&buf, "trace"))

	got, err := scan.Paths("/nope",
		scan.WithFileSystem(newTree()),
		scan.WithHandler(handler),
		scan.WithPolicy(pkgerrors.Ignore),
	)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(BeEmpty())
	g.Expect(buf.String()).To(BeEmpty())
}

func TestDirectory_LocalDisk(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	g.Expect(os.MkdirAll(filepath.Join(root, "sub"), 0o755)).To(Succeed())

	for _, name := range []string{"x.txt", "y.log", filepath.Join("sub", "z.txt")} {
		g.Expect(os.WriteFile(filepath.Join(root, name), nil, 0o600)).To(Succeed())
	}

	flat, err := scan.Directory(root, scan.FilesOnly)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(flat).To(ConsistOf(filepath.Join(root, "x.txt"), filepath.Join(root, "y.log")))

	deep, err := scan.Directory(root, scan.FilesOnly, scan.WithRecursive(true))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(deep).To(ConsistOf(
		filepath.Join(root, "x.txt"),
		filepath.Join(root, "y.log"),
		filepath.Join(root, "sub", "z.txt"),
	))
}

func TestDirectory_FollowsDirectorySymlinks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	root := t.TempDir()
	g.Expect(os.MkdirAll(filepath.Join(root, "dir"), 0o755)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "dir", "inner.txt"), nil, 0o600)).To(Succeed())

	if err := os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	g.Expect(os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling"))).To(Succeed())

	files, err := scan.Directory(root, scan.FilesOnly)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(files).To(ConsistOf(filepath.Join(root, "dangling")))

	dirs, err := scan.Directory(root, scan.DirectoriesOnly)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(dirs).To(ConsistOf(filepath.Join(root, "dir"), filepath.Join(root, "link")))

	deep, err := scan.Directory(root, scan.FilesOnly, scan.WithRecursive(true))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(deep).To(ConsistOf(
		filepath.Join(root, "dir", "inner.txt"),
		filepath.Join(root, "link", "inner.txt"),
		filepath.Join(root, "dangling"),
	))
}

func TestDirectory_BackslashInUnixRootIsAName(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	if runtime.GOOS == "windows" {
		t.Skip("backslash is a separator on windows")
	}

	root := filepath.Join(t.TempDir(), `a\b`)
	g.Expect(os.MkdirAll(root, 0o755)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(root, "f.txt"), nil, 0o600)).To(Succeed())

	got, err := scan.Paths(root, scan.WithPolicy(pkgerrors.Raise))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{root + "/f.txt"}))

	got, err = scan.Paths(root+"//", scan.WithPolicy(pkgerrors.Raise))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal([]string{root + "/f.txt"}))
}

func TestDirectory_FilesystemRoot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	mock.AddFile("/top.txt", nil, time.Now())

	got, err := scan.Paths("/", scan.WithFileSystem(mock), scan.WithPolicy(pkgerrors.Raise))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(ConsistOf("/top.txt"))
}

// failingFS fails ReadDir for one directory.
type failingFS struct {
	*filesystem.MockFileSystem
	failOn string
}

func (f *failingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.failOn {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrPermission}
	}

	return f.MockFileSystem.ReadDir(name)
}
