package fileops_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/fileops"
)

func TestMergeFiles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ops, mock, _ := newOps()
	now := time.Now()
	mock.AddFile("/in/1.txt", []byte("one"), now)
	mock.AddFile("/in/2.txt", []byte("two"), now)

	ok, err := ops.MergeFiles("/out/all.txt", []string{"/in/1.txt", "/in/missing.txt", "/in/2.txt"},
		fileops.MergeOptions{IgnoreMissing: true, JoinToken: "\n"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeTrue())

	data, _, err := mock.GetFile("/out/all.txt")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("one\ntwo\n"))
	g.Expect(mock.ListFiles()).To(ConsistOf("/", "/in", "/in/1.txt", "/in/2.txt", "/out", "/out/all.txt"))
}

func TestMergeFiles_MissingInputLeavesTargetUntouched(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ops, mock, _ := newOps()
	mock.AddFile("/out.txt", []byte("keep"), time.Now())
	mock.AddFile("/1.txt", []byte("one"), time.Now())

	ok, err := ops.WithPolicy(pkgerrors.Raise).MergeFiles("/out.txt", []string{"/1.txt", "/nope.txt"}, fileops.MergeOptions{})
	g.Expect(ok).To(BeFalse())
	g.Expect(pkgerrors.Is(err, pkgerrors.KindNotFound)).To(BeTrue())

	data, _, _ := mock.GetFile("/out.txt")
	g.Expect(string(data)).To(Equal("keep"))
	g.Expect(mock.ListFiles()).To(ConsistOf("/", "/out.txt", "/1.txt"))
}

func TestAtomicWrite_LocalDiskUsesLock(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "state.txt")

	ops := fileops.NewLocal().WithPolicy(pkgerrors.Raise)

	ok, err := ops.AtomicWrite(target, []byte("v1"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeTrue())

	ok, err = ops.AtomicWrite(target, []byte("v2"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeTrue())

	data, err := os.ReadFile(target)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("v2"))

	entries, err := os.ReadDir(dir)
	g.Expect(err).ToNot(HaveOccurred())

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	g.Expect(names).To(ConsistOf("state.txt", "state.txt.lock"))
}

func TestFileLock_TryLock(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "x.lock")

	first := fileops.NewFileLock(path)
	g.Expect(first.Lock()).To(Succeed())

	acquired, err := fileops.NewFileLock(path).TryLock()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(acquired).To(BeFalse())

	g.Expect(first.Unlock()).To(Succeed())

	second := fileops.NewFileLock(path)
	acquired, err = second.TryLock()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(acquired).To(BeTrue())
	g.Expect(second.Unlock()).To(Succeed())
}

func TestCountLinesAndEachLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    []string
	}{
		{content: "", want: nil},
		{content: "a\nb\n", want: []string{"a", "b"}},
		{content: "a\r\nb", want: []string{"a", "b"}},
		{content: "\n\n", want: []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			ops, mock, _ := newOps()
			mock.AddFile("/f", []byte(tt.content), time.Now())

			count, err := ops.CountLines("/f")
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(count).To(Equal(len(tt.want)))

			var lines []string

			err = ops.EachLine("/f", func(index int, line string) error {
				g.Expect(index).To(Equal(len(lines)))
				lines = append(lines, line)

				return nil
			})
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(lines).To(Equal(tt.want))
		})
	}
}

func TestCountLines_MissingFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ops, _, buf := newOps()

	count, err := ops.CountLines("/missing")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(count).To(BeZero())
	g.Expect(buf.String()).To(ContainSubstring("failed to count lines in /missing"))
}
