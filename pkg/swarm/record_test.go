package swarm_test

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/efs/pkg/swarm"
)

type row struct {
	Name  string
	Score *string
	Raw   swarm.Line
	note  string //nolint:unused // Unexported fields are skipped
}

func TestTyped_StructAssignsByPosition(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := newFiles(map[string]string{
		"/names.txt":  "ada\ngrace\nlinus\n",
		"/scores.txt": "10\n9\n",
		"/raw.txt":    "r1\n",
	})

	build, err := swarm.Struct[row]()
	g.Expect(err).ToNot(HaveOccurred())

	reader := swarm.New([]string{"/names.txt", "/scores.txt", "/raw.txt"}, swarm.WithFileSystem(mock))
	g.Expect(reader.Open()).To(Succeed())
	defer func() { _ = reader.Close() }()

	typed := swarm.NewTyped(reader, build)

	first, ok := typed.ReadLine()
	g.Expect(ok).To(BeTrue())
	g.Expect(first.Name).To(Equal("ada"))
	g.Expect(first.Score).To(HaveValue(Equal("10")))
	g.Expect(first.Raw).To(Equal(swarm.Line{Text: "r1", Valid: true}))

	second, ok := typed.ReadLine()
	g.Expect(ok).To(BeTrue())
	g.Expect(second.Raw.Valid).To(BeFalse())

	third, ok := typed.ReadLine()
	g.Expect(ok).To(BeTrue())
	g.Expect(third.Name).To(Equal("linus"))
	g.Expect(third.Score).To(BeNil())

	_, ok = typed.ReadLine()
	g.Expect(ok).To(BeFalse())
	g.Expect(typed.Err()).ToNot(HaveOccurred())
}

func TestTyped_TooManyFiles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	type pair struct{ A, B string }

	mock := newFiles(map[string]string{"/1": "x\n", "/2": "y\n", "/3": "z\n"})

	build, err := swarm.Struct[pair]()
	g.Expect(err).ToNot(HaveOccurred())

	reader := swarm.New([]string{"/1", "/2", "/3"}, swarm.WithFileSystem(mock))
	g.Expect(reader.Open()).To(Succeed())
	defer func() { _ = reader.Close() }()

	typed := swarm.NewTyped(reader, build)
	_, ok := typed.ReadLine()
	g.Expect(ok).To(BeFalse())
	g.Expect(typed.Err()).To(MatchError(swarm.ErrShape))
}

func TestStruct_RejectsUnsupportedShapes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := swarm.Struct[int]()
	g.Expect(err).To(MatchError(swarm.ErrShape))

	type bad struct{ Count int }

	_, err = swarm.Struct[bad]()
	g.Expect(err).To(MatchError(swarm.ErrShape))
}
