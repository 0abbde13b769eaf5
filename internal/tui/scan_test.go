//nolint:varnamelen // Test files use idiomatic short variable names (g, etc.)
package tui_test

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/efs/internal/tui"
	"github.com/joe/efs/internal/tui/shared"
	"github.com/joe/efs/pkg/filesystem"
	"github.com/joe/efs/pkg/scan"
)

func newTree() *filesystem.MockFileSystem {
	now := time.Now()
	fsys := filesystem.NewMockFileSystem()
	fsys.AddDir("/root", now)
	fsys.AddDir("/root/a", now)
	fsys.AddFile("/root/a/one.txt", []byte("1"), now)
	fsys.AddFile("/root/a/two.log", []byte("2"), now)
	fsys.AddFile("/root/b.txt", []byte("b"), now)

	return fsys
}

func TestTrackCountsEveryEntry(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fsys := newTree()
	tracker := &tui.ScanProgress{}
	tracker.SetTotal(2)

	results, err := scan.Directory("/root", tui.Track(scan.FileExtensions(".txt"), tracker),
		scan.WithFileSystem(fsys), scan.WithRecursive(true))
	g.Expect(err).ToNot(HaveOccurred())

	g.Expect(results).To(Equal([]string{"/root/a/one.txt", "/root/b.txt"}))
	g.Expect(tracker.Visited()).To(BeEquivalentTo(4))
	g.Expect(tracker.Emitted()).To(BeEquivalentTo(2))
	g.Expect(tracker.Current()).To(Equal("/root/b.txt"))

	fraction, known := tracker.Fraction()
	g.Expect(known).To(BeTrue())
	g.Expect(fraction).To(BeNumerically("==", 1))
}

func TestFractionUnknownWithoutTotal(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	tracker := &tui.ScanProgress{}
	_, known := tracker.Fraction()
	g.Expect(known).To(BeFalse())
	g.Expect(tracker.Current()).To(BeEmpty())
}

func TestScanModelInitStartsScan(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewScanModel("/root", func() ([]string, error) { return nil, nil }, &tui.ScanProgress{})
	g.Expect(model.Init()).ToNot(BeNil())
}

func TestScanModelDoneQuits(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewScanModel("/root", nil, &tui.ScanProgress{})

	updated, cmd := model.Update(tui.ScanDoneMsg{Results: []string{"/root/x"}})
	g.Expect(cmd).ToNot(BeNil())
	g.Expect(cmd()).To(Equal(tea.Quit()))

	final, ok := updated.(tui.ScanModel)
	g.Expect(ok).To(BeTrue())
	g.Expect(final.Done()).To(BeTrue())
	g.Expect(final.Cancelled()).To(BeFalse())
	g.Expect(final.Results()).To(Equal([]string{"/root/x"}))
	g.Expect(final.View()).To(ContainSubstring("1 results"))
}

func TestScanModelShowsFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewScanModel("/root", nil, &tui.ScanProgress{})

	updated, _ := model.Update(tui.ScanDoneMsg{Err: errors.New("boom")})
	final := updated.(tui.ScanModel) //nolint:forcetypeassert // Update always returns ScanModel

	g.Expect(final.Err()).To(MatchError("boom"))
	g.Expect(final.View()).To(ContainSubstring("failed: boom"))
}

func TestScanModelCancel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewScanModel("/root", nil, &tui.ScanProgress{})

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	g.Expect(cmd).ToNot(BeNil())

	final := updated.(tui.ScanModel) //nolint:forcetypeassert // Update always returns ScanModel
	g.Expect(final.Cancelled()).To(BeTrue())
}

func TestScanModelQuitAfterDoneIsNotCancel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewScanModel("/root", nil, &tui.ScanProgress{})
	updated, _ := model.Update(tui.ScanDoneMsg{})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	final := updated.(tui.ScanModel) //nolint:forcetypeassert // Update always returns ScanModel
	g.Expect(final.Cancelled()).To(BeFalse())
}

func TestScanModelViewWhileRunning(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	tracker := &tui.ScanProgress{}
	tracker.SetTotal(4)
	tracker.Observe(scan.Entry{Path: "/root/a", RelativePath: "a", Name: "a", IsDir: true}, true)

	model := tui.NewScanModel("/root", nil, tracker)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	view := updated.View()
	g.Expect(view).To(ContainSubstring("Scanning /root"))
	g.Expect(view).To(ContainSubstring("25%"))
	g.Expect(view).To(ContainSubstring("/root/a"))
	g.Expect(view).To(ContainSubstring("cancel"))
}

func TestScanModelTickReschedulesUntilDone(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := tui.NewScanModel("/root", nil, &tui.ScanProgress{})

	updated, cmd := model.Update(shared.TickMsg{})
	g.Expect(cmd).ToNot(BeNil())

	updated, _ = updated.Update(tui.ScanDoneMsg{})
	_, cmd = updated.Update(shared.TickMsg{})
	g.Expect(cmd).To(BeNil())
}
