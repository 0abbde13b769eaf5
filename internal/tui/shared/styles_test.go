//nolint:varnamelen // Test files use idiomatic short variable names (g, etc.)
package shared_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/efs/internal/tui/shared"
)

func TestRenderFunctions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.RenderBox("test")).Should(ContainSubstring("test"))
	g.Expect(shared.RenderDim("test")).Should(ContainSubstring("test"))
	g.Expect(shared.RenderError("test")).Should(ContainSubstring("test"))
	g.Expect(shared.RenderLabel("test")).Should(ContainSubstring("test"))
	g.Expect(shared.RenderSuccess("test")).Should(ContainSubstring("test"))
	g.Expect(shared.RenderTitle("test")).Should(ContainSubstring("test"))
	g.Expect(shared.RenderWarning("test")).Should(ContainSubstring("test"))
}

func TestColors(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.AccentColor()).ShouldNot(BeEmpty())
	g.Expect(shared.DimColor()).ShouldNot(BeEmpty())
	g.Expect(shared.ErrorColor()).ShouldNot(BeEmpty())
	g.Expect(shared.HighlightColor()).ShouldNot(BeEmpty())
	g.Expect(shared.PrimaryColor()).ShouldNot(BeEmpty())
	g.Expect(shared.SuccessColor()).ShouldNot(BeEmpty())
	g.Expect(shared.WarningColor()).ShouldNot(BeEmpty())
}

func TestRenderASCIIProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percent  float64
		width    int
		expected string
	}{
		{0, 10, "[          ] 0%"},
		{1, 10, "[==========] 100%"},
		{0.5, 10, "[====>     ] 50%"},
		{0.1, 10, "[>         ] 10%"},
		{2, 4, "[====] 100%"},
	}

	for _, tt := range tests {
		g := NewWithT(t)
		g.Expect(shared.RenderASCIIProgress(tt.percent, tt.width)).To(Equal(tt.expected))
	}
}

func TestProgressWidth(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.ProgressWidth(0)).To(Equal(shared.MinProgressBarWidth))
	g.Expect(shared.ProgressWidth(60)).To(Equal(50))
	g.Expect(shared.ProgressWidth(500)).To(Equal(shared.MaxProgressBarWidth))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.FormatDuration(4 * time.Second)).To(Equal("4s"))
	g.Expect(shared.FormatDuration(150 * time.Second)).To(Equal("2m 30s"))
	g.Expect(shared.FormatDuration(time.Hour + 2*time.Minute + 3*time.Second)).To(Equal("1h 2m 3s"))
}

func TestTruncatePath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.TruncatePath("/a/b", 10)).To(Equal("/a/b"))
	g.Expect(shared.TruncatePath("/very/long/path/file.txt", 12)).To(Equal(".../file.txt"))
	g.Expect(shared.TruncatePath("abcdef", 2)).To(Equal("ef"))
}

func TestNewProgressModel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	model := shared.NewProgressModel(30)
	g.Expect(model.Width).To(Equal(30))
	g.Expect(model.ShowPercentage).To(BeFalse())
	g.Expect(shared.RenderProgress(model, 0.5)).To(ContainSubstring("50%"))
}
