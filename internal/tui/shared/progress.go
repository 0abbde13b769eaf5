package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// NewProgressModel creates a new progress bar model with the specified width.
func NewProgressModel(width int) progress.Model {
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = width
	progressBar.ShowPercentage = false // We render percentage ourselves

	if !colorsDisabled {
		progressBar.EmptyColor = dimColorCode
		progressBar.FullColor = accentColorCode
	}

	return progressBar
}

// ProgressWidth fits a progress bar to a window of the given width.
func ProgressWidth(windowWidth int) int {
	return min(max(windowWidth-ProgressMargin, MinProgressBarWidth), MaxProgressBarWidth)
}

// RenderASCIIProgress renders a progress bar in ASCII format.
// percent should be between 0.0 and 1.0, width is the total width of the bar.
// Returns a string like: "[=========>          ] 45%"
func RenderASCIIProgress(percent float64, width int) string {
	percent = min(max(percent, 0), 1)
	pct := int(percent * ProgressPercentageScale)
	filled := int(percent * float64(width))

	var bar strings.Builder
	bar.WriteString("[")

	switch {
	case filled >= width:
		bar.WriteString(strings.Repeat("=", width))
	case percent > 0:
		// The arrow marks the progress point.
		equalsCount := max(0, filled-1)
		bar.WriteString(strings.Repeat("=", equalsCount))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", width-equalsCount-1))
	default:
		bar.WriteString(strings.Repeat(" ", width))
	}

	bar.WriteString("]")

	return fmt.Sprintf("%s %d%%", bar.String(), pct)
}

// RenderProgress renders progress using either Bubble Tea's progress bar
// or an ASCII fallback when colors are disabled.
func RenderProgress(model progress.Model, percent float64) string {
	if colorsDisabled {
		return RenderASCIIProgress(percent, model.Width)
	}

	return fmt.Sprintf("%s %d%%", model.ViewAs(percent), int(percent*ProgressPercentageScale))
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s")
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// TruncatePath shortens a path to at most width characters, keeping the end.
func TruncatePath(path string, width int) string {
	runes := []rune(path)
	if len(runes) <= width {
		return path
	}

	if width <= ProgressEllipsisLength {
		return string(runes[len(runes)-width:])
	}

	return "..." + string(runes[len(runes)-(width-ProgressEllipsisLength):])
}
