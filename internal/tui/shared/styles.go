// Package shared holds the styles, formatting helpers and tick command used
// by the interactive views and the plain command output.
package shared

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Exported constants organized by category for clarity.
const (
	// ============================================================================
	// UI Layout & Display
	// ============================================================================

	// DefaultPadding is the default padding for UI elements
	DefaultPadding = 2
	// ProgressBarWidth is the default width of progress bars
	ProgressBarWidth = 40
	// MaxProgressBarWidth is the maximum width for progress bars
	MaxProgressBarWidth = 100
	// MinProgressBarWidth is the narrowest progress bar drawn
	MinProgressBarWidth = 20
	// ProgressMargin is subtracted from the window width for the bar
	ProgressMargin = 10

	// ============================================================================
	// Time Intervals
	// ============================================================================

	// TickIntervalMs is the interval for tick messages in milliseconds
	TickIntervalMs = 100

	// ============================================================================
	// Display Limits & Formatting
	// ============================================================================

	// ProgressEllipsisLength is the length of ellipsis for truncated paths
	ProgressEllipsisLength = 3
	// ProgressPercentageScale is the scale for percentage calculations (100 for percentages)
	ProgressPercentageScale = 100

	// ============================================================================
	// Keys & Symbols
	// ============================================================================

	// KeyCtrlC is the key binding for cancellation
	KeyCtrlC = "ctrl+c"
	// KeyQuit quits a finished view
	KeyQuit = "q"
	// KeyEsc also cancels
	KeyEsc = "esc"
	// PromptArrow is the arrow character used in prompts
	PromptArrow = "▶ "
)

// colorsDisabled is set when NO_COLOR is present or the terminal is dumb.
//
//nolint:gochecknoglobals // Read once at startup
var colorsDisabled = os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"

// ColorsDisabled reports whether styled output is turned off.
func ColorsDisabled() bool { return colorsDisabled }

func AccentColor() lipgloss.Color { return lipgloss.Color(accentColorCode) }

// BoxStyle returns the style for boxes with padding
func BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AccentColor()).
		Padding(1, DefaultPadding)
}

func DimColor() lipgloss.Color { return lipgloss.Color(dimColorCode) }

// DimStyle returns the style for dimmed text
func DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(DimColor())
}

func ErrorColor() lipgloss.Color { return lipgloss.Color(errorColorCode) }

// ErrorStyle returns the style for error messages
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ErrorColor()).
		Bold(true)
}

func HighlightColor() lipgloss.Color { return lipgloss.Color(highlightColorCode) }

// LabelStyle returns the style for labels
func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(HighlightColor()).
		Bold(true)
}

func PrimaryColor() lipgloss.Color { return lipgloss.Color(primaryColorCode) }

// RenderBox renders content in a box
func RenderBox(content string) string {
	return BoxStyle().Render(content)
}

// RenderDim renders dimmed text
func RenderDim(text string) string {
	return DimStyle().Render(text)
}

// RenderError renders error text
func RenderError(text string) string {
	return ErrorStyle().Render(text)
}

// RenderLabel renders label text
func RenderLabel(text string) string {
	return LabelStyle().Render(text)
}

// RenderSuccess renders success text
func RenderSuccess(text string) string {
	return SuccessStyle().Render(text)
}

// RenderTitle renders title text
func RenderTitle(text string) string {
	return TitleStyle().Render(text)
}

// RenderWarning renders warning text
func RenderWarning(text string) string {
	return WarningStyle().Render(text)
}

func SuccessColor() lipgloss.Color { return lipgloss.Color(successColorCode) }

// SuccessStyle returns the style for success messages
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(SuccessColor()).
		Bold(true)
}

// TitleStyle returns the style for titles
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(PrimaryColor()).
		Bold(true)
}

func WarningColor() lipgloss.Color { return lipgloss.Color(warningColorCode) }

// WarningStyle returns the style for warning messages
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(WarningColor()).
		Bold(true)
}

// unexported constants.
const (
	accentColorCode    = "62"  // Blue
	dimColorCode       = "240" // Dark gray
	errorColorCode     = "196" // Red
	highlightColorCode = "86"  // Cyan
	primaryColorCode   = "205" // Pink/purple
	successColorCode   = "42"  // Green
	warningColorCode   = "226"
)
