// Package tui implements the interactive scan view.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/efs/internal/cli"
	"github.com/joe/efs/internal/config"
	"github.com/joe/efs/internal/tui/shared"
	"github.com/joe/efs/pkg/scan"
)

// ErrCancelled is returned when the user quits before the scan finishes.
var ErrCancelled = errors.New("scan cancelled")

// ScanDoneMsg carries the outcome of the scan.
type ScanDoneMsg struct {
	Results []string
	Err     error
}

// ScanProgress counts what the scan has seen. The scan goroutine writes it
// and the view reads it.
type ScanProgress struct {
	visited  atomic.Int64
	emitted  atomic.Int64
	topDone  atomic.Int64
	topTotal atomic.Int64
	current  atomic.Pointer[string]
}

// SetTotal records how many entries sit directly under the root.
func (p *ScanProgress) SetTotal(total int) {
	p.topTotal.Store(int64(total))
}

// Observe records one visited entry.
func (p *ScanProgress) Observe(entry scan.Entry, emitted bool) {
	p.visited.Add(1)

	if emitted {
		p.emitted.Add(1)
	}

	// Subtrees are visited before their directory, so a top-level entry
	// is seen only once everything below it is done.
	if entry.RelativePath == entry.Name {
		p.topDone.Add(1)
	}

	current := entry.Path
	p.current.Store(&current)
}

// Visited returns the number of entries seen so far.
func (p *ScanProgress) Visited() int64 { return p.visited.Load() }

// Emitted returns the number of entries the callback kept.
func (p *ScanProgress) Emitted() int64 { return p.emitted.Load() }

// Current returns the path of the last entry seen.
func (p *ScanProgress) Current() string {
	if current := p.current.Load(); current != nil {
		return *current
	}

	return ""
}

// Fraction returns the share of top-level entries finished, and false when
// the total is unknown.
func (p *ScanProgress) Fraction() (float64, bool) {
	total := p.topTotal.Load()
	if total <= 0 {
		return 0, false
	}

	return min(float64(p.topDone.Load())/float64(total), 1), true
}

// Track wraps callback so every visited entry is counted in tracker.
func Track(callback scan.Callback[string], tracker *ScanProgress) scan.Callback[string] {
	return scan.CallbackFunc[string](func(entry scan.Entry, args scan.Args) (string, bool) {
		result, ok := callback.Visit(entry, args)
		tracker.Observe(entry, ok)

		return result, ok
	})
}

// ScanModel shows a spinner, a progress bar and live counters while a scan
// runs.
type ScanModel struct {
	root      string
	run       func() ([]string, error)
	progress  *ScanProgress
	spinner   spinner.Model
	bar       progress.Model
	started   time.Time
	elapsed   time.Duration
	width     int
	done      bool
	cancelled bool
	results   []string
	err       error
}

// NewScanModel creates a model that runs run in the background and reports
// through tracker.
func NewScanModel(root string, run func() ([]string, error), tracker *ScanProgress) ScanModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(shared.PrimaryColor())

	return ScanModel{
		root:     root,
		run:      run,
		progress: tracker,
		spinner:  spin,
		bar:      shared.NewProgressModel(shared.ProgressBarWidth),
		started:  time.Now(),
	}
}

// Cancelled reports whether the user quit early.
func (m ScanModel) Cancelled() bool { return m.cancelled }

// Done reports whether the scan finished.
func (m ScanModel) Done() bool { return m.done }

// Err returns the scan failure, if any.
func (m ScanModel) Err() error { return m.err }

// Results returns what the scan emitted.
func (m ScanModel) Results() []string { return m.results }

// Init implements tea.Model
func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startScan(),
		shared.TickCmd(),
	)
}

// Update implements tea.Model
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = shared.ProgressWidth(msg.Width)

		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case ScanDoneMsg:
		m.done = true
		m.results = msg.Results
		m.err = msg.Err
		m.elapsed = time.Since(m.started)

		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case shared.TickMsg:
		if m.done {
			return m, nil
		}

		m.elapsed = time.Since(m.started)

		return m, shared.TickCmd()
	}

	return m, nil
}

func (m ScanModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case shared.KeyCtrlC, shared.KeyEsc, shared.KeyQuit:
		if !m.done {
			m.cancelled = true
		}

		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model
func (m ScanModel) View() string {
	var builder strings.Builder

	if m.done {
		builder.WriteString(m.renderSummary())
	} else {
		builder.WriteString(m.spinner.View())
		builder.WriteString(" ")
		builder.WriteString(shared.RenderTitle("Scanning " + m.root))
		builder.WriteString("\n\n")

		if fraction, ok := m.progress.Fraction(); ok {
			builder.WriteString(shared.RenderProgress(m.bar, fraction))
			builder.WriteString("\n\n")
		}
	}

	fmt.Fprintf(&builder, "%s %d   %s %d   %s %s\n",
		shared.RenderLabel("Visited:"), m.progress.Visited(),
		shared.RenderLabel("Matched:"), m.progress.Emitted(),
		shared.RenderLabel("Elapsed:"), shared.FormatDuration(m.elapsed),
	)

	if !m.done {
		if current := m.progress.Current(); current != "" {
			builder.WriteString(shared.PromptArrow)
			builder.WriteString(shared.RenderDim(shared.TruncatePath(current, m.pathWidth())))
			builder.WriteString("\n")
		}

		builder.WriteString("\n")
		builder.WriteString(shared.RenderDim("Press q or Ctrl+C to cancel"))
		builder.WriteString("\n")
	}

	return builder.String()
}

func (m ScanModel) renderSummary() string {
	if m.err != nil {
		return shared.RenderError("Scan of "+m.root+" failed: "+m.err.Error()) + "\n\n"
	}

	return shared.RenderSuccess(fmt.Sprintf("Scanned %s: %d results", m.root, len(m.results))) + "\n\n"
}

func (m ScanModel) pathWidth() int {
	if m.width <= 0 {
		return shared.MaxProgressBarWidth
	}

	return max(m.width-len(shared.PromptArrow), shared.ProgressEllipsisLength+1)
}

func (m ScanModel) startScan() tea.Cmd {
	return func() tea.Msg {
		results, err := m.run()

		return ScanDoneMsg{Results: results, Err: err}
	}
}

// RunScan runs the scan described by cmd under an interactive view, then
// prints the results through app once the view has closed.
func RunScan(app *cli.App, cmd *config.ScanCmd, opts ...tea.ProgramOption) error {
	job, err := app.PrepareScan(cmd)
	if err != nil {
		return err
	}
	defer job.Close()

	tracker := &ScanProgress{}
	if entries, err := job.FS.ReadDir(job.Root); err == nil {
		tracker.SetTotal(len(entries))
	}

	job.Callback = Track(job.Callback, tracker)

	final, err := tea.NewProgram(NewScanModel(cmd.Root, job.Run, tracker), opts...).Run()
	if err != nil {
		return fmt.Errorf("interactive view failed: %w", err)
	}

	model, ok := final.(ScanModel)
	if !ok {
		return fmt.Errorf("unexpected model %T", final) //nolint:err113 // Type assertion failure
	}

	if model.Cancelled() {
		return ErrCancelled
	}

	app.PrintResults(model.Results())

	return model.Err()
}
