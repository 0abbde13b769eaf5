package shared

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives the elapsed-time display between scan updates.
type TickMsg time.Time

// TickCmd schedules the next TickMsg.
func TickCmd() tea.Cmd {
	return TickEvery(TickIntervalMs * time.Millisecond)
}

// TickEvery schedules a TickMsg after interval.
func TickEvery(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
