package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/minutemind/internal/dashboard"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewEntries
	viewCharts
	viewTasks
	viewSettings
)

var viewNames = []string{"Dashboard", "Entries", "Charts", "Tasks", "Settings"}

// --- Messages ---

// snapshotMsg carries the result of a controller refresh.
type snapshotMsg struct {
	snap dashboard.Snapshot
	err  error
}

// entriesChangedMsg follows a successful create, edit or delete.
type entriesChangedMsg struct {
	text string
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct{}

// tasksChangedMsg follows a successful task mutation.
type tasksChangedMsg struct {
	text string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

// errorStatus turns an error into a status line. Validation problems are
// shown as-is, anything else is prefixed.
func errorStatus(err error) statusMsg {
	var ve *dashboard.ValidationError
	if errors.As(err, &ve) {
		return statusMsg{text: ve.Error(), isError: true}
	}
	return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
}
