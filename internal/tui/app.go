package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/minutemind/internal/dashboard"
	"github.com/sadopc/minutemind/internal/dateutil"
	"github.com/sadopc/minutemind/internal/export"
	"github.com/sadopc/minutemind/internal/insights"
	"github.com/sadopc/minutemind/internal/store"
)

// storeTimeout bounds every store call made from a command.
const storeTimeout = 10 * time.Second

// App is the root Bubble Tea model.
type App struct {
	ctrl      *dashboard.Controller
	registry  *dashboard.ChartRegistry
	exportDir string
	width     int
	height    int

	// Month shown on the dashboard.
	year  int
	month time.Month

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	entries   entriesModel
	charts    chartsModel
	tasks     tasksModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp wires the views to ctrl for entries, to tasks for the to-do list
// and daybook, and to settings for local preferences. Exports are written
// to exportDir.
func NewApp(ctrl *dashboard.Controller, settings *store.LocalStore, tasks store.TaskStore, exportDir string) App {
	h := help.New()
	h.ShowAll = false

	today, _ := dateutil.Parse(ctrl.Today())

	return App{
		ctrl:       ctrl,
		registry:   &dashboard.ChartRegistry{},
		exportDir:  exportDir,
		year:       today.Year(),
		month:      today.Month(),
		activeView: viewDashboard,
		dashboard:  newDashboardModel(ctrl),
		entries:    newEntriesModel(ctrl),
		charts:     newChartsModel(),
		tasks:      newTasksModel(tasks, ctrl.Owner(), ctrl.Today),
		settings:   newSettingsModel(settings),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.refresh(),
		a.settings.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// referenceDate is today in the current month, or the last day of a past
// month being browsed.
func (a App) referenceDate() string {
	return insights.ReferenceFor(a.year, a.month, a.ctrl.Today())
}

// refresh reloads every entry before any insight or chart is recomputed.
// Results that arrive after a newer refresh are dropped in Update.
func (a App) refresh() tea.Cmd {
	ctrl := a.ctrl
	ref := a.referenceDate()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		snap, err := ctrl.Refresh(ctx, ref)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.entries.setSize(a.width, contentHeight)
		a.charts.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export) && a.activeView != viewEntries && a.activeView != viewTasks:
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewEntries
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCharts
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		case a.activeView == viewDashboard && key.Matches(msg, keys.Left):
			a.shiftMonth(-1)
			return a, a.refresh()
		case a.activeView == viewDashboard && key.Matches(msg, keys.Right):
			a.shiftMonth(1)
			return a, a.refresh()
		}

	case tickMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case snapshotMsg:
		if msg.err != nil {
			a.status, a.statusErr = fmt.Sprintf("Refresh failed: %v", msg.err), true
			return a, nil
		}
		if !a.registry.Publish(msg.snap) {
			return a, nil
		}
		a.dashboard.setSnapshot(msg.snap)
		a.entries.setSnapshot(msg.snap)
		a.charts.setSnapshot(msg.snap.Charts)
		if n := len(msg.snap.Problems); n > 0 {
			a.status, a.statusErr = fmt.Sprintf("Skipped %d malformed entries (see log)", n), true
		}
		return a, nil

	case entriesChangedMsg:
		a.status, a.statusErr = msg.text, false
		return a, a.refresh()

	case tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd

	case tasksChangedMsg:
		a.status, a.statusErr = msg.text, false
		return a, a.tasks.refresh()

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		a.dashboard.goal = a.settings.intSetting(store.SettingDailyGoal, a.dashboard.goal)
		a.entries.defaultMinutes = a.settings.intSetting(store.SettingDefaultMinutes, a.entries.defaultMinutes)
		return a, cmd

	case settingsSavedMsg:
		a.status, a.statusErr = "Settings saved", false
		return a, nil

	case statusMsg:
		a.status, a.statusErr = msg.text, msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

// shiftMonth moves the browsed month, never past the current one.
func (a *App) shiftMonth(delta int) {
	first := time.Date(a.year, a.month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	today, _ := dateutil.Parse(a.ctrl.Today())
	if first.After(today) {
		return
	}
	a.year, a.month = first.Year(), first.Month()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewEntries:
		a.entries, cmd = a.entries.update(msg)
	case viewCharts:
		a.charts, cmd = a.charts.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewEntries:
		return a.entries.formActive
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.refresh()
	case viewTasks:
		return a.tasks.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewEntries:
		content = a.entries.view()
	case viewCharts:
		content = a.charts.view()
	case viewTasks:
		content = a.tasks.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Render("minutemind")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	sessionInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		sessionInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			sessionInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, subtitleStyle.Render("  to "+a.exportDir))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the entries of the latest snapshot, which already hold
// every date for the owner.
func (a App) doExport(format int) tea.Cmd {
	registry := a.registry
	dir := a.exportDir
	today := a.ctrl.Today()
	return func() tea.Msg {
		snap, ok := registry.Current()
		if !ok || len(snap.Entries) == 0 {
			return statusMsg{text: "No data to export", isError: true}
		}

		if format == 0 {
			path, err := export.Path(dir, today, "csv")
			if err == nil {
				err = export.ToCSV(snap.Entries, path)
			}
			if err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
			return exportDoneMsg{path: path}
		}

		path, err := export.Path(dir, today, "json")
		if err == nil {
			err = export.ToJSON(snap.Entries, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
