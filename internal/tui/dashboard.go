package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/minutemind/internal/dashboard"
	"github.com/sadopc/minutemind/internal/insights"
	"github.com/sadopc/minutemind/internal/store"
)

const recentLimit = 10

type dashboardModel struct {
	ctrl   *dashboard.Controller
	timer  sessionTimer
	width  int
	height int

	snap   dashboard.Snapshot
	loaded bool
	goal   int // daily goal in minutes

	bar progress.Model
}

func newDashboardModel(c *dashboard.Controller) dashboardModel {
	return dashboardModel{
		ctrl:  c,
		timer: newSessionTimer(),
		goal:  120,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.bar.Width = max(10, w-30)
}

func (d *dashboardModel) setSnapshot(s dashboard.Snapshot) {
	d.snap = s
	d.loaded = true
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			d.timer.start()
			return d, func() tea.Msg { return statusMsg{text: "Session started"} }

		case key.Matches(msg, keys.Stop):
			return d.stopSession()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil
		}
	}
	return d, nil
}

// stopSession logs the finished session to today in whole minutes.
func (d dashboardModel) stopSession() (dashboardModel, tea.Cmd) {
	if !d.timer.running() {
		return d, nil
	}
	elapsed := d.timer.stop()
	minutes := int(math.Round(elapsed.Minutes()))
	if minutes < 1 {
		return d, func() tea.Msg {
			return statusMsg{text: "Session under a minute, nothing logged"}
		}
	}

	ctrl := d.ctrl
	sub := dashboard.SubmissionFor(ctrl.Today(), minutes)
	return d, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if _, err := ctrl.LogStudy(ctx, sub); err != nil {
			return errorStatus(err)
		}
		return entriesChangedMsg{text: "Logged " + insights.FormatMinutes(float64(minutes))}
	}
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderInsightsPanel(contentWidth),
		d.renderTodayPanel(contentWidth),
		d.renderRecentPanel(contentWidth),
	)
}

func (d dashboardModel) renderInsightsPanel(w int) string {
	m := d.snap.Insights
	monthName := "Loading"
	if d.loaded {
		monthName = fmt.Sprintf("%s %d", m.Month, m.Year)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(monthName), "  ", mutedStyle.Render("←/→: month"),
	)

	cards := []struct{ label, value string }{
		{"Total", insights.FormatMinutes(float64(m.TotalMinutes))},
		{"Days Studied", fmt.Sprintf("%d/%d (%d%%)", m.DaysStudied, m.DaysInMonth, m.StudyPercentage)},
		{"Daily Avg", insights.FormatMinutes(m.DailyAverageMinutes)},
		{"Weekly Avg", insights.FormatMinutes(m.WeeklyAverageMinutes)},
		{"Longest Streak", pluralDays(m.LongestStreak)},
		{"Current Streak", pluralDays(m.CurrentStreak)},
	}

	cardWidth := max(14, (w-6)/3-2)
	var rendered []string
	for _, c := range cards {
		rendered = append(rendered, cardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Center, cardValueStyle.Render(c.value), mutedStyle.Render(c.label)),
		))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, rendered[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, rendered[3:]...),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", grid))
}

func (d dashboardModel) renderTodayPanel(w int) string {
	p := dashboard.TodayProgress(d.snap, d.goal)
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(fmt.Sprintf("%s of %s",
		insights.FormatMinutes(float64(p.Minutes)), insights.FormatMinutes(float64(p.GoalMinutes))))

	pct := mutedStyle.Render(fmt.Sprintf("%d%%", p.Percent))
	if p.Percent >= 100 {
		pct = successStyle.Render(fmt.Sprintf("%d%% goal reached", p.Percent))
	}
	bar := d.bar.ViewAs(math.Min(float64(p.Percent)/100, 1))

	rows := []string{
		fmt.Sprintf("%s  %s", title, total),
		bar + "  " + pct,
		"",
		d.renderSession(),
	}
	style := panelStyle
	if d.timer.running() {
		style = activePanelStyle
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderSession() string {
	if !d.timer.running() {
		return timerStyle.Render("00:00:00") + "  " +
			mutedStyle.Render("■  no session · s: start")
	}
	elapsed := formatDuration(d.timer.currentElapsed())
	if d.timer.paused() {
		label := "⏸  PAUSED"
		if d.timer.isIdle {
			label = "⏸  IDLE"
		}
		return timerPausedStyle.Render(elapsed) + "  " + warningStyle.Render(label)
	}
	return timerRunningStyle.Render(elapsed) + "  " +
		successStyle.Render("●  STUDYING") + mutedStyle.Render(" · x: stop & log")
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")
	recent := d.snap.Recent(recentLimit)
	if len(recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet. Press 2 then n to log study time."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, e := range recent {
		rows = append(rows, fmt.Sprintf("  %s  %-12s %s",
			successStyle.Render("✓"), e.Date, entryDuration(e)))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func entryDuration(e store.StudyEntry) string {
	return insights.FormatMinutes(float64(e.DurationMinutes))
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
