package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/minutemind/internal/dateutil"
	"github.com/sadopc/minutemind/internal/store"
)

// taskMode picks between the undated to-do list and the per-day daybook.
type taskMode int

const (
	modeTodo taskMode = iota
	modeDaybook
)

const (
	taskFormAdd    = "add"
	taskFormEdit   = "edit"
	taskFormDelete = "delete"
)

type tasksModel struct {
	store  store.TaskStore
	owner  string
	today  func() string
	width  int
	height int

	mode   taskMode
	day    string          // daybook date
	items  []store.Task
	marked map[string]bool // days of day's month that have tasks
	cursor int

	formActive bool
	form       *huh.Form
	formType   string

	// Form field pointers (survive value copies)
	formTitle *string
	formDesc  *string
	confirm   *bool

	editingID string
}

func newTasksModel(ts store.TaskStore, owner string, today func() string) tasksModel {
	title, desc, confirm := "", "", false
	return tasksModel{
		store:     ts,
		owner:     owner,
		today:     today,
		day:       today(),
		formTitle: &title,
		formDesc:  &desc,
		confirm:   &confirm,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// tasksDataMsg carries one load. mode and day identify the request so a
// load that finishes after the user moved on is ignored.
type tasksDataMsg struct {
	mode  taskMode
	day   string
	items []store.Task
	dates []string
	err   error
}

func (m tasksModel) refresh() tea.Cmd {
	ts, owner, mode, day := m.store, m.owner, m.mode, m.day
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		msg := tasksDataMsg{mode: mode, day: day}
		listDate := ""
		if mode == modeDaybook {
			listDate = day
			t, err := dateutil.Parse(day)
			if err != nil {
				msg.err = err
				return msg
			}
			start, end := dateutil.MonthRange(t.Year(), t.Month())
			if msg.dates, msg.err = ts.TaskDates(ctx, owner, start, end); msg.err != nil {
				return msg
			}
		}
		msg.items, msg.err = ts.ListTasks(ctx, owner, listDate)
		return msg
	}
}

func (m tasksModel) selected() (store.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return store.Task{}, false
	}
	return m.items[m.cursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if data, ok := msg.(tasksDataMsg); ok {
		return m.load(data)
	}
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showForm(taskFormAdd)
		case key.Matches(msg, keys.Edit):
			if _, ok := m.selected(); ok {
				return m.showForm(taskFormEdit)
			}
		case key.Matches(msg, keys.Delete):
			if _, ok := m.selected(); ok {
				return m.showDeleteConfirm()
			}
		case key.Matches(msg, keys.Toggle):
			if t, ok := m.selected(); ok {
				return m, m.toggle(t)
			}
		case key.Matches(msg, keys.Mode):
			if m.mode == modeTodo {
				m.mode = modeDaybook
			} else {
				m.mode = modeTodo
			}
			m.cursor = 0
			return m, m.refresh()
		case m.mode == modeDaybook && key.Matches(msg, keys.Left):
			return m.shiftDay(-1)
		case m.mode == modeDaybook && key.Matches(msg, keys.Right):
			return m.shiftDay(1)
		}
	}
	return m, nil
}

func (m tasksModel) load(data tasksDataMsg) (tasksModel, tea.Cmd) {
	if data.mode != m.mode || (m.mode == modeDaybook && data.day != m.day) {
		return m, nil
	}
	if data.err != nil {
		err := data.err
		return m, func() tea.Msg { return errorStatus(err) }
	}

	m.items = data.items
	if m.mode == modeTodo {
		// Open items first, then the completed section, each newest first.
		sort.SliceStable(m.items, func(i, j int) bool {
			return !m.items[i].Completed && m.items[j].Completed
		})
	}
	m.marked = make(map[string]bool, len(data.dates))
	for _, d := range data.dates {
		m.marked[d] = true
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
	return m, nil
}

func (m tasksModel) shiftDay(n int) (tasksModel, tea.Cmd) {
	day, err := dateutil.AddDays(m.day, n)
	if err != nil {
		return m, nil
	}
	m.day = day
	m.cursor = 0
	return m, m.refresh()
}

func (m tasksModel) showForm(formType string) (tasksModel, tea.Cmd) {
	*m.formTitle, *m.formDesc = "", ""
	m.editingID = ""
	if formType == taskFormEdit {
		t, _ := m.selected()
		*m.formTitle, *m.formDesc = t.Title, t.Description
		m.editingID = t.ID
	}
	m.formType = formType

	fields := []huh.Field{
		huh.NewInput().Title("Task").Value(m.formTitle).Validate(validateTitle),
	}
	if m.mode == modeDaybook {
		fields = append(fields, huh.NewText().Title("Description").Lines(3).Value(m.formDesc))
	}
	m.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showDeleteConfirm() (tasksModel, tea.Cmd) {
	t, _ := m.selected()
	*m.confirm = false
	m.formType = taskFormDelete
	m.editingID = t.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", t.Title)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithShowHelp(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, m.submit()
	}

	return m, cmd
}

func (m tasksModel) submit() tea.Cmd {
	ts, owner, id := m.store, m.owner, m.editingID
	title, desc := *m.formTitle, *m.formDesc
	date := ""
	if m.mode == modeDaybook {
		date = m.day
	}

	switch m.formType {
	case taskFormAdd:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if _, err := ts.CreateTask(ctx, owner, date, title, desc); err != nil {
				return errorStatus(err)
			}
			return tasksChangedMsg{text: "Task added"}
		}
	case taskFormEdit:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if _, err := ts.UpdateTask(ctx, id, title, desc); err != nil {
				return errorStatus(err)
			}
			return tasksChangedMsg{text: "Task updated"}
		}
	case taskFormDelete:
		if !*m.confirm {
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if err := ts.DeleteTask(ctx, id); err != nil {
				return errorStatus(err)
			}
			return tasksChangedMsg{text: "Task deleted"}
		}
	}
	return nil
}

func (m tasksModel) toggle(t store.Task) tea.Cmd {
	ts := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		updated, err := ts.ToggleTask(ctx, t.ID)
		if err != nil {
			return errorStatus(err)
		}
		if updated.Completed {
			return tasksChangedMsg{text: "Completed " + updated.Title}
		}
		return tasksChangedMsg{text: "Reopened " + updated.Title}
	}
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("task cannot be empty")
	}
	return nil
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Add Task")
		switch m.formType {
		case taskFormEdit:
			title = titleStyle.Render("Edit Task")
		case taskFormDelete:
			title = titleStyle.Render("Delete Task")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	var tabs []string
	for i, name := range []string{"To-do", "Daybook"} {
		if taskMode(i) == m.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, append([]string{titleStyle.Render("Tasks"), "  "}, tabs...)...)

	var body string
	var hint string
	if m.mode == modeDaybook {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderCalendar(), "   ", m.renderList())
		hint = "  n: add  e: edit  space: done  d: delete  ←/→: day  m: to-do"
	} else {
		body = m.renderList()
		hint = "  n: add  e: edit  space: done  d: delete  m: daybook"
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", mutedStyle.Render(hint)),
	)
}

func (m tasksModel) renderList() string {
	var rows []string
	if m.mode == modeDaybook {
		if t, err := dateutil.Parse(m.day); err == nil {
			rows = append(rows, highlightStyle.Render(t.Format("Monday, January 2, 2006")), "")
		}
	}

	if len(m.items) == 0 {
		empty := "No tasks yet. Press n to add one."
		if m.mode == modeDaybook {
			empty = "No tasks for this day. Press n to add one."
		}
		return strings.Join(append(rows, mutedStyle.Render(empty)), "\n")
	}

	done := 0
	for _, t := range m.items {
		if t.Completed {
			done++
		}
	}

	for i, t := range m.items {
		if m.mode == modeTodo && t.Completed && (i == 0 || !m.items[i-1].Completed) {
			rows = append(rows, "", subtitleStyle.Render(fmt.Sprintf("Completed (%d)", done)))
		}

		cursor := "  "
		style := normalItemStyle
		if t.Completed {
			style = doneItemStyle
		}
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		box := "[ ]"
		if t.Completed {
			box = successStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, style.Render(t.Title))
		if t.Description != "" {
			line += mutedStyle.Render("  " + firstLine(t.Description))
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

// renderCalendar draws the daybook month with Monday first. Days that hold
// tasks are marked and the selected day is underlined.
func (m tasksModel) renderCalendar() string {
	t, err := dateutil.Parse(m.day)
	if err != nil {
		return ""
	}
	start, _ := dateutil.MonthRange(t.Year(), t.Month())
	first, _ := dateutil.Parse(start)
	offset := (int(first.Weekday()) + 6) % 7

	var rows []string
	rows = append(rows, titleStyle.Render(t.Format("January 2006")))

	var head strings.Builder
	for _, d := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		head.WriteString(dayStyle.Foreground(colorDim).Render(d))
	}
	rows = append(rows, head.String())

	var row strings.Builder
	for i := 0; i < offset; i++ {
		row.WriteString(dayStyle.Render(""))
	}
	days := dateutil.DaysInMonth(t.Year(), t.Month())
	for d := 1; d <= days; d++ {
		date := fmt.Sprintf("%s-%02d", t.Format("2006-01"), d)
		style := dayStyle
		switch {
		case date == m.day:
			style = daySelectedStyle
		case m.marked[date]:
			style = dayMarkedStyle
		}
		row.WriteString(style.Render(fmt.Sprint(d)))
		if (offset+d)%7 == 0 {
			rows = append(rows, row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
