package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/minutemind/internal/dashboard"
	"github.com/sadopc/minutemind/internal/dateutil"
	"github.com/sadopc/minutemind/internal/store"
)

const (
	formLog    = "log"
	formEdit   = "edit"
	formDelete = "delete"
)

type entriesModel struct {
	ctrl   *dashboard.Controller
	width  int
	height int

	entries []store.StudyEntry
	cursor  int

	defaultMinutes int

	formActive bool
	form       *huh.Form
	formType   string

	// Form field pointers (survive value copies)
	formDate    *string
	formHours   *string
	formMinutes *string
	confirm     *bool

	editingID string
}

func newEntriesModel(c *dashboard.Controller) entriesModel {
	date, hours, minutes, confirm := "", "", "", false
	return entriesModel{
		ctrl:           c,
		defaultMinutes: 60,
		formDate:       &date,
		formHours:      &hours,
		formMinutes:    &minutes,
		confirm:        &confirm,
	}
}

func (p *entriesModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *entriesModel) setSnapshot(s dashboard.Snapshot) {
	p.entries = s.Entries
	if p.cursor >= len(p.entries) {
		p.cursor = max(0, len(p.entries)-1)
	}
}

func (p entriesModel) selected() (store.StudyEntry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.entries) {
		return store.StudyEntry{}, false
	}
	return p.entries[p.cursor], true
}

func (p entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.entries)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.New):
			return p.showLogForm()
		case key.Matches(msg, keys.Edit):
			if _, ok := p.selected(); ok {
				return p.showEditForm()
			}
		case key.Matches(msg, keys.Delete):
			if _, ok := p.selected(); ok {
				return p.showDeleteConfirm()
			}
		}
	}
	return p, nil
}

func (p entriesModel) durationFields() []huh.Field {
	return []huh.Field{
		huh.NewInput().Title("Date (YYYY-MM-DD)").Value(p.formDate).Validate(validateDate),
		huh.NewInput().Title("Hours").Value(p.formHours).Validate(validateWhole),
		huh.NewInput().Title("Minutes").Value(p.formMinutes).Validate(validateWhole),
	}
}

func (p entriesModel) showLogForm() (entriesModel, tea.Cmd) {
	sub := dashboard.SubmissionFor(p.ctrl.Today(), p.defaultMinutes)
	*p.formDate = sub.Date
	*p.formHours = sub.Hours
	*p.formMinutes = sub.Minutes
	p.formType = formLog

	p.form = huh.NewForm(huh.NewGroup(p.durationFields()...)).
		WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p entriesModel) showEditForm() (entriesModel, tea.Cmd) {
	e, _ := p.selected()
	sub := dashboard.SubmissionFor(e.Date, e.DurationMinutes)
	*p.formDate = sub.Date
	*p.formHours = sub.Hours
	*p.formMinutes = sub.Minutes
	p.formType = formEdit
	p.editingID = e.ID

	p.form = huh.NewForm(huh.NewGroup(p.durationFields()...)).
		WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p entriesModel) showDeleteConfirm() (entriesModel, tea.Cmd) {
	e, _ := p.selected()
	*p.confirm = false
	p.formType = formDelete
	p.editingID = e.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s (%s)?", e.Date, entryDuration(e))).
				Affirmative("Delete").
				Negative("Cancel").
				Value(p.confirm),
		),
	).WithShowHelp(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, p.submit()
	}

	return p, cmd
}

// submit copies the form values so the command does not race later edits.
func (p entriesModel) submit() tea.Cmd {
	ctrl := p.ctrl
	id := p.editingID
	sub := dashboard.Submission{Date: *p.formDate, Hours: *p.formHours, Minutes: *p.formMinutes}

	switch p.formType {
	case formLog:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			e, err := ctrl.LogStudy(ctx, sub)
			if err != nil {
				return errorStatus(err)
			}
			return entriesChangedMsg{text: fmt.Sprintf("Logged %s (total %s)", sub.Date, entryDuration(*e))}
		}
	case formEdit:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if _, err := ctrl.EditEntry(ctx, id, sub); err != nil {
				return errorStatus(err)
			}
			return entriesChangedMsg{text: "Entry updated"}
		}
	case formDelete:
		if !*p.confirm {
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if err := ctrl.DeleteEntry(ctx, id); err != nil {
				return errorStatus(err)
			}
			return entriesChangedMsg{text: "Entry deleted"}
		}
	}
	return nil
}

func validateDate(s string) error {
	if !dateutil.IsValidDate(strings.TrimSpace(s)) {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateWhole(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return errors.New("enter a whole number")
	}
	return nil
}

func (p entriesModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("Log Study Time")
		switch p.formType {
		case formEdit:
			title = titleStyle.Render("Edit Entry")
		case formDelete:
			title = titleStyle.Render("Delete Entry")
		}
		formView := p.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(p.width - 4).Render(content)
	}

	return p.renderList()
}

func (p entriesModel) renderList() string {
	w := p.width - 4
	title := titleStyle.Render("Entries")

	if len(p.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No entries yet. Press n to log study time."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-12s %-10s %-8s", "Date", "Duration", "Hours"))
	rows = append(rows, header)

	// Keep the cursor visible when the list is taller than the panel.
	visible := max(1, p.height-10)
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := min(len(p.entries), start+visible)

	for i := start; i < end; i++ {
		e := p.entries[i]
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		hours := formatHours(float64(e.DurationMinutes) / 60)
		rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %-10s %-8s", cursor, e.Date, entryDuration(e), hours)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: log  e: edit  d: delete  ↑/↓: move"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
