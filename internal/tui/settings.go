package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/minutemind/internal/dashboard"
	"github.com/sadopc/minutemind/internal/insights"
	"github.com/sadopc/minutemind/internal/store"
)

type settingsModel struct {
	store  *store.LocalStore
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyGoal      *string
	defaultMinutes *string
}

func newSettingsModel(s *store.LocalStore) settingsModel {
	dg, dm := "", ""
	return settingsModel{
		store:          s,
		dailyGoal:      &dg,
		defaultMinutes: &dm,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.dailyGoal = s.getVal(store.SettingDailyGoal, "120")
	*s.defaultMinutes = s.getVal(store.SettingDefaultMinutes, "60")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (minutes)").Value(s.dailyGoal).Validate(validateMinutesSetting),
			huh.NewInput().Title("Default log duration (minutes)").Value(s.defaultMinutes).Validate(validateMinutesSetting),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg { return errorStatus(err) }
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return settingsSavedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if err := s.store.SetSetting(store.SettingDailyGoal, strings.TrimSpace(*s.dailyGoal)); err != nil {
		return err
	}
	return s.store.SetSetting(store.SettingDefaultMinutes, strings.TrimSpace(*s.defaultMinutes))
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

// intSetting reads a numeric setting from the loaded list.
func (s settingsModel) intSetting(k string, fallback int) int {
	for _, setting := range s.settings {
		if setting.Key == k {
			if n, err := strconv.Atoi(setting.Value); err == nil {
				return n
			}
		}
	}
	return fallback
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case store.SettingDailyGoal:
		return "Daily goal"
	case store.SettingDefaultMinutes:
		return "Default log duration"
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingDailyGoal, store.SettingDefaultMinutes:
		if mins, err := strconv.Atoi(v); err == nil {
			return insights.FormatMinutes(float64(mins))
		}
	}
	return v
}

func validateMinutesSetting(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive number of minutes")
	}
	if n > dashboard.MaxDailyMinutes {
		return errors.New("cannot exceed 24 hours")
	}
	return nil
}
