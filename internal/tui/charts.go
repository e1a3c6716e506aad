package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/minutemind/internal/charts"
)

// tableLimit is the most points listed under the chart.
const tableLimit = 8

type chartsModel struct {
	width  int
	height int

	kind  int // index into charts.Kinds
	set   charts.Set
	chart barchart.Model
}

func newChartsModel() chartsModel {
	return chartsModel{
		chart: barchart.New(60, 12),
	}
}

func (r *chartsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r *chartsModel) setSnapshot(set charts.Set) {
	r.set = set
	r.buildChart()
}

func (r chartsModel) current() charts.Kind {
	return charts.Kinds[r.kind]
}

func (r chartsModel) update(msg tea.Msg) (chartsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			r.kind = (r.kind + len(charts.Kinds) - 1) % len(charts.Kinds)
			r.buildChart()
		case key.Matches(msg, keys.Right):
			r.kind = (r.kind + 1) % len(charts.Kinds)
			r.buildChart()
		}
	}
	return r, nil
}

func (r *chartsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	kind := r.current()
	series := r.set.Get(kind)
	style := lipgloss.NewStyle().Foreground(seriesColors[int(kind)%len(seriesColors)])

	var bars []barchart.BarData
	for i, v := range series.Values {
		values := []barchart.BarValue{{Name: kind.String(), Value: v, Style: style}}
		if v == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorBorder)}}
		}
		bars = append(bars, barchart.BarData{
			Label:  series.Labels[i],
			Values: values,
		})
	}

	if len(bars) == 0 {
		return
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r chartsModel) view() string {
	w := r.width - 4

	var tabs []string
	for i, k := range charts.Kinds {
		if i == r.kind {
			tabs = append(tabs, activeTabStyle.Render(k.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(k.String()))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Charts"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
	)

	series := r.set.Get(r.current())
	body := mutedStyle.Render("  No data yet")
	if series.Len() > 0 && series.Sum() > 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, r.chart.View(), "", r.renderTable(w))
	}

	nav := mutedStyle.Render("  ←/→: switch chart  (values in hours)")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

// renderTable lists the most recent points, since bar labels truncate on
// narrow terminals.
func (r chartsModel) renderTable(w int) string {
	series := r.set.Get(r.current())

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %8s", "Label", "Hours")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 27))))

	start := max(0, series.Len()-tableLimit)
	for i := start; i < series.Len(); i++ {
		rows = append(rows, fmt.Sprintf("  %-18s %8s", series.Labels[i], formatHours(series.Values[i])))
	}
	return strings.Join(rows, "\n")
}
