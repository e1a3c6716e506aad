package tui

import "github.com/charmbracelet/lipgloss"

// Palette: deep indigo ink on the terminal background, teal for progress,
// amber for anything waiting on the user.
var (
	colorInk    = lipgloss.AdaptiveColor{Light: "#1F2335", Dark: "#E0DEF4"}
	colorBrand  = lipgloss.Color("#5B5BD6")
	colorTeal   = lipgloss.Color("#12A594")
	colorAmber  = lipgloss.Color("#E5A000")
	colorRose   = lipgloss.Color("#E54666")
	colorSky    = lipgloss.Color("#3E9BDB")
	colorDim    = lipgloss.AdaptiveColor{Light: "#8B8D98", Dark: "#6F6E77"}
	colorBorder = lipgloss.AdaptiveColor{Light: "#D3D4DB", Dark: "#3A3A4A"}
)

// seriesColors gives each chart its own bar color, indexed by charts.Kind.
var seriesColors = []lipgloss.TerminalColor{colorBrand, colorTeal, colorSky, colorAmber}

var (
	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	boldText = lipgloss.NewStyle().Bold(true)
)

var (
	activeTabStyle   = boldText.Foreground(colorBrand).Border(lipgloss.ThickBorder(), false, false, true, false).BorderForeground(colorBrand).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)

	panelStyle       = boxStyle.BorderForeground(colorBorder).Padding(1, 2)
	activePanelStyle = panelStyle.BorderForeground(colorTeal)

	cardStyle      = boxStyle.BorderForeground(colorBorder).Padding(0, 1).Align(lipgloss.Center)
	cardValueStyle = boldText.Foreground(colorSky)

	// Stopwatch states share one shape and differ only in color.
	timerStyle        = boldText.Foreground(colorBrand)
	timerRunningStyle = timerStyle.Foreground(colorTeal)
	timerPausedStyle  = timerStyle.Foreground(colorAmber)

	titleStyle     = boldText.Foreground(colorInk)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorDim)
	highlightStyle = lipgloss.NewStyle().Foreground(colorSky)
	successStyle   = lipgloss.NewStyle().Foreground(colorTeal)
	warningStyle   = lipgloss.NewStyle().Foreground(colorAmber)
	errorStyle     = boldText.Foreground(colorRose)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = mutedStyle.Padding(0, 1)

	selectedItemStyle = boldText.Foreground(colorBrand)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorInk)
	doneItemStyle     = mutedStyle.Strikethrough(true)

	// Daybook calendar cells.
	dayStyle         = lipgloss.NewStyle().Width(4).Align(lipgloss.Right)
	dayMarkedStyle   = dayStyle.Foreground(colorTeal).Bold(true)
	daySelectedStyle = dayStyle.Foreground(colorBrand).Bold(true).Underline(true)
)
