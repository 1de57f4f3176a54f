package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskapp/internal/theme"
)

// Flash is a transient status bar message.
type Flash struct {
	Text  string
	Error bool
}

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// RenderHeader renders the top header bar with a title on the left and
// a status string on the right.
func (l Layout) RenderHeader(title, status string) string {
	return fill(theme.HeaderStyle, l.Width, title, status)
}

// RenderStatusBar renders the bottom status bar. A non-empty flash takes
// the place of the key hints.
func (l Layout) RenderStatusBar(hints string, flash Flash) string {
	switch {
	case flash.Text == "":
		return fill(theme.StatusBarStyle, l.Width, hints, "")
	case flash.Error:
		return fill(theme.ErrorBarStyle, l.Width, flash.Text, "")
	default:
		return fill(theme.SuccessBarStyle, l.Width, flash.Text, "")
	}
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

// fill renders left and right in style and pads the gap between them so
// the bar spans width.
func fill(style lipgloss.Style, width int, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := max(width-lipgloss.Width(leftRendered)-lipgloss.Width(rightRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}
