package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds,
// so every color is a lipgloss.AdaptiveColor pair.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorBullet   lipgloss.TerminalColor = ac("238", "248")
	colorMirror   lipgloss.TerminalColor = ac("27", "62") // blue, marks shared content
	colorSelected lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorDropLine lipgloss.TerminalColor = ac("27", "75")
	colorHeader   lipgloss.TerminalColor = ac("240", "245")
)

type theme struct {
	title     lipgloss.Style
	bullet    lipgloss.Style
	mirror    lipgloss.Style
	twisty    lipgloss.Style
	selected  lipgloss.Style
	dropLine  lipgloss.Style
	dropChild lipgloss.Style
	header    lipgloss.Style
	dragging  lipgloss.Style
}

func newTheme() theme {
	return theme{
		title:     lipgloss.NewStyle(),
		bullet:    lipgloss.NewStyle().Foreground(colorBullet),
		mirror:    lipgloss.NewStyle().Foreground(colorMirror),
		twisty:    lipgloss.NewStyle().Foreground(colorMuted),
		selected:  lipgloss.NewStyle().Background(colorSelected).Bold(true),
		dropLine:  lipgloss.NewStyle().Foreground(colorDropLine),
		dropChild: lipgloss.NewStyle().Foreground(colorDropLine).Bold(true),
		header:    lipgloss.NewStyle().Foreground(colorHeader),
		dragging:  lipgloss.NewStyle().Foreground(colorMuted).Faint(true),
	}
}
