package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/elemental-arena/server/internal/deck"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ScoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// elementColors maps each element to a display color. Light terminals
// get the darker variants so cards stay readable.
var elementColors = func() map[deck.Element]lipgloss.Color {
	if termenv.HasDarkBackground() {
		return map[deck.Element]lipgloss.Color{
			deck.Fire:        "#FF6B6B",
			deck.Ice:         "#A8E6FF",
			deck.Water:       "#45B7D1",
			deck.Electricity: "#FFEAA7",
			deck.Earth:       "#B8860B",
			deck.Power:       "#DDA0DD",
		}
	}
	return map[deck.Element]lipgloss.Color{
		deck.Fire:        "#C0392B",
		deck.Ice:         "#2980B9",
		deck.Water:       "#1F618D",
		deck.Electricity: "#B7950B",
		deck.Earth:       "#6E2C00",
		deck.Power:       "#76448A",
	}
}()

// CardStyle returns the style for rendering a card of the given element
func CardStyle(element deck.Element) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(elementColors[element]).Bold(true)
}
