// Package term renders the toy list for a terminal.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vbonduro/toyinv/internal/view"
)

// badgeColors maps the list view's badge color names to terminal colors.
var badgeColors = map[string]lipgloss.Color{
	"red":      lipgloss.Color("#f5222d"),
	"pink":     lipgloss.Color("#eb2f96"),
	"green":    lipgloss.Color("#52c41a"),
	"blue":     lipgloss.Color("#1677ff"),
	"purple":   lipgloss.Color("#722ed1"),
	"orange":   lipgloss.Color("#fa8c16"),
	"magenta":  lipgloss.Color("#c41d7f"),
	"cyan":     lipgloss.Color("#13c2c2"),
	"lime":     lipgloss.Color("#a0d911"),
	"geekblue": lipgloss.Color("#2f54eb"),
	"gold":     lipgloss.Color("#faad14"),
	"volcano":  lipgloss.Color("#fa541c"),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	priceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	starStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// Badge renders text as a colored tag. Unknown colors render as a plain
// bordered tag.
func Badge(text, color string) string {
	st := lipgloss.NewStyle().Padding(0, 1)
	if c, ok := badgeColors[color]; ok {
		return st.Foreground(lipgloss.Color("0")).Background(c).Render(text)
	}
	return st.Reverse(true).Render(text)
}

func renderCard(c view.Card) string {
	lines := []string{
		titleStyle.Render(c.Name) + "  " + Badge(c.Category, c.CategoryColor),
	}
	if c.AgeRange != "" {
		lines = append(lines, mutedStyle.Render("Age: ")+c.AgeRange)
	}
	lines = append(lines, priceStyle.Render("$"+c.Price))
	if c.ShowRating() {
		lines = append(lines, starStyle.Render(c.Stars)+mutedStyle.Render(fmt.Sprintf(" (%d)", c.Rating)))
	}
	lines = append(lines, Badge(c.StockLabel, c.StockColor))
	if c.Description != "" {
		lines = append(lines, mutedStyle.Render(truncate(c.Description, 60)))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Render writes the list to w, or the empty-collection hint when there is
// nothing to show.
func Render(w io.Writer, l view.List) error {
	var out string
	switch {
	case l.Loading && len(l.Cards) == 0:
		out = mutedStyle.Render("Loading toys...")
	case l.Empty:
		out = strings.Join([]string{
			titleStyle.Render("No toys in your collection yet!"),
			mutedStyle.Render("Add some toys to get started"),
		}, "\n")
	default:
		cards := make([]string, 0, len(l.Cards))
		for _, c := range l.Cards {
			cards = append(cards, renderCard(c))
		}
		out = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
