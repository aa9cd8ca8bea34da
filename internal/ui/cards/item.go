package cards

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// DateLayout is the card date format (day.month.year, day unpadded).
const DateLayout = "2.01.2006"

// Item wraps a model.Ticket so it can be used in a bubbles/list.
type Item struct {
	Ticket model.Ticket
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Ticket.Name }

// Title returns the ticket name for the list.
func (i Item) Title() string { return i.Ticket.Name }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	return strings.Join([]string{
		i.Ticket.StatusLabel(),
		i.Ticket.Created.Format(DateLayout),
	}, " | ")
}

// Delegate implements list.ItemDelegate and draws each ticket as a card.
type Delegate struct{}

// Height returns the number of lines each card takes.
func (d Delegate) Height() int { return 3 }

// Spacing returns the number of blank lines between cards.
func (d Delegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single card.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, renderCard(it.Ticket, index == m.Index(), m.Width()))
}

func renderCard(t model.Ticket, selected bool, width int) string {
	mark := "[ ]"
	if t.Status {
		mark = "[x]"
	}

	title := fmt.Sprintf("%s %s", mark, theme.CardTitleStyle.Render(t.Name))

	desc := firstLine(t.Description)
	if desc == "" {
		desc = theme.HelpStyle.Render("No description")
	}

	footer := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.DateStyle.Render(t.Created.Format(DateLayout)),
		" ",
		theme.StatusStyle(t.Status).Render(t.StatusLabel()),
	)

	lines := []string{title, desc, footer}
	if t.Status {
		for i := range lines {
			lines[i] = theme.DimmedStyle.Render(lines[i])
		}
	}

	style := theme.CardStyle
	if selected {
		style = theme.SelectedCardStyle
	}
	if width > 0 {
		style = style.MaxWidth(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " …"
	}
	return s
}
