package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// TimestampLayout is the full creation timestamp format.
const TimestampLayout = "02.01.2006, 15:04:05"

// Model shows every field of a single ticket.
type Model struct {
	ticket   *model.Ticket
	viewport viewport.Model
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// Update delegates scrolling to the viewport.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.ticket == nil {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render("No ticket selected")
	}
	return m.viewport.View()
}

// SetTicket replaces the ticket being displayed.
func (m *Model) SetTicket(t model.Ticket) {
	c := t.Clone()
	m.ticket = &c
	m.refresh()
	m.viewport.GotoTop()
}

// Ticket returns the displayed ticket, if any.
func (m Model) Ticket() (model.Ticket, bool) {
	if m.ticket == nil {
		return model.Ticket{}, false
	}
	return *m.ticket, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

func (m *Model) refresh() {
	content := m.renderContent()
	m.viewport.SetContent(content)
	// Shrink to fit so the modal box hugs short tickets.
	if h := lipgloss.Height(content); h < m.height {
		m.viewport.Height = h
	} else {
		m.viewport.Height = m.height
	}
}

func (m Model) renderContent() string {
	if m.ticket == nil {
		return ""
	}
	t := m.ticket

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	sections := []string{
		titleStyle.Render(t.Name),
		theme.StatusStyle(t.Status).Render(t.StatusLabel()),
		"",
		fmt.Sprintf("%s  %s", metaStyle.Render("ID:"), t.ID),
		fmt.Sprintf("%s  %s (%s)",
			metaStyle.Render("Created:"),
			t.Created.Format(TimestampLayout),
			humanize.RelTime(t.Created, m.now(), "ago", "from now"),
		),
	}

	sep := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width, 60), 10)))
	sections = append(sections, "", sep, "")

	desc := t.Description
	if strings.TrimSpace(desc) == "" {
		desc = theme.HelpStyle.Render("No description")
	} else if m.width > 0 {
		desc = lipgloss.NewStyle().Width(m.width).Render(desc)
	}
	sections = append(sections, desc)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
