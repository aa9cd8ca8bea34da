package cards

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Madmaxim22/HelpDesk/internal/keys"
	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// EmptyPlaceholder is shown in place of the list when there are no tickets.
const EmptyPlaceholder = "No tickets yet"

// CreateRequestedMsg asks the parent to open the create form.
type CreateRequestedMsg struct{}

// EditRequestedMsg asks the parent to open the edit form for Ticket.
type EditRequestedMsg struct {
	Ticket model.Ticket
}

// DeleteRequestedMsg asks the parent to confirm deletion of Ticket.
type DeleteRequestedMsg struct {
	Ticket model.Ticket
}

// ToggleRequestedMsg asks the parent to flip the status of ticket ID.
type ToggleRequestedMsg struct {
	ID string
}

// DetailsRequestedMsg asks the parent to show the full record of Ticket.
type DetailsRequestedMsg struct {
	Ticket model.Ticket
}

// Model is the card list. It never talks to the board itself; every
// action leaves as one of the *RequestedMsg intents.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new card list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height)
	l.Title = "Tickets"
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("ticket", "tickets")
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetTickets replaces the rendered cards, keeping the order given.
func (m *Model) SetTickets(tickets []model.Ticket) tea.Cmd {
	items := make([]list.Item, len(tickets))
	for i, t := range tickets {
		items[i] = Item{Ticket: t}
	}
	return m.list.SetItems(items)
}

// Tickets returns the currently rendered tickets in display order.
func (m Model) Tickets() []model.Ticket {
	items := m.list.Items()
	out := make([]model.Ticket, 0, len(items))
	for _, it := range items {
		if ti, ok := it.(Item); ok {
			out = append(out, ti.Ticket)
		}
	}
	return out
}

// Selected returns the focused ticket, if any.
func (m Model) Selected() (model.Ticket, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Ticket{}, false
	}
	return it.Ticket, true
}

// Update handles messages for the card list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.handleKeys(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.New) {
		return emit(CreateRequestedMsg{}), true
	}

	t, ok := m.Selected()
	switch {
	case key.Matches(msg, m.keys.Edit):
		if ok {
			return emit(EditRequestedMsg{Ticket: t.Clone()}), true
		}
		return nil, true
	case key.Matches(msg, m.keys.Delete):
		if ok {
			return emit(DeleteRequestedMsg{Ticket: t.Clone()}), true
		}
		return nil, true
	case key.Matches(msg, m.keys.Toggle):
		if ok {
			return emit(ToggleRequestedMsg{ID: t.ID}), true
		}
		return nil, true
	case key.Matches(msg, m.keys.Details):
		if ok {
			return emit(DetailsRequestedMsg{Ticket: t.Clone()}), true
		}
		return nil, true
	}
	return nil, false
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the card list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(EmptyPlaceholder)
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
