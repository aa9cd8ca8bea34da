package confirm

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Madmaxim22/HelpDesk/internal/keys"
	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// ConfirmedMsg asks the parent to delete Ticket.
type ConfirmedMsg struct {
	Ticket model.Ticket
}

// CancelledMsg reports that the user declined the deletion.
type CancelledMsg struct{}

// Model is the delete confirmation dialog. It holds the ticket awaiting
// deletion until the user confirms or cancels; closing the dialog any
// other way leaves it pending.
type Model struct {
	pending *model.Ticket
	busy    bool
	keys    *keys.KeyMap
}

// New creates a new confirmation dialog.
func New(k *keys.KeyMap) Model {
	return Model{keys: k}
}

// Open records t as the ticket awaiting deletion. Re-opening the ticket
// whose delete is still in flight keeps the dialog busy.
func (m *Model) Open(t model.Ticket) {
	inFlight := m.busy && m.pending != nil && m.pending.ID == t.ID
	c := t.Clone()
	m.pending = &c
	m.busy = inFlight
}

// Pending returns the ticket awaiting deletion.
func (m Model) Pending() (model.Ticket, bool) {
	if m.pending == nil {
		return model.Ticket{}, false
	}
	return *m.pending, true
}

// Clear forgets the pending ticket.
func (m *Model) Clear() {
	m.pending = nil
	m.busy = false
}

// Fail re-enables the dialog after a failed delete.
func (m *Model) Fail() {
	m.busy = false
}

// Update handles messages for the dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || m.busy {
		return m, nil
	}

	switch {
	case key.Matches(km, m.keys.Confirm):
		if m.pending == nil {
			return m, nil
		}
		t := *m.pending
		m.busy = true
		return m, func() tea.Msg { return ConfirmedMsg{Ticket: t} }

	case key.Matches(km, m.keys.Cancel):
		m.Clear()
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

// View renders the dialog body.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorRed).
		MarginBottom(1)

	name := ""
	if m.pending != nil {
		name = m.pending.Name
	}

	hint := fmt.Sprintf("%s delete   %s cancel",
		lipgloss.NewStyle().Bold(true).Render("[y]"),
		lipgloss.NewStyle().Bold(true).Render("[n]"),
	)
	if m.busy {
		hint = theme.HelpStyle.Render("Deleting…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Delete ticket"),
		fmt.Sprintf("Delete %q? This cannot be undone.", name),
		"",
		hint,
	)
}
