package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Madmaxim22/HelpDesk/internal/model"
)

// ticketSavedMsg is sent after a create or update finishes.
type ticketSavedMsg struct {
	id  string
	err error
}

// ticketDeletedMsg is sent after a delete finishes.
type ticketDeletedMsg struct {
	id  string
	err error
}

// ticketToggledMsg is sent after a status toggle finishes.
type ticketToggledMsg struct {
	id  string
	err error
}

// loadFinishedMsg is sent when a manual or initial load returns.
type loadFinishedMsg struct{ err error }

// loadAll reloads the board. Results arrive through the event bridge.
func (m Model) loadAll() tea.Cmd {
	b := m.board
	return func() tea.Msg {
		return loadFinishedMsg{err: b.LoadAll(context.Background())}
	}
}

// saveTicket creates a ticket when id is empty and updates it otherwise.
func (m Model) saveTicket(id string, f model.Fields) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		ctx := context.Background()
		if id == "" {
			t, err := b.Create(ctx, f)
			return ticketSavedMsg{id: t.ID, err: err}
		}
		_, err := b.Update(ctx, id, f)
		return ticketSavedMsg{id: id, err: err}
	}
}

// deleteTicket removes a ticket by id.
func (m Model) deleteTicket(id string) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		_, err := b.Delete(context.Background(), id)
		return ticketDeletedMsg{id: id, err: err}
	}
}

// toggleTicket flips a ticket's status.
func (m Model) toggleTicket(id string) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		_, err := b.ToggleStatus(context.Background(), id)
		return ticketToggledMsg{id: id, err: err}
	}
}
