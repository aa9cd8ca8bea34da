package sync

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Madmaxim22/HelpDesk/internal/board"
	"github.com/Madmaxim22/HelpDesk/internal/model"
)

// LoadingMsg shows or hides the loading indicator.
type LoadingMsg struct {
	Visible bool
}

// TicketsMsg carries a freshly loaded ticket list to render.
type TicketsMsg struct {
	Tickets []model.Ticket
}

// LoadErrorMsg reports a failed list load.
type LoadErrorMsg struct {
	Err error
}

// eventBuffer bounds how far the board may run ahead of the UI before a
// send blocks.
const eventBuffer = 64

var _ board.View = (*Bridge)(nil)

// Bridge implements board.View by forwarding every call into the Bubble
// Tea program as a message. The board may call it from any goroutine.
type Bridge struct {
	eventCh chan tea.Msg
}

// NewBridge creates a Bridge with a buffered event channel.
func NewBridge() *Bridge {
	return &Bridge{eventCh: make(chan tea.Msg, eventBuffer)}
}

// ShowLoading implements board.View.
func (b *Bridge) ShowLoading() { b.send(LoadingMsg{Visible: true}) }

// HideLoading implements board.View.
func (b *Bridge) HideLoading() { b.send(LoadingMsg{Visible: false}) }

// RenderTickets implements board.View.
func (b *Bridge) RenderTickets(tickets []model.Ticket) {
	out := make([]model.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = t.Clone()
	}
	b.send(TicketsMsg{Tickets: out})
}

// ShowLoadError implements board.View.
func (b *Bridge) ShowLoadError(err error) { b.send(LoadErrorMsg{Err: err}) }

// send blocks when the buffer is full. Dropping would lose the
// HideLoading that pairs with an earlier ShowLoading.
func (b *Bridge) send(msg tea.Msg) {
	b.eventCh <- msg
}

// WaitForNext returns a tea.Cmd that waits for the next board event.
// Call it again after handling each event to keep listening.
func (b *Bridge) WaitForNext() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.eventCh
		if !ok {
			return nil
		}
		return msg
	}
}
