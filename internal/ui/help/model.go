package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/Madmaxim22/HelpDesk/internal/keys"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// Model is the keyboard shortcut dialog.
type Model struct {
	keys  *keys.KeyMap
	help  help.Model
	width int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width int) Model {
	h := help.New()
	h.ShowAll = true
	h.Width = width
	return Model{
		keys:  keys,
		help:  h,
		width: width,
	}
}

// View renders the shortcut table.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
	)
}

// ShortView renders the one-line hint for the status bar.
func (m Model) ShortView() string {
	h := m.help
	h.ShowAll = false
	return h.ShortHelpView(m.keys.ShortHelp())
}

// SetSize updates the help view width.
func (m *Model) SetSize(width int) {
	m.width = width
	m.help.Width = width
}
