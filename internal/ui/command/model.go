package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// Palette commands.
const (
	CmdNew      = "new"
	CmdRefresh  = "refresh"
	CmdSettings = "settings"
	CmdHelp     = "help"
	CmdQuit     = "quit"
)

// Commands lists every palette command in display order.
var Commands = []string{CmdNew, CmdRefresh, CmdSettings, CmdHelp, CmdQuit}

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Model is the command palette view.
type Model struct {
	input textinput.Model
	width int
}

// New creates a new command palette model.
func New(width int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Focus()
	ti.Width = inputWidth(width)

	return Model{
		input: ti,
		width: width,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyEnter {
		cmd := Resolve(m.input.Value())
		m.input.Reset()
		if cmd != "" {
			return m, func() tea.Msg {
				return CommandMsg(cmd)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Resolve maps typed input to a palette command. A unique prefix is
// enough; unknown input resolves to "".
func Resolve(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	var match string
	for _, c := range Commands {
		if c == input {
			return c
		}
		if strings.HasPrefix(c, input) {
			if match != "" {
				return ""
			}
			match = c
		}
	}
	return match
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	hint := theme.HelpStyle.Render(strings.Join(Commands, " · "))

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Command Palette"),
		m.input.View(),
		"",
		hint,
	)
}

// SetSize updates the command palette width.
func (m *Model) SetSize(width int) {
	m.width = width
	m.input.Width = inputWidth(width)
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}

func inputWidth(width int) int {
	w := width - 16
	if w < 20 {
		w = 20
	}
	if w > 50 {
		w = 50
	}
	return w
}
