package ticketform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// SubmittedMsg is dispatched when the form completes. ID is empty for a
// new ticket and holds the edited ticket's id otherwise.
type SubmittedMsg struct {
	ID     string
	Fields model.Fields
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	status      bool
}

// Model is the Bubble Tea model for the ticket create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	saving   bool
	width    int
	height   int
}

// New creates a new ticket form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate clears the form and opens it for a new ticket.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.saving = false
	m.fb.name = ""
	m.fb.description = ""
	m.fb.status = false
	m.form = m.build()
	return m.form.Init()
}

// StartEdit fills the form from t and remembers its id.
func (m *Model) StartEdit(t model.Ticket) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	m.saving = false
	m.fb.name = t.Name
	m.fb.description = t.Description
	m.fb.status = t.Status
	m.form = m.build()
	return m.form.Init()
}

// Reopen rebuilds the form around the values already entered, so a
// failed save can be retried without retyping.
func (m *Model) Reopen() tea.Cmd {
	m.saving = false
	m.form = m.build()
	return m.form.Init()
}

// Reset drops the form and its values.
func (m *Model) Reset() {
	m.form = nil
	m.editMode = false
	m.editID = ""
	m.saving = false
	m.fb.name = ""
	m.fb.description = ""
	m.fb.status = false
}

// Active reports whether the form has been started.
func (m Model) Active() bool { return m.form != nil }

// EditID returns the id of the ticket being edited, or "" in create mode.
func (m Model) EditID() string { return m.editID }

// Saving reports whether the last submission is still in flight.
func (m Model) Saving() bool { return m.saving }

// Update handles messages for the ticket form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.saving = true
		return m, m.submit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the ticket form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New ticket"
	if m.editMode {
		titleText = "Edit ticket"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	body := m.form.View()
	if m.saving {
		body = theme.HelpStyle.Render("Saving…")
	}

	return titleStyle.Render(titleText) + "\n" + body
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m *Model) build() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Key("name").
			Title("Name").
			Placeholder("Short summary").
			Value(&m.fb.name).
			Validate(validateRequired("Name")),
		huh.NewText().
			Key("description").
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
	}

	// New tickets always start open.
	if m.editMode {
		fields = append(fields,
			huh.NewConfirm().
				Key("status").
				Title("Done").
				Affirmative("Done").
				Negative("Not done").
				Value(&m.fb.status),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m Model) submit() tea.Cmd {
	msg := SubmittedMsg{
		ID: m.editID,
		Fields: model.Fields{
			Name:        strings.TrimSpace(m.fb.name),
			Description: m.fb.description,
			Status:      m.editMode && m.fb.status,
		},
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	w := m.width - 12
	if w < 30 {
		w = 30
	}
	if w > 72 {
		w = 72
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
