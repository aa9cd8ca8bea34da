package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Madmaxim22/HelpDesk/internal/keys"
	"github.com/Madmaxim22/HelpDesk/internal/model"
	appsync "github.com/Madmaxim22/HelpDesk/internal/sync"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
	"github.com/Madmaxim22/HelpDesk/internal/ui"
	"github.com/Madmaxim22/HelpDesk/internal/ui/cards"
	"github.com/Madmaxim22/HelpDesk/internal/ui/command"
	configview "github.com/Madmaxim22/HelpDesk/internal/ui/config"
	"github.com/Madmaxim22/HelpDesk/internal/ui/confirm"
	"github.com/Madmaxim22/HelpDesk/internal/ui/detail"
	helpview "github.com/Madmaxim22/HelpDesk/internal/ui/help"
	"github.com/Madmaxim22/HelpDesk/internal/ui/ticketform"
)

// Board is the part of board.Manager the UI drives.
type Board interface {
	LoadAll(ctx context.Context) error
	Create(ctx context.Context, f model.Fields) (model.Ticket, error)
	Update(ctx context.Context, id string, f model.Fields) (model.Ticket, error)
	Delete(ctx context.Context, id string) (json.RawMessage, error)
	ToggleStatus(ctx context.Context, id string) (model.Ticket, error)
}

// Modal identifies the dialog currently shown over the card list.
type Modal int

const (
	ModalNone Modal = iota
	ModalEdit
	ModalDelete
	ModalDetails
	ModalHelp
	ModalCommand
	ModalSettings
)

// User-facing notifications. Details go to the log.
const (
	noticeLoad   = "Could not load tickets"
	noticeSave   = "Could not save ticket"
	noticeDelete = "Could not delete ticket"
	noticeToggle = "Could not update ticket status"
)

// Deps are the collaborators injected into the root model.
type Deps struct {
	Board  Board
	Events *appsync.Bridge

	// Poller is optional; it is stopped when the program quits.
	Poller *appsync.Poller

	// Server is the connection the board was started with. The settings
	// dialog is available only when SaveSettings is set.
	Server        model.ServerConfig
	CheckSettings configview.Validator
	SaveSettings  configview.Saver

	// Keys defaults to keys.DefaultKeyMap().
	Keys   *keys.KeyMap
	Logger zerolog.Logger
}

// Model is the root Bubble Tea model. It owns the card list and every
// modal, routes intents to the board, and renders board events.
type Model struct {
	modal   Modal
	layout  ui.Layout
	board   Board
	events  *appsync.Bridge
	poller  *appsync.Poller
	keys    *keys.KeyMap
	logger  zerolog.Logger
	cards   cards.Model
	form    ticketform.Model
	confirm confirm.Model
	detail  detail.Model
	help    helpview.Model
	command command.Model
	config  configview.Model
	server  model.ServerConfig
	spinner spinner.Model

	loading  bool
	saving   bool
	settings bool
	notice   string
	info     string
	ready    bool
}

// New creates the root model.
func New(deps Deps) Model {
	k := deps.Keys
	if k == nil {
		k = keys.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(theme.ColorWhite)

	return Model{
		layout:  ui.NewLayout(80, 24),
		board:   deps.Board,
		events:  deps.Events,
		poller:  deps.Poller,
		keys:    k,
		logger:  deps.Logger.With().Str("component", "app").Logger(),
		cards:   cards.New(k, 80, 22),
		form:    ticketform.New(80, 22),
		confirm: confirm.New(k),
		detail:  detail.New(72, 16),
		help:    helpview.New(k, 80),
		command: command.New(80),
		config:  configview.New(deps.CheckSettings, deps.SaveSettings, 80),
		server:  deps.Server,
		spinner: sp,

		settings: deps.SaveSettings != nil,
	}
}

// Init subscribes to board events and loads the board.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.events.WaitForNext(),
		m.loadAll(),
	)
}

// Update handles messages and dispatches to the active modal or the
// card list.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.ready = true
		if m.modal == ModalEdit {
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		}
		return m, nil

	case appsync.LoadingMsg:
		m.loading = msg.Visible
		wait := m.events.WaitForNext()
		if msg.Visible {
			return m, tea.Batch(wait, m.spinner.Tick)
		}
		return m, wait

	case appsync.TicketsMsg:
		return m, tea.Batch(
			m.cards.SetTickets(msg.Tickets),
			m.events.WaitForNext(),
		)

	case appsync.LoadErrorMsg:
		m.notice = noticeLoad
		return m, m.events.WaitForNext()

	case spinner.TickMsg:
		if msg.ID == m.spinner.ID() {
			if !m.loading {
				return m, nil
			}
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.config, cmd = m.config.Update(msg)
		return m, cmd

	case configview.ValidateResultMsg, configview.SaveResultMsg:
		var cmd tea.Cmd
		m.config, cmd = m.config.Update(msg)
		return m, cmd

	case configview.SavedMsg:
		m.server = msg.Server
		m.info = "Settings saved; restart to apply"
		return m, nil

	case cards.CreateRequestedMsg:
		return m, m.openCreate()

	case cards.EditRequestedMsg:
		m.saving = false
		m.modal = ModalEdit
		return m, m.form.StartEdit(msg.Ticket)

	case cards.DeleteRequestedMsg:
		m.confirm.Open(msg.Ticket)
		m.modal = ModalDelete
		return m, nil

	case cards.ToggleRequestedMsg:
		m.notice = ""
		return m, m.toggleTicket(msg.ID)

	case cards.DetailsRequestedMsg:
		m.detail.SetTicket(msg.Ticket)
		m.modal = ModalDetails
		return m, nil

	case ticketform.SubmittedMsg:
		m.saving = true
		m.notice = ""
		return m, m.saveTicket(msg.ID, msg.Fields)

	case ticketform.CancelMsg:
		m.closeModal()
		return m, nil

	case confirm.ConfirmedMsg:
		m.notice = ""
		return m, m.deleteTicket(msg.Ticket.ID)

	case confirm.CancelledMsg:
		if m.modal == ModalDelete {
			m.closeModal()
		}
		return m, nil

	case command.CommandMsg:
		m.closeModal()
		return m, m.executeCommand(string(msg))

	case ticketSavedMsg:
		return m.handleSaved(msg)

	case ticketDeletedMsg:
		return m.handleDeleted(msg)

	case ticketToggledMsg:
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Str("id", msg.id).Msg("toggle failed")
			m.notice = noticeToggle
		}
		return m, nil

	case loadFinishedMsg:
		// Failures already reached the UI as a LoadErrorMsg.
		return m, nil

	case tea.MouseMsg:
		if m.modal != ModalNone &&
			msg.Action == tea.MouseActionPress &&
			msg.Button == tea.MouseButtonLeft &&
			!m.modalBounds().Contains(msg.X, msg.Y) {
			m.closeModal()
			return m, nil
		}

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActive(msg)
}

// handleKey processes keys that act regardless of the focused component.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit(), true
	}

	if m.modal != ModalNone {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.closeModal()
			return m, nil, true
		case m.modal == ModalHelp && key.Matches(msg, m.keys.Help):
			m.closeModal()
			return m, nil, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit(), true
	case key.Matches(msg, m.keys.Help):
		m.modal = ModalHelp
		return m, nil, true
	case key.Matches(msg, m.keys.Command):
		m.modal = ModalCommand
		return m, m.command.Focus(), true
	case key.Matches(msg, m.keys.Refresh):
		m.notice = ""
		return m, m.loadAll(), true
	case key.Matches(msg, m.keys.Settings):
		return m, m.openSettings(), true
	}
	return m, nil, false
}

// updateActive dispatches msg to the open modal, or to the card list.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.modal {
	case ModalNone:
		m.cards, cmd = m.cards.Update(msg)
	case ModalEdit:
		m.form, cmd = m.form.Update(msg)
	case ModalDelete:
		m.confirm, cmd = m.confirm.Update(msg)
	case ModalDetails:
		m.detail, cmd = m.detail.Update(msg)
	case ModalCommand:
		m.command, cmd = m.command.Update(msg)
	case ModalSettings:
		m.config, cmd = m.config.Update(msg)
	}

	return m, cmd
}

func (m *Model) openCreate() tea.Cmd {
	m.saving = false
	m.modal = ModalEdit
	return m.form.StartCreate()
}

// openSettings shows the connection settings, if the program provided a
// way to save them.
func (m *Model) openSettings() tea.Cmd {
	if !m.settings {
		return nil
	}
	m.info = ""
	m.modal = ModalSettings
	return m.config.Start(m.server)
}

// closeModal hides the open dialog. Dialog state, including a pending
// delete, is left for the next time it opens.
func (m *Model) closeModal() {
	m.modal = ModalNone
}

func (m Model) handleSaved(msg ticketSavedMsg) (tea.Model, tea.Cmd) {
	if !m.saving {
		if msg.err != nil {
			m.notice = noticeSave
		}
		return m, nil
	}
	m.saving = false

	if msg.err != nil {
		m.logger.Error().Err(msg.err).Str("id", msg.id).Msg("save failed")
		m.notice = noticeSave
		m.modal = ModalEdit
		return m, m.form.Reopen()
	}

	m.form.Reset()
	if m.modal == ModalEdit {
		m.closeModal()
	}
	return m, nil
}

func (m Model) handleDeleted(msg ticketDeletedMsg) (tea.Model, tea.Cmd) {
	pending, ok := m.confirm.Pending()
	if !ok || pending.ID != msg.id {
		if msg.err != nil {
			m.notice = noticeDelete
		}
		return m, nil
	}

	if msg.err != nil {
		m.logger.Error().Err(msg.err).Str("id", msg.id).Msg("delete failed")
		m.notice = noticeDelete
		m.confirm.Fail()
		return m, nil
	}

	m.confirm.Clear()
	if m.modal == ModalDelete {
		m.closeModal()
	}
	return m, nil
}

func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case command.CmdNew:
		return m.openCreate()
	case command.CmdRefresh:
		m.notice = ""
		return m.loadAll()
	case command.CmdSettings:
		return m.openSettings()
	case command.CmdHelp:
		m.modal = ModalHelp
		return nil
	case command.CmdQuit:
		return m.quit()
	default:
		return nil
	}
}

func (m Model) quit() tea.Cmd {
	if m.poller != nil {
		m.poller.Stop()
	}
	return tea.Quit
}

func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	w := m.layout.ContentWidth()
	h := m.layout.ContentHeight()

	// Room for the modal border and padding.
	inner := max(min(w-8, 72), 20)
	m.cards.SetSize(w, h)
	m.form.SetSize(inner+12, h)
	m.detail.SetSize(inner, max(h-8, 3))
	m.help.SetSize(inner)
	m.command.SetSize(inner + 16)
	m.config.SetSize(inner + 12)
}

// modalBody renders the open dialog without its frame.
func (m Model) modalBody() (string, bool) {
	switch m.modal {
	case ModalEdit:
		return m.form.View(), true
	case ModalDelete:
		return m.confirm.View(), true
	case ModalDetails:
		return m.detail.View(), true
	case ModalHelp:
		return m.help.View(), true
	case ModalCommand:
		return m.command.View(), true
	case ModalSettings:
		return m.config.View(), true
	default:
		return "", false
	}
}

func (m Model) modalBounds() ui.Rect {
	body, _ := m.modalBody()
	return m.layout.ModalBounds(body)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Ticket Board", m.boardStatus())

	content := m.cards.View()
	if body, ok := m.modalBody(); ok {
		content = m.layout.RenderModal(body)
	}

	hints := m.keyHints()
	if m.info != "" && m.modal == ModalNone {
		hints = m.info + " | " + hints
	}
	statusBar := m.layout.RenderStatusBar(hints)
	if m.notice != "" {
		statusBar = m.layout.RenderNotice(m.notice)
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// boardStatus returns the header's right-hand segment.
func (m Model) boardStatus() string {
	if m.loading {
		return m.spinner.View() + " loading"
	}
	tickets := m.cards.Tickets()
	done := 0
	for _, t := range tickets {
		if t.Status {
			done++
		}
	}
	return fmt.Sprintf("%d tickets · %d done", len(tickets), done)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.modal {
	case ModalEdit:
		return "tab next field | enter submit | esc close"
	case ModalDelete:
		return "y delete | n cancel | esc close"
	case ModalDetails:
		return "j/k scroll | esc close"
	case ModalHelp:
		return "? close help | esc close"
	case ModalCommand:
		return "enter execute | esc close"
	case ModalSettings:
		return "tab next field | enter submit | esc close"
	default:
		return m.help.ShortView()
	}
}
