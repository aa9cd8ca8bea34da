package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm           Mode = iota // Editing the connection settings
	ModeValidating                 // Testing connection
	ModeValidateResult             // Show validation result
	ModeSaved                      // Settings written
)

// Validator checks that the service answers with the given settings.
// An empty token means "use the token already configured".
type Validator func(ctx context.Context, cfg model.ServerConfig, token string) error

// Saver persists the settings. A non-empty token is stored as well.
type Saver func(cfg model.ServerConfig, token string) error

// SavedMsg signals the settings were written.
type SavedMsg struct {
	Server model.ServerConfig
}

// ValidateResultMsg carries the result of a connection validation attempt.
type ValidateResultMsg struct {
	Err error
}

// SaveResultMsg is sent after the settings are persisted.
type SaveResultMsg struct {
	Server model.ServerConfig
	Err    error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL      string
	timeout      string
	deleteMethod string
	token        string
}

// Model is the Bubble Tea model for the service connection settings.
type Model struct {
	mode      Mode
	form      *huh.Form
	fb        *formBindings
	current   model.ServerConfig
	validate  Validator
	save      Saver
	spinner   spinner.Model
	validErr  error
	statusMsg string
	width     int
}

// New creates a settings view. validate and save are injected so the
// view never builds clients or touches files itself.
func New(validate Validator, save Saver, width int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		fb:       &formBindings{},
		validate: validate,
		save:     save,
		spinner:  sp,
		width:    width,
	}
}

// Start opens the form pre-filled from cfg.
func (m *Model) Start(cfg model.ServerConfig) tea.Cmd {
	m.current = cfg
	m.mode = ModeForm
	m.validErr = nil
	m.statusMsg = ""
	m.fb.baseURL = cfg.BaseURL
	m.fb.timeout = strconv.Itoa(cfg.TimeoutSec)
	m.fb.deleteMethod = cfg.DeleteMethod
	if m.fb.deleteMethod == "" {
		m.fb.deleteMethod = "GET"
	}
	m.fb.token = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ValidateResultMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		m.validErr = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case SaveResultMsg:
		if msg.Err != nil {
			m.validErr = fmt.Errorf("connection OK but save failed: %w", msg.Err)
			m.mode = ModeValidateResult
			return m, nil
		}
		m.current = msg.Server
		m.mode = ModeSaved
		m.statusMsg = "Settings saved. Restart ticketboard to apply them."
		server := msg.Server
		return m, func() tea.Msg { return SavedMsg{Server: server} }

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeValidateResult {
			return m.handleValidateResultKeys(msg)
		}
	}

	if m.mode == ModeForm {
		return m.updateForm(msg)
	}
	return m, nil
}

// handleValidateResultKeys processes key events on the validation result screen.
func (m Model) handleValidateResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m.startValidation()
	case "e", "enter":
		m.mode = ModeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.startValidation()
	case huh.StateAborted:
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	return m, cmd
}

func (m Model) startValidation() (Model, tea.Cmd) {
	m.mode = ModeValidating
	m.validErr = nil
	return m, tea.Batch(
		m.spinner.Tick,
		m.validateAndSave(m.serverConfig(), m.fb.token),
	)
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service URL").
				Description("Ticket service endpoint").
				Placeholder("http://localhost:7070").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Timeout").
				Description("Seconds per request").
				Value(&m.fb.timeout).
				Validate(validateTimeout),
			huh.NewSelect[string]().
				Title("Delete verb").
				Options(
					huh.NewOption("GET", "GET"),
					huh.NewOption("DELETE", "DELETE"),
				).
				Value(&m.fb.deleteMethod),
			huh.NewInput().
				Title("Token").
				Description("Bearer token; leave empty to keep the current one").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
		),
	).WithWidth(m.formWidth())
}

// serverConfig builds the settings described by the form.
func (m Model) serverConfig() model.ServerConfig {
	cfg := m.current
	cfg.BaseURL = strings.TrimSpace(m.fb.baseURL)
	if n, err := strconv.Atoi(strings.TrimSpace(m.fb.timeout)); err == nil && n > 0 {
		cfg.TimeoutSec = n
	}
	cfg.DeleteMethod = m.fb.deleteMethod
	return cfg
}

// validateAndSave validates the connection then saves the settings if
// successful.
func (m Model) validateAndSave(cfg model.ServerConfig, token string) tea.Cmd {
	validate, save := m.validate, m.save
	return func() tea.Msg {
		if validate != nil {
			if err := validate(context.Background(), cfg, token); err != nil {
				return ValidateResultMsg{Err: err}
			}
		}
		if save == nil {
			return SaveResultMsg{Server: cfg}
		}
		return SaveResultMsg{Server: cfg, Err: save(cfg, token)}
	}
}

// View renders the settings dialog body.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	title := titleStyle.Render("Service settings")

	switch m.mode {
	case ModeValidating:
		return title + "\n" + fmt.Sprintf("%s Testing connection...", m.spinner.View())
	case ModeValidateResult:
		return title + "\n" + m.viewValidateResult()
	case ModeSaved:
		okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
		return title + "\n" + okStyle.Render("Connection successful") + "\n\n" + m.statusMsg
	}

	if m.form == nil {
		return title
	}
	return title + "\n" + m.form.View()
}

func (m Model) viewValidateResult() string {
	errStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorRed)

	msg := ""
	if m.validErr != nil {
		msg = m.validErr.Error()
	}
	return errStyle.Render("Connection failed") + "\n\n" +
		lipgloss.NewStyle().Width(m.formWidth()).Render(msg) + "\n\n" +
		theme.HelpStyle.Render("r retry | e edit | esc close")
}

// SetSize updates the view width.
func (m *Model) SetSize(width int) {
	m.width = width
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
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

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Service URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL, include scheme (e.g., http://)")
	}
	return nil
}

func validateTimeout(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("timeout must be a positive number of seconds")
	}
	return nil
}
