// Package board mediates between the presentation layer and the ticket
// service. After every successful write it re-reads the whole list from
// the service (read-after-write) instead of patching local state.
package board

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Madmaxim22/HelpDesk/internal/model"
)

// Remote is the data-access layer the board writes through.
type Remote interface {
	ListAll(ctx context.Context) ([]model.Record, error)
	GetByID(ctx context.Context, id string) (model.Record, error)
	Create(ctx context.Context, t model.Transport) (model.Record, error)
	Update(ctx context.Context, id string, t model.Transport) (model.Record, error)
	DeleteByID(ctx context.Context, id string) (json.RawMessage, error)
}

// View is the display surface the board refreshes. Implementations must be
// safe for concurrent use: the board may be driven from several goroutines.
type View interface {
	ShowLoading()
	HideLoading()
	RenderTickets(tickets []model.Ticket)
	ShowLoadError(err error)
}

// Manager is the board controller.
type Manager struct {
	remote Remote
	view   View
	log    zerolog.Logger
}

// New creates a board controller.
func New(remote Remote, view View, logger zerolog.Logger) *Manager {
	return &Manager{
		remote: remote,
		view:   view,
		log:    logger.With().Str("component", "board").Logger(),
	}
}

// LoadAll fetches the full list and hands it to the view. The loading
// indicator is shown for the duration of the fetch on both paths.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.view.ShowLoading()
	defer m.view.HideLoading()

	records, err := m.remote.ListAll(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("loading tickets")
		m.view.ShowLoadError(err)
		return err
	}

	m.view.RenderTickets(model.Tickets(records))
	return nil
}

// GetByID returns a single ticket from the service.
func (m *Manager) GetByID(ctx context.Context, id string) (model.Ticket, error) {
	record, err := m.remote.GetByID(ctx, id)
	if err != nil {
		m.log.Error().Err(err).Str("id", id).Msg("getting ticket")
		return model.Ticket{}, err
	}
	return record.Ticket(), nil
}

// Create persists a new ticket built from f and reloads the board.
func (m *Manager) Create(ctx context.Context, f model.Fields) (model.Ticket, error) {
	record, err := m.remote.Create(ctx, model.New(f).Transport())
	if err != nil {
		m.log.Error().Err(err).Str("name", f.Name).Msg("creating ticket")
		return model.Ticket{}, err
	}

	m.log.Info().Str("id", record.ID).Msg("ticket created")
	m.refreshAfterWrite(ctx)
	return record.Ticket(), nil
}

// Update replaces the name, description and status of the ticket at id
// and reloads the board.
func (m *Manager) Update(ctx context.Context, id string, f model.Fields) (model.Ticket, error) {
	f.ID = id
	record, err := m.remote.Update(ctx, id, model.New(f).Transport())
	if err != nil {
		m.log.Error().Err(err).Str("id", id).Msg("updating ticket")
		return model.Ticket{}, err
	}

	m.log.Info().Str("id", id).Msg("ticket updated")
	m.refreshAfterWrite(ctx)
	return record.Ticket(), nil
}

// Delete removes the ticket at id and reloads the board. The returned
// payload is nil when the service answers with no content.
func (m *Manager) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	payload, err := m.remote.DeleteByID(ctx, id)
	if err != nil {
		m.log.Error().Err(err).Str("id", id).Msg("deleting ticket")
		return nil, err
	}

	m.log.Info().Str("id", id).Msg("ticket deleted")
	m.refreshAfterWrite(ctx)
	return payload, nil
}

// ToggleStatus flips the done flag of the ticket at id. It reads the
// current ticket and writes it back whole with the flag inverted; two
// concurrent toggles of the same ticket race and the last write wins.
func (m *Manager) ToggleStatus(ctx context.Context, id string) (model.Ticket, error) {
	current, err := m.remote.GetByID(ctx, id)
	if err != nil {
		m.log.Error().Err(err).Str("id", id).Msg("reading ticket for status toggle")
		return model.Ticket{}, err
	}

	next := current.Transport()
	next.Status = !current.Status

	record, err := m.remote.Update(ctx, id, next)
	if err != nil {
		m.log.Error().Err(err).Str("id", id).Msg("toggling ticket status")
		return model.Ticket{}, err
	}

	m.log.Info().Str("id", id).Bool("status", next.Status).Msg("ticket status toggled")
	m.refreshAfterWrite(ctx)
	return record.Ticket(), nil
}

// refreshAfterWrite applies the read-after-write policy: the service's
// list is the only source of truth once a write has succeeded. A failed
// refresh is reported by LoadAll itself and does not undo the write.
func (m *Manager) refreshAfterWrite(ctx context.Context) {
	if err := m.LoadAll(ctx); err != nil {
		m.log.Warn().Err(err).Msg("board refresh after write failed")
	}
}
