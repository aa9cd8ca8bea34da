package board

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/source/ticketapi"
)

// fakeRemote is an in-memory ticket service.
type fakeRemote struct {
	mu      sync.Mutex
	order   []string
	tickets map[string]model.Record
	nextID  int
	calls   map[string]int
	failOn  map[string]bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tickets: make(map[string]model.Record),
		calls:   make(map[string]int),
		failOn:  make(map[string]bool),
	}
}

func (f *fakeRemote) fail(op string) error {
	return &ticketapi.RemoteError{Op: op, Method: http.MethodGet, StatusCode: http.StatusInternalServerError}
}

func (f *fakeRemote) notFound(op string) error {
	return &ticketapi.RemoteError{Op: op, Method: http.MethodGet, StatusCode: http.StatusNotFound}
}

func (f *fakeRemote) ListAll(_ context.Context) ([]model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticketapi.OpAllTickets]++
	if f.failOn[ticketapi.OpAllTickets] {
		return nil, f.fail(ticketapi.OpAllTickets)
	}
	out := make([]model.Record, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.tickets[id])
	}
	return out, nil
}

func (f *fakeRemote) GetByID(_ context.Context, id string) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticketapi.OpTicketByID]++
	if f.failOn[ticketapi.OpTicketByID] {
		return model.Record{}, f.fail(ticketapi.OpTicketByID)
	}
	r, ok := f.tickets[id]
	if !ok {
		return model.Record{}, f.notFound(ticketapi.OpTicketByID)
	}
	return r, nil
}

func (f *fakeRemote) Create(_ context.Context, t model.Transport) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticketapi.OpCreateTicket]++
	if f.failOn[ticketapi.OpCreateTicket] {
		return model.Record{}, f.fail(ticketapi.OpCreateTicket)
	}
	f.nextID++
	r := model.Record{
		ID:          strconv.Itoa(f.nextID),
		Name:        t.Name,
		Status:      t.Status,
		Description: t.Description,
		Created:     1700000000000 + int64(f.nextID),
	}
	f.tickets[r.ID] = r
	f.order = append(f.order, r.ID)
	return r, nil
}

func (f *fakeRemote) Update(_ context.Context, id string, t model.Transport) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticketapi.OpUpdateByID]++
	if f.failOn[ticketapi.OpUpdateByID] {
		return model.Record{}, f.fail(ticketapi.OpUpdateByID)
	}
	r, ok := f.tickets[id]
	if !ok {
		return model.Record{}, f.notFound(ticketapi.OpUpdateByID)
	}
	r.Name = t.Name
	r.Status = t.Status
	r.Description = t.Description
	f.tickets[id] = r
	return r, nil
}

func (f *fakeRemote) DeleteByID(_ context.Context, id string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticketapi.OpDeleteByID]++
	if _, ok := f.tickets[id]; !ok {
		return nil, f.notFound(ticketapi.OpDeleteByID)
	}
	delete(f.tickets, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil, nil
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// recordingView captures every call made by the board.
type recordingView struct {
	mu      sync.Mutex
	events  []string
	renders [][]model.Ticket
	errs    []error
}

func (v *recordingView) ShowLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "show")
}

func (v *recordingView) HideLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "hide")
}

func (v *recordingView) RenderTickets(tickets []model.Ticket) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "render")
	v.renders = append(v.renders, tickets)
}

func (v *recordingView) ShowLoadError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "error")
	v.errs = append(v.errs, err)
}

func (v *recordingView) last() []model.Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.renders) == 0 {
		return nil
	}
	return v.renders[len(v.renders)-1]
}

func newManager() (*Manager, *fakeRemote, *recordingView) {
	remote := newFakeRemote()
	view := &recordingView{}
	return New(remote, view, zerolog.Nop()), remote, view
}

func findTicket(tickets []model.Ticket, id string) (model.Ticket, bool) {
	for _, t := range tickets {
		if t.ID == id {
			return t, true
		}
	}
	return model.Ticket{}, false
}

func TestLoadAllRendersWithLoadingIndicator(t *testing.T) {
	m, remote, view := newManager()
	remote.Create(context.Background(), model.Transport{Name: "a"})

	require.NoError(t, m.LoadAll(context.Background()))

	assert.Equal(t, []string{"show", "render", "hide"}, view.events)
	require.Len(t, view.last(), 1)
	assert.Equal(t, "a", view.last()[0].Name)
}

func TestLoadAllFailureHidesLoadingAndReturnsError(t *testing.T) {
	m, remote, view := newManager()
	remote.failOn[ticketapi.OpAllTickets] = true

	err := m.LoadAll(context.Background())
	require.Error(t, err)
	assert.True(t, ticketapi.IsRemoteError(err))
	assert.Equal(t, []string{"show", "error", "hide"}, view.events)
}

func TestCreateRefreshesBoard(t *testing.T) {
	m, remote, view := newManager()

	created, err := m.Create(context.Background(), model.Fields{Name: "Buy milk", Description: "2%"})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Created.IsZero())
	assert.Equal(t, 1, remote.count(ticketapi.OpAllTickets))

	got, ok := findTicket(view.last(), created.ID)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", got.Name)
	assert.Equal(t, "2%", got.Description)
	assert.False(t, got.Status)
}

func TestFailedWriteSkipsRefresh(t *testing.T) {
	tests := []struct {
		name string
		op   string
		run  func(m *Manager) error
	}{
		{"create", ticketapi.OpCreateTicket, func(m *Manager) error {
			_, err := m.Create(context.Background(), model.Fields{Name: "x"})
			return err
		}},
		{"update", ticketapi.OpUpdateByID, func(m *Manager) error {
			_, err := m.Update(context.Background(), "1", model.Fields{Name: "x"})
			return err
		}},
		{"toggle", ticketapi.OpUpdateByID, func(m *Manager) error {
			_, err := m.ToggleStatus(context.Background(), "1")
			return err
		}},
		{"delete-missing", "", func(m *Manager) error {
			_, err := m.Delete(context.Background(), "missing")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, remote, view := newManager()
			remote.Create(context.Background(), model.Transport{Name: "seed"})
			if tt.op != "" {
				remote.failOn[tt.op] = true
			}

			err := tt.run(m)
			require.Error(t, err)
			assert.True(t, ticketapi.IsRemoteError(err))
			assert.Zero(t, remote.count(ticketapi.OpAllTickets))
			assert.Empty(t, view.events)
		})
	}
}

func TestToggleStatusFlipsOnNextLoad(t *testing.T) {
	m, remote, view := newManager()
	seed, _ := remote.Create(context.Background(), model.Transport{Name: "t", Description: "d"})

	toggled, err := m.ToggleStatus(context.Background(), seed.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Status)

	got, ok := findTicket(view.last(), seed.ID)
	require.True(t, ok)
	assert.True(t, got.Status)
	assert.Equal(t, "t", got.Name)
	assert.Equal(t, "d", got.Description)

	_, err = m.ToggleStatus(context.Background(), seed.ID)
	require.NoError(t, err)
	got, _ = findTicket(view.last(), seed.ID)
	assert.False(t, got.Status)
}

func TestToggleStatusReadsBeforeWriting(t *testing.T) {
	m, remote, _ := newManager()
	seed, _ := remote.Create(context.Background(), model.Transport{Name: "t"})

	_, err := m.ToggleStatus(context.Background(), seed.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, remote.count(ticketapi.OpTicketByID))
	assert.Equal(t, 1, remote.count(ticketapi.OpUpdateByID))
}

func TestToggleStatusMissingTicket(t *testing.T) {
	m, remote, _ := newManager()

	_, err := m.ToggleStatus(context.Background(), "nope")
	require.Error(t, err)
	assert.Zero(t, remote.count(ticketapi.OpUpdateByID))
}

func TestDeleteRemovesFromNextLoad(t *testing.T) {
	m, remote, view := newManager()
	a, _ := remote.Create(context.Background(), model.Transport{Name: "a"})
	b, _ := remote.Create(context.Background(), model.Transport{Name: "b"})

	payload, err := m.Delete(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, payload)

	_, ok := findTicket(view.last(), a.ID)
	assert.False(t, ok)
	_, ok = findTicket(view.last(), b.ID)
	assert.True(t, ok)
}

func TestDeleteMissingLeavesListUnchanged(t *testing.T) {
	m, remote, _ := newManager()
	remote.Create(context.Background(), model.Transport{Name: "a"})

	_, err := m.Delete(context.Background(), "missing")
	require.Error(t, err)

	records, err := remote.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUpdateNameOnlyKeepsOtherFields(t *testing.T) {
	m, _, _ := newManager()
	created, err := m.Create(context.Background(), model.Fields{Name: "A", Description: "desc"})
	require.NoError(t, err)

	current, err := m.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	f := current.Fields()
	f.Name = "A renamed"

	_, err = m.Update(context.Background(), created.ID, f)
	require.NoError(t, err)

	got, err := m.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A renamed", got.Name)
	assert.Equal(t, "desc", got.Description)
	assert.False(t, got.Status)
	assert.Equal(t, created.Created.UnixMilli(), got.Created.UnixMilli())
}

func TestRefreshFailureAfterWriteKeepsWriteResult(t *testing.T) {
	m, remote, view := newManager()
	remote.failOn[ticketapi.OpAllTickets] = true

	created, err := m.Create(context.Background(), model.Fields{Name: "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"show", "error", "hide"}, view.events)
}

func TestGetByIDPropagatesError(t *testing.T) {
	m, _, _ := newManager()

	_, err := m.GetByID(context.Background(), "missing")
	var remoteErr *ticketapi.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
}
