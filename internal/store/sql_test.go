package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/store"
	"github.com/Madmaxim22/HelpDesk/tests/testutil"
)

func TestCreateAssignsIDAndCreated(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	r, err := s.CreateTicket(ctx, model.Transport{ID: "client-id", Name: "Buy milk", Description: "2%"})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.NotEqual(t, "client-id", r.ID)
	assert.NotZero(t, r.Created)
	assert.False(t, r.Status)

	got, err := s.GetTicket(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestCreateRequiresName(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.CreateTicket(context.Background(), model.Transport{Name: "  "})
	assert.True(t, errors.Is(err, store.ErrInvalid))
}

func TestListKeepsCreationOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		r, err := s.CreateTicket(ctx, model.Transport{Name: name})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	records, err := s.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, ids[i], r.ID)
	}
}

func TestListEmpty(t *testing.T) {
	s := testutil.NewTestStore(t)

	records, err := s.ListTickets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdateKeepsCreated(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	r, err := s.CreateTicket(ctx, model.Transport{Name: "a", Description: "d"})
	require.NoError(t, err)

	updated, err := s.UpdateTicket(ctx, r.ID, model.Transport{Name: "b", Description: "d", Status: true})
	require.NoError(t, err)

	assert.Equal(t, "b", updated.Name)
	assert.True(t, updated.Status)
	assert.Equal(t, r.Created, updated.Created)
}

func TestUpdateMissing(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.UpdateTicket(context.Background(), "nope", model.Transport{Name: "x"})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestDelete(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	r, err := s.CreateTicket(ctx, model.Transport{Name: "a"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTicket(ctx, r.ID))

	_, err = s.GetTicket(ctx, r.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = s.DeleteTicket(ctx, r.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestReopenDoesNotReapplyMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.CreateTicket(ctx, model.Transport{Name: "persisted"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	records, err := s.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "persisted", records[0].Name)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := store.Open("mysql", "dsn")
	assert.Error(t, err)
}

func TestConcurrentCreatesGetDistinctPositions(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateTicket(ctx, model.Transport{Name: "concurrent"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	first, err := s.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, first, n)

	second, err := s.ListTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
