package ticketapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madmaxim22/HelpDesk/internal/model"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestListAllKeepsServiceOrder(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, OpAllTickets, r.URL.Query().Get("method"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`[
			{"id":"b","name":"second","status":true,"description":"","created":1700000000000},
			{"id":"a","name":"first","status":false,"description":"x","created":1600000000000}
		]`))
	})

	records, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.True(t, records[0].Status)
	assert.Equal(t, "a", records[1].ID)
	assert.Equal(t, int64(1600000000000), records[1].Created)
}

func TestListAllEmptyBodyIsEmptyList(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	records, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGetByIDEscapesID(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, OpTicketByID, r.URL.Query().Get("method"))
		assert.Equal(t, "a&b=c", r.URL.Query().Get("id"))
		w.Write([]byte(`{"id":"a&b=c","name":"n","status":false,"description":"d","created":1}`))
	})

	record, err := c.GetByID(context.Background(), "a&b=c")
	require.NoError(t, err)
	assert.Equal(t, "a&b=c", record.ID)
	assert.Equal(t, "n", record.Name)
}

func TestCreateSendsFieldsWithoutIDOrCreated(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, OpCreateTicket, r.URL.Query().Get("method"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, map[string]any{
			"name":        "Buy milk",
			"status":      false,
			"description": "2%",
		}, body)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"new-id","name":"Buy milk","status":false,"description":"2%","created":1700000000000}`))
	})

	record, err := c.Create(context.Background(), model.Transport{
		ID:          "ignored",
		Name:        "Buy milk",
		Description: "2%",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", record.ID)
	assert.NotZero(t, record.Created)
}

func TestUpdateSendsTransport(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, OpUpdateByID, r.URL.Query().Get("method"))
		assert.Equal(t, "42", r.URL.Query().Get("id"))

		var body model.Transport
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, model.Transport{ID: "42", Name: "n", Status: true, Description: "d"}, body)

		w.Write([]byte(`{"id":"42","name":"n","status":true,"description":"d","created":5}`))
	})

	record, err := c.Update(context.Background(), "42", model.Transport{
		ID: "42", Name: "n", Status: true, Description: "d",
	})
	require.NoError(t, err)
	assert.True(t, record.Status)
}

func TestDeleteNoContentIsEmptyResult(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, OpDeleteByID, r.URL.Query().Get("method"))
		w.WriteHeader(http.StatusNoContent)
	})

	payload, err := c.DeleteByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestDeleteWithJSONBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"deleted":"1"}`))
	})

	payload, err := c.DeleteByID(context.Background(), "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":"1"}`, string(payload))
}

func TestDeleteMethodOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithDeleteMethod("delete"))
	_, err := c.DeleteByID(context.Background(), "1")
	require.NoError(t, err)
}

func TestNonSuccessStatusIsRemoteError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ticket not found", http.StatusNotFound)
	})

	_, err := c.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsRemoteError(err))

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
	assert.Equal(t, OpTicketByID, remoteErr.Op)
	assert.Equal(t, "ticket not found", remoteErr.Body)
	assert.Contains(t, err.Error(), "status 404")
}

func TestTransportFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).ListAll(context.Background())
	require.Error(t, err)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Zero(t, remoteErr.StatusCode)
	assert.NotNil(t, remoteErr.Unwrap())
}

func TestMalformedBodyIsRemoteError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := c.ListAll(context.Background())
	assert.True(t, IsRemoteError(err))
}

func TestTokenIsSentAsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithToken("secret")).ListAll(context.Background())
	require.NoError(t, err)
}

func TestSingleRequestPerCall(t *testing.T) {
	calls := 0
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestHTTPClientOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var seen int
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen++
		return http.DefaultTransport.RoundTrip(r)
	})}

	for _, opts := range [][]Option{
		{WithTimeout(5 * time.Second), WithHTTPClient(hc)},
		{WithHTTPClient(hc), WithTimeout(5 * time.Second)},
	} {
		c := NewClient(srv.URL, opts...)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
		_, err := c.ListAll(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 2, seen)
	assert.Zero(t, hc.Timeout)
}
