package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	before := time.Now()
	tk := New(Fields{ID: "1", Name: "Buy milk", Description: "2%"})
	after := time.Now()

	assert.False(t, tk.Status)
	assert.False(t, tk.Created.Before(before))
	assert.False(t, tk.Created.After(after))
}

func TestNewKeepsExplicitValues(t *testing.T) {
	created := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	tk := New(Fields{ID: "1", Name: "n", Status: true, Created: created})

	assert.True(t, tk.Status)
	assert.Equal(t, created, tk.Created)
}

func TestCloneIsIndependent(t *testing.T) {
	orig := New(Fields{ID: "1", Name: "original", Description: "d"})
	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Name = "changed"
	clone.Status = true

	assert.Equal(t, "original", orig.Name)
	assert.False(t, orig.Status)
}

func TestCloneKeepsZeroCreated(t *testing.T) {
	orig := Ticket{ID: "1", Name: "VPN"}
	clone := orig.Clone()

	assert.Equal(t, orig, clone)
	assert.True(t, clone.Created.IsZero())
}

func TestTransportOmitsCreated(t *testing.T) {
	tk := New(Fields{ID: "42", Name: "n", Description: "d", Status: true})

	data, err := json.Marshal(tk.Transport())
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Len(t, keys, 4)
	assert.NotContains(t, keys, "created")
	for _, k := range []string{"id", "name", "status", "description"} {
		assert.Contains(t, keys, k)
	}
}

func TestTransportRoundTrip(t *testing.T) {
	orig := New(Fields{
		ID:          "7",
		Name:        "write report",
		Description: "quarterly",
		Created:     time.UnixMilli(1700000000000),
	})

	tr := orig.Transport()
	rebuilt := New(Fields{
		ID:          tr.ID,
		Name:        tr.Name,
		Description: tr.Description,
		Status:      tr.Status,
		Created:     orig.Created,
	})

	assert.Equal(t, orig, rebuilt)
}

func TestRecordTicket(t *testing.T) {
	r := Record{ID: "a", Name: "n", Description: "d", Status: true, Created: 1700000000000}
	tk := r.Ticket()

	assert.Equal(t, "a", tk.ID)
	assert.True(t, tk.Status)
	assert.Equal(t, int64(1700000000000), tk.Created.UnixMilli())
	assert.Equal(t, r.Transport(), tk.Transport())
}

func TestRecordWithoutCreatedDefaultsToNow(t *testing.T) {
	tk := Record{ID: "a", Name: "n"}.Ticket()
	assert.WithinDuration(t, time.Now(), tk.Created, time.Second)
}

func TestTicketsKeepsOrder(t *testing.T) {
	tickets := Tickets([]Record{{ID: "b"}, {ID: "a"}, {ID: "c"}})
	require.Len(t, tickets, 3)
	assert.Equal(t, "b", tickets[0].ID)
	assert.Equal(t, "a", tickets[1].ID)
	assert.Equal(t, "c", tickets[2].ID)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Not done", New(Fields{}).StatusLabel())
	assert.Equal(t, "Done", New(Fields{Status: true}).StatusLabel())
}
