package model

import "time"

// Fields is the bag of values a Ticket is constructed from.
// Zero values stand in for absent fields.
type Fields struct {
	ID          string
	Name        string
	Description string
	Status      bool
	Created     time.Time
}

// Ticket is a short task card on the board.
type Ticket struct {
	// ID is assigned by the ticket service and never changes.
	ID string

	// Name is the short human-readable title.
	Name string

	// Description is the free-form body. It may be empty.
	Description string

	// Status is true once the ticket is done.
	Status bool

	// Created is fixed at construction time.
	Created time.Time
}

// Transport is the wire projection of a ticket. The service owns the
// creation time, so it is never sent on writes.
type Transport struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      bool   `json:"status"`
	Description string `json:"description"`
}

// Record is a ticket as the service returns it on reads.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      bool   `json:"status"`
	Description string `json:"description"`

	// Created is milliseconds since the Unix epoch.
	Created int64 `json:"created"`
}

// New builds a Ticket from f. A zero Created defaults to the current time.
// No validation is performed; the service rejects malformed tickets.
func New(f Fields) Ticket {
	created := f.Created
	if created.IsZero() {
		created = time.Now()
	}
	return Ticket{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Status:      f.Status,
		Created:     created,
	}
}

// Clone returns an independent copy of t. Defaults are not reapplied, so
// a zero Created stays zero.
func (t Ticket) Clone() Ticket {
	c := t
	return c
}

// Fields returns the construction bag that reproduces t.
func (t Ticket) Fields() Fields {
	return Fields{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Created:     t.Created,
	}
}

// Transport returns the wire projection of t.
func (t Ticket) Transport() Transport {
	return Transport{
		ID:          t.ID,
		Name:        t.Name,
		Status:      t.Status,
		Description: t.Description,
	}
}

// StatusLabel returns the label shown on status buttons.
func (t Ticket) StatusLabel() string {
	if t.Status {
		return "Done"
	}
	return "Not done"
}

// Ticket reconstructs the entity from a service record.
func (r Record) Ticket() Ticket {
	var created time.Time
	if r.Created > 0 {
		created = time.UnixMilli(r.Created)
	}
	return New(Fields{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Created:     created,
	})
}

// Transport returns the wire projection of r.
func (r Record) Transport() Transport {
	return Transport{
		ID:          r.ID,
		Name:        r.Name,
		Status:      r.Status,
		Description: r.Description,
	}
}

// Tickets converts service records to entities, keeping their order.
func Tickets(records []Record) []Ticket {
	tickets := make([]Ticket, len(records))
	for i, r := range records {
		tickets[i] = r.Ticket()
	}
	return tickets
}
