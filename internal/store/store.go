package store

import (
	"context"
	"errors"

	"github.com/Madmaxim22/HelpDesk/internal/model"
)

// ErrNotFound is returned when no ticket has the requested id.
var ErrNotFound = errors.New("ticket not found")

// ErrInvalid is returned when a ticket is missing a required field.
var ErrInvalid = errors.New("invalid ticket")

// Store defines the persistence interface behind the ticket service.
type Store interface {
	// ListTickets returns all tickets in creation order.
	ListTickets(ctx context.Context) ([]model.Record, error)

	// GetTicket returns the ticket with the given id or ErrNotFound.
	GetTicket(ctx context.Context, id string) (model.Record, error)

	// CreateTicket assigns an id and creation time and stores the ticket.
	CreateTicket(ctx context.Context, t model.Transport) (model.Record, error)

	// UpdateTicket replaces name, description and status. The creation
	// time is never changed.
	UpdateTicket(ctx context.Context, id string, t model.Transport) (model.Record, error)

	// DeleteTicket removes the ticket or returns ErrNotFound.
	DeleteTicket(ctx context.Context, id string) error

	Close() error
}
