package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Madmaxim22/HelpDesk/internal/model"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ticketRow is the database shape of a ticket.
type ticketRow struct {
	ID          string `db:"id"`
	Seq         int64  `db:"seq"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Status      bool   `db:"status"`
	Created     int64  `db:"created"`
}

func (r ticketRow) record() model.Record {
	return model.Record{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Created:     r.Created,
	}
}

// SQLStore implements Store on top of SQLite or PostgreSQL.
type SQLStore struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database identified by driver and dsn and runs any
// pending schema migrations. For SQLite, dsn is a file path or ":memory:".
func Open(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection keeps ":memory:" databases shared and
		// serialises writers.
		db.SetMaxOpenConns(1)

		// Enable WAL mode for better concurrent read performance.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	s := &SQLStore{db: db, driver: driver, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	return Open(DriverSQLite, dbPath)
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLStore) runMigrations() error {
	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	currentVersion := 0
	err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if _, err := s.db.Exec(
			s.db.Rebind("INSERT INTO schema_version (version) VALUES (?)"),
			m.version,
		); err != nil {
			return fmt.Errorf("recording migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ListTickets returns all tickets in creation order.
func (s *SQLStore) ListTickets(ctx context.Context) ([]model.Record, error) {
	var rows []ticketRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM tickets ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}

	records := make([]model.Record, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// GetTicket retrieves a single ticket by ID.
func (s *SQLStore) GetTicket(ctx context.Context, id string) (model.Record, error) {
	var row ticketRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT * FROM tickets WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, fmt.Errorf("getting ticket %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("getting ticket %s: %w", id, err)
	}
	return row.record(), nil
}

// CreateTicket inserts a new ticket with a fresh UUID and the current time.
func (s *SQLStore) CreateTicket(ctx context.Context, t model.Transport) (model.Record, error) {
	if strings.TrimSpace(t.Name) == "" {
		return model.Record{}, fmt.Errorf("ticket name must not be empty: %w", ErrInvalid)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Record{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// seq is MAX(seq)+1, so concurrent creates must not interleave. SQLite
	// already runs on a single connection; PostgreSQL needs the lock.
	if s.driver == DriverPostgres {
		if _, err := tx.ExecContext(ctx, "LOCK TABLE tickets IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return model.Record{}, fmt.Errorf("locking tickets: %w", err)
		}
	}

	var maxSeq int64
	if err := tx.GetContext(ctx, &maxSeq, "SELECT COALESCE(MAX(seq), 0) FROM tickets"); err != nil {
		return model.Record{}, fmt.Errorf("getting max seq: %w", err)
	}

	row := ticketRow{
		ID:          uuid.New().String(),
		Seq:         maxSeq + 1,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Created:     s.now().UnixMilli(),
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO tickets (id, seq, name, description, status, created)
		VALUES (:id, :seq, :name, :description, :status, :created)`,
		row,
	)
	if err != nil {
		return model.Record{}, fmt.Errorf("creating ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Record{}, fmt.Errorf("committing ticket: %w", err)
	}
	return row.record(), nil
}

// UpdateTicket updates an existing ticket by ID.
func (s *SQLStore) UpdateTicket(ctx context.Context, id string, t model.Transport) (model.Record, error) {
	if strings.TrimSpace(t.Name) == "" {
		return model.Record{}, fmt.Errorf("ticket name must not be empty: %w", ErrInvalid)
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE tickets SET name = ?, description = ?, status = ?
		WHERE id = ?`),
		t.Name, t.Description, t.Status, id,
	)
	if err != nil {
		return model.Record{}, fmt.Errorf("updating ticket %s: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return model.Record{}, fmt.Errorf("updating ticket %s: %w", id, ErrNotFound)
	}
	return s.GetTicket(ctx, id)
}

// DeleteTicket removes a ticket by ID.
func (s *SQLStore) DeleteTicket(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM tickets WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting ticket %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting ticket %s: %w", id, ErrNotFound)
	}
	return nil
}
