package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// schemaVersionTable is created before any migration runs so the current
// version can be read the same way on every driver.
const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)`

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1, and each
// statement must be valid for both SQLite and PostgreSQL.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS tickets (
	id          TEXT PRIMARY KEY,
	seq         BIGINT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      BOOLEAN NOT NULL DEFAULT FALSE,
	created     BIGINT NOT NULL
)`,
	},
	{
		version: 2,
		sql:     `CREATE INDEX IF NOT EXISTS idx_tickets_seq ON tickets(seq)`,
	},
	{
		version: 3,
		sql:     `CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_seq_unique ON tickets(seq)`,
	},
}
