package database

import (
	"fmt"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "caffeine_event: dose log",
		SQL: `
CREATE TABLE caffeine_event (
    id          TEXT PRIMARY KEY,
    timestamp   BIGINT NOT NULL,
    description TEXT NOT NULL,
    amount      DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
    cost        INTEGER NOT NULL DEFAULT 0,
    source      TEXT NOT NULL DEFAULT 'manual'
);

CREATE INDEX idx_event_timestamp ON caffeine_event(timestamp);
`,
	},
	{
		Version:     2,
		Description: "custom_drink: user defined drinks",
		SQL: `
CREATE TABLE custom_drink (
    name_key     TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    mg_per_100ml DOUBLE PRECISION NOT NULL CHECK (mg_per_100ml > 0),
    created_at   BIGINT NOT NULL
);
`,
	},
}

func (c *Client) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  BIGINT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := c.db.QueryRow(c.rebind("SELECT COUNT(*) FROM schema_versions WHERE version = ?"), m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := c.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			c.rebind("INSERT INTO schema_versions (version, description, applied_at) VALUES (?, ?, ?)"),
			m.Version, m.Description, time.Now().UnixMilli(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (c *Client) SchemaVersion() (int, error) {
	var version int
	err := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
