package store

import (
	"database/sql"
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
		Description: "Daily observations with labels",
		SQL: `
CREATE TABLE IF NOT EXISTS observations (
    location TEXT NOT NULL,
    date TEXT NOT NULL,
    temp_min REAL,
    temp_max REAL,
    temp_avg REAL,
    humidity REAL,
    rainfall REAL,
    sunshine REAL,
    wind_speed REAL,
    weather_condition TEXT NOT NULL,
    drought_risk TEXT NOT NULL,
    extreme_rain BOOLEAN NOT NULL DEFAULT FALSE,
    wind_status TEXT NOT NULL,
    missing TEXT,
    PRIMARY KEY (location, date)
);

CREATE INDEX IF NOT EXISTS idx_obs_date ON observations(date);
`,
	},
	{
		Version:     2,
		Description: "Monthly summaries",
		SQL: `
CREATE TABLE IF NOT EXISTS monthly_summaries (
    location TEXT NOT NULL,
    year INTEGER NOT NULL,
    month INTEGER NOT NULL,
    days INTEGER NOT NULL,
    temp_min REAL,
    temp_max REAL,
    temp_avg REAL,
    humidity REAL,
    rainfall REAL,
    sunshine REAL,
    wind_speed REAL,
    trend REAL,
    PRIMARY KEY (location, year, month)
);
`,
	},
}

func (s *Store) Migrate() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		s.logger.Debug("applying migration", "version", m.Version, "description", m.Description)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
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

func (s *Store) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
