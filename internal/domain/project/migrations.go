package project

import (
	"context"
	"fmt"
)

const schemaVersion = 1

// Both dialects accept this DDL; timestamps are Unix millis
const schemaV1 = `
CREATE TABLE IF NOT EXISTS projects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    code       TEXT NOT NULL DEFAULT '',
    test_code  TEXT NOT NULL DEFAULT '',
    language   TEXT NOT NULL DEFAULT 'javascript'
               CHECK(language IN ('javascript','typescript')),
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`

const indexV1 = `CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name)`

func (s *SQLStore) migrate(ctx context.Context) error {
	if s.driver == DriverSQLite {
		if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			return err
		}
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	var current int
	if err := s.db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{schemaV1, indexV1} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), schemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}
