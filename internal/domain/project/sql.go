package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported SQL drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const projectColumns = `id, name, code, test_code, language, created_at, updated_at`

// SQLStore persists projects in SQLite or PostgreSQL
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// OpenSQL opens the database and runs migrations. For SQLite, use ":memory:"
// for an in-memory database.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("creating db directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection: writes serialize anyway and :memory: is per connection
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// NewSQLStore wraps an existing connection; the schema must already exist
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, driver: db.DriverName()}
}

func (s *SQLStore) Create(ctx context.Context, in Input) (*Project, error) {
	p, err := newProject(in)
	if err != nil {
		return nil, err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (:id, :name, :code, :test_code, :language, :created_at, :updated_at)`, p)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return p, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Project, error) {
	return s.getOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
}

func (s *SQLStore) GetByName(ctx context.Context, name string) (*Project, error) {
	return s.getOne(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ? ORDER BY id DESC LIMIT 1`, name)
}

func (s *SQLStore) getOne(ctx context.Context, query string, args ...interface{}) (*Project, error) {
	var p Project
	if err := s.db.GetContext(ctx, &p, s.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying project: %w", err)
	}
	return &p, nil
}

// List returns all projects, newest first
func (s *SQLStore) List(ctx context.Context) ([]Project, error) {
	projects := []Project{}
	if err := s.db.SelectContext(ctx, &projects, `SELECT `+projectColumns+` FROM projects ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *SQLStore) Update(ctx context.Context, id string, patch Patch) (*Project, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current Project
	err = tx.GetContext(ctx, &current, tx.Rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}

	updated, err := current.Apply(patch)
	if err != nil {
		return nil, err
	}

	_, err = tx.NamedExecContext(ctx, `
		UPDATE projects
		SET name = :name, code = :code, test_code = :test_code, language = :language, updated_at = :updated_at
		WHERE id = :id`, updated)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return &updated, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
