package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ICTylor/json-to-relational/internal/db"
	"github.com/ICTylor/json-to-relational/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db    *sql.DB
	stmts statements
	stage stage
}

// NewSQLite opens a SQLite database at the given path with foreign keys enforced.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, persistenceErr("open", eris.Wrap(err, "sqlite: open"))
	}
	// Pragmas are per connection; a single connection keeps them in force.
	conn.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, persistenceErr("open", eris.Wrapf(err, "sqlite: exec %s", pragma))
		}
	}
	return newSQLiteStore(conn, model.DefaultRegistry()), nil
}

func newSQLiteStore(conn *sql.DB, reg *model.Registry) *SQLiteStore {
	return &SQLiteStore{db: conn, stmts: newStatements(db.SQLite, reg)}
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.stmts.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return persistenceErr("ensure schema", eris.Wrap(err, "sqlite: create table"))
		}
	}
	return nil
}

func (s *SQLiteStore) Persist(g *model.Graph) error {
	return s.stage.add(g)
}

func (s *SQLiteStore) Commit(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, persistenceErr("commit", eris.Wrap(err, "sqlite: begin tx"))
	}
	defer tx.Rollback() //nolint:errcheck

	w := sqlWriter{tx: tx}
	for _, g := range s.stage.graphs {
		if err := writeGraph(ctx, w, s.stmts, g); err != nil {
			return 0, persistenceErr("commit", eris.Wrap(err, "sqlite"))
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, persistenceErr("commit", eris.Wrap(err, "sqlite: commit tx"))
	}

	n := len(s.stage.graphs)
	s.stage.reset()
	return n, nil
}

func (s *SQLiteStore) Close() error {
	s.stage.reset()
	return s.db.Close()
}

type sqlWriter struct {
	tx *sql.Tx
}

func (w sqlWriter) exec(ctx context.Context, query string, args ...any) error {
	_, err := w.tx.ExecContext(ctx, query, args...)
	return err
}

func (w sqlWriter) queryKey(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := w.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}
