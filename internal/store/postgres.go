package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ICTylor/json-to-relational/internal/db"
	"github.com/ICTylor/json-to-relational/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool  db.Pool
	stmts statements
	stage stage
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, persistenceErr("open", eris.Wrap(err, "postgres: parse config"))
	}

	// One writer per run; a small pool is enough.
	maxConns := int32(2)
	if poolCfg != nil && poolCfg.MaxConns > 0 {
		maxConns = poolCfg.MaxConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, persistenceErr("open", eris.Wrap(err, "postgres: create pool"))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, persistenceErr("open", eris.Wrap(err, "postgres: ping"))
	}
	return newPostgresStore(pool, model.DefaultRegistry()), nil
}

func newPostgresStore(pool db.Pool, reg *model.Registry) *PostgresStore {
	return &PostgresStore{pool: pool, stmts: newStatements(db.Postgres, reg)}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.stmts.schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return persistenceErr("ensure schema", eris.Wrap(err, "postgres: create table"))
		}
	}
	return nil
}

func (s *PostgresStore) Persist(g *model.Graph) error {
	return s.stage.add(g)
}

func (s *PostgresStore) Commit(ctx context.Context) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, persistenceErr("commit", eris.Wrap(err, "postgres: begin tx"))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	w := pgxWriter{tx: tx}
	for _, g := range s.stage.graphs {
		if err := writeGraph(ctx, w, s.stmts, g); err != nil {
			return 0, persistenceErr("commit", eris.Wrap(err, "postgres"))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, persistenceErr("commit", eris.Wrap(err, "postgres: commit tx"))
	}

	n := len(s.stage.graphs)
	s.stage.reset()
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.stage.reset()
	s.pool.Close()
	return nil
}

type pgxWriter struct {
	tx pgx.Tx
}

func (w pgxWriter) exec(ctx context.Context, query string, args ...any) error {
	_, err := w.tx.Exec(ctx, query, args...)
	return err
}

func (w pgxWriter) queryKey(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := w.tx.QueryRow(ctx, query, args...).Scan(&id)
	return id, err
}
