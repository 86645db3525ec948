// Package store persists record graphs into a relational database.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ICTylor/json-to-relational/internal/db"
	"github.com/ICTylor/json-to-relational/internal/model"
)

// Store is the persistence gateway for record graphs.
type Store interface {
	// EnsureSchema creates the tables if they do not exist. Safe to call on every run.
	EnsureSchema(ctx context.Context) error

	// Persist stages a graph for the next Commit. Nothing is written yet.
	Persist(g *model.Graph) error

	// Commit writes every staged graph in one transaction and returns the
	// number of graphs written. On failure nothing is written.
	Commit(ctx context.Context) (int, error)

	// Close releases the database handle. Staged graphs are discarded.
	Close() error
}

// PersistenceError reports a failure to create the schema, stage a graph
// or commit the transaction.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// statements holds the SQL for one dialect, rendered once per store.
type statements struct {
	schema  []string
	user    string
	address string
	geo     string
	company string
}

func newStatements(d db.Dialect, reg *model.Registry) statements {
	return statements{
		schema:  db.SchemaSQL(d, reg),
		user:    db.UpsertSQL(d, reg.ByName(model.UserTable.Name), false),
		address: db.UpsertSQL(d, reg.ByName(model.AddressTable.Name), true),
		geo:     db.UpsertSQL(d, reg.ByName(model.GeoTable.Name), true),
		company: db.UpsertSQL(d, reg.ByName(model.CompanyTable.Name), true),
	}
}

// stage collects graphs between commits and rejects duplicate users.
type stage struct {
	graphs []*model.Graph
	users  map[int64]bool
}

func (s *stage) add(g *model.Graph) error {
	if g == nil || g.User == nil || g.Address == nil || g.Address.Geo == nil || g.Company == nil {
		return persistenceErr("persist", eris.New("incomplete record graph"))
	}
	if s.users == nil {
		s.users = make(map[int64]bool)
	}
	if s.users[g.User.ID] {
		return persistenceErr("persist", eris.Errorf("user %d already staged", g.User.ID))
	}
	s.users[g.User.ID] = true
	s.graphs = append(s.graphs, g)
	return nil
}

func (s *stage) reset() {
	s.graphs = nil
	s.users = nil
}

// txWriter abstracts the transaction handle of each backend.
type txWriter interface {
	exec(ctx context.Context, query string, args ...any) error
	queryKey(ctx context.Context, query string, args ...any) (int64, error)
}

// writeGraph upserts one graph parents first. The Geo's parent key is taken
// from the Address row written in the same transaction, so it is valid
// whether the address was inserted or updated.
func writeGraph(ctx context.Context, w txWriter, st statements, g *model.Graph) error {
	if err := w.exec(ctx, st.user, g.User.Values()...); err != nil {
		return eris.Wrapf(err, "upsert user %d", g.User.ID)
	}

	addrID, err := w.queryKey(ctx, st.address, g.Address.Values()...)
	if err != nil {
		return eris.Wrapf(err, "upsert address of user %d", g.User.ID)
	}
	g.Address.ID = addrID

	geo := g.Address.Geo
	geo.AddressID = addrID
	geoID, err := w.queryKey(ctx, st.geo, geo.Values()...)
	if err != nil {
		return eris.Wrapf(err, "upsert geo of user %d", g.User.ID)
	}
	geo.ID = geoID

	companyID, err := w.queryKey(ctx, st.company, g.Company.Values()...)
	if err != nil {
		return eris.Wrapf(err, "upsert company of user %d", g.User.ID)
	}
	g.Company.ID = companyID

	return nil
}
