// Package pipeline runs one extract, map and load pass over the user collection.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ICTylor/json-to-relational/internal/fetcher"
	"github.com/ICTylor/json-to-relational/internal/mapper"
	"github.com/ICTylor/json-to-relational/internal/store"
)

// OpenFunc opens the store a run writes to.
type OpenFunc func(ctx context.Context) (store.Store, error)

// Pipeline wires a source, the mapper and a store together.
type Pipeline struct {
	source fetcher.Source
	mapper *mapper.Mapper
	open   OpenFunc
}

// New creates a new Pipeline. The store is opened lazily by Run, after the
// source has been fetched.
func New(src fetcher.Source, m *mapper.Mapper, open OpenFunc) *Pipeline {
	return &Pipeline{source: src, mapper: m, open: open}
}

// Result summarizes a run.
type Result struct {
	RunID     string
	Fetched   int
	Committed int
	Dropped   int
	Duration  time.Duration
}

// Run fetches every user, maps each into a record graph and commits all
// graphs in one transaction. Any failure leaves the store untouched.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting data extraction")

	objects, err := p.source.Fetch(ctx)
	if err != nil {
		return result, eris.Wrap(err, "pipeline: fetch")
	}
	result.Fetched = len(objects)

	log.Info("proceeding with relational database creation", zap.Int("records", result.Fetched))

	st, err := p.open(ctx)
	if err != nil {
		var pe *store.PersistenceError
		if !errors.As(err, &pe) {
			err = &store.PersistenceError{Op: "open", Err: err}
		}
		return result, eris.Wrap(err, "pipeline: open store")
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn("pipeline: failed to close store", zap.Error(closeErr))
		}
	}()

	if err := st.EnsureSchema(ctx); err != nil {
		return result, eris.Wrap(err, "pipeline: ensure schema")
	}

	for i, obj := range objects {
		g, err := p.mapper.Map(obj)
		if err != nil {
			return result, eris.Wrapf(err, "pipeline: map record %d", i)
		}
		if len(g.Dropped) > 0 {
			log.Debug("pipeline: dropped list fields",
				zap.Int64("user_id", g.User.ID),
				zap.Strings("fields", g.Dropped),
			)
		}
		result.Dropped += len(g.Dropped)

		if err := st.Persist(g); err != nil {
			return result, eris.Wrapf(err, "pipeline: stage record %d", i)
		}
	}

	n, err := st.Commit(ctx)
	if err != nil {
		return result, eris.Wrap(err, "pipeline: commit")
	}
	result.Committed = n
	result.Duration = time.Since(start)

	log.Info("all done",
		zap.Int("committed", result.Committed),
		zap.Int("dropped_fields", result.Dropped),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// Stage names the step of a run that produced err, or "" when err came
// from none of them.
func Stage(err error) string {
	var (
		fetchErr   *fetcher.FetchError
		parseErr   *fetcher.ParseError
		schemaErr  *mapper.SchemaMismatchError
		fieldErr   *mapper.FieldMismatchError
		persistErr *store.PersistenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &schemaErr), errors.As(err, &fieldErr):
		return "map"
	case errors.As(err, &persistErr):
		return "persist"
	default:
		return ""
	}
}
