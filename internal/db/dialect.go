package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ICTylor/json-to-relational/internal/model"
)

// Dialect captures the SQL differences between the supported stores.
type Dialect struct {
	Name         string
	types        map[model.ColumnType]string
	generatedKey string
	positional   bool
}

var (
	SQLite = Dialect{
		Name: "sqlite",
		types: map[model.ColumnType]string{
			model.ColumnInteger: "INTEGER",
			model.ColumnText:    "TEXT",
			model.ColumnReal:    "REAL",
		},
		generatedKey: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}

	Postgres = Dialect{
		Name: "postgres",
		types: map[model.ColumnType]string{
			model.ColumnInteger: "BIGINT",
			model.ColumnText:    "TEXT",
			model.ColumnReal:    "DOUBLE PRECISION",
		},
		generatedKey: "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY",
		positional:   true,
	}
)

// LookupDialect returns the dialect for a store driver name.
func LookupDialect(driver string) (Dialect, error) {
	switch driver {
	case SQLite.Name:
		return SQLite, nil
	case Postgres.Name:
		return Postgres, nil
	default:
		return Dialect{}, eris.Errorf("db: unsupported dialect %q", driver)
	}
}

// Placeholder returns the bind marker for the i-th (1-based) argument.
func (d Dialect) Placeholder(i int) string {
	if d.positional {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func (d Dialect) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = d.Placeholder(i + 1)
	}
	return strings.Join(marks, ", ")
}

// quote quotes an identifier. "user" is reserved in Postgres, so every
// identifier is quoted in both dialects.
func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ", ")
}
