package db

import (
	"fmt"
	"strings"

	"github.com/ICTylor/json-to-relational/internal/model"
)

// UpsertSQL builds INSERT ... ON CONFLICT ... DO UPDATE for one row of t.
// Arguments bind to t.InsertColumns in order. The conflict target is
// t.ConflictColumn; every other inserted column is updated. When
// returning is set the statement yields the row's primary key, for both
// freshly inserted and updated rows.
func UpsertSQL(d Dialect, t *model.Table, returning bool) string {
	cols := t.InsertColumns()
	conflict := t.ConflictColumn()

	var setClauses []string
	for _, col := range cols {
		if col == conflict {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", quote(col), quote(col)))
	}

	action := "DO NOTHING"
	if len(setClauses) > 0 {
		action = "DO UPDATE SET " + strings.Join(setClauses, ", ")
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		quote(t.Name),
		quoteAndJoin(cols),
		d.placeholders(len(cols)),
		quote(conflict),
		action,
	)
	if returning {
		stmt += " RETURNING " + quote(t.Key)
	}
	return stmt
}
