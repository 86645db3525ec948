package db

import (
	"fmt"
	"strings"

	"github.com/ICTylor/json-to-relational/internal/model"
)

// CreateTableSQL renders an idempotent CREATE TABLE statement for t.
func CreateTableSQL(d Dialect, t *model.Table) string {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		defs = append(defs, columnDef(d, t, c))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quote(t.Name), strings.Join(defs, ",\n\t"))
}

// SchemaSQL renders the CREATE TABLE statements for every table of reg in
// dependency order.
func SchemaSQL(d Dialect, reg *model.Registry) []string {
	tables := reg.Tables()
	stmts := make([]string, len(tables))
	for i, t := range tables {
		stmts[i] = CreateTableSQL(d, t)
	}
	return stmts
}

func columnDef(d Dialect, t *model.Table, c model.Column) string {
	name := quote(c.Name)
	switch {
	case c.Name == t.Key && t.Generated:
		return name + " " + d.generatedKey
	case c.Name == t.Key:
		return name + " " + d.types[c.Type] + " PRIMARY KEY"
	case t.ForeignKey != nil && c.Name == t.ForeignKey.Column:
		fk := t.ForeignKey
		def := name + " " + d.types[c.Type] + " NOT NULL"
		if fk.Unique {
			def += " UNIQUE"
		}
		return def + fmt.Sprintf(" REFERENCES %s (%s)", quote(fk.RefTable), quote(fk.RefColumn))
	default:
		return name + " " + d.types[c.Type]
	}
}
