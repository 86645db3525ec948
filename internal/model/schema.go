package model

// ColumnType is the portable type of a column; dialects map it to SQL.
type ColumnType string

const (
	ColumnInteger ColumnType = "integer"
	ColumnText    ColumnType = "text"
	ColumnReal    ColumnType = "real"
)

// Column describes one table column.
type Column struct {
	Name string     `yaml:"name"`
	Type ColumnType `yaml:"type"`
}

// ForeignKey links a child column to its parent's primary key. Unique
// foreign keys make the relation one-to-one.
type ForeignKey struct {
	Column    string `yaml:"column"`
	RefTable  string `yaml:"ref_table"`
	RefColumn string `yaml:"ref_column"`
	Unique    bool   `yaml:"unique"`
}

// Table is the structural definition of one relational table.
type Table struct {
	Name string `yaml:"name"`
	// JSONKey is the key under which the table's object nests in its
	// parent's JSON; empty for the root table.
	JSONKey string `yaml:"json_key,omitempty"`
	// Key is the primary key column. Generated keys are assigned by the store.
	Key        string      `yaml:"key"`
	Generated  bool        `yaml:"generated"`
	Columns    []Column    `yaml:"columns"`
	ForeignKey *ForeignKey `yaml:"foreign_key,omitempty"`
}

// InsertColumns returns the columns written on insert: every column except
// a generated primary key.
func (t *Table) InsertColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if t.Generated && c.Name == t.Key {
			continue
		}
		cols = append(cols, c.Name)
	}
	return cols
}

// ConflictColumn returns the column that identifies an existing row on
// upsert: the unique foreign key for children, the primary key otherwise.
func (t *Table) ConflictColumn() string {
	if t.ForeignKey != nil && t.ForeignKey.Unique {
		return t.ForeignKey.Column
	}
	return t.Key
}

var (
	UserTable = Table{
		Name: "user",
		Key:  "id",
		Columns: []Column{
			{Name: "id", Type: ColumnInteger},
			{Name: "username", Type: ColumnText},
			{Name: "email", Type: ColumnText},
			{Name: "phone", Type: ColumnText},
			{Name: "website", Type: ColumnText},
			{Name: "name", Type: ColumnText},
		},
	}

	AddressTable = Table{
		Name:      "address",
		JSONKey:   "address",
		Key:       "id",
		Generated: true,
		Columns: []Column{
			{Name: "id", Type: ColumnInteger},
			{Name: "street", Type: ColumnText},
			{Name: "suite", Type: ColumnText},
			{Name: "city", Type: ColumnText},
			{Name: "zipcode", Type: ColumnText},
			{Name: "user_id", Type: ColumnInteger},
		},
		ForeignKey: &ForeignKey{Column: "user_id", RefTable: "user", RefColumn: "id", Unique: true},
	}

	GeoTable = Table{
		Name:      "geo",
		JSONKey:   "geo",
		Key:       "id",
		Generated: true,
		Columns: []Column{
			{Name: "id", Type: ColumnInteger},
			{Name: "lat", Type: ColumnReal},
			{Name: "lng", Type: ColumnReal},
			{Name: "address_id", Type: ColumnInteger},
		},
		ForeignKey: &ForeignKey{Column: "address_id", RefTable: "address", RefColumn: "id", Unique: true},
	}

	CompanyTable = Table{
		Name:      "company",
		JSONKey:   "company",
		Key:       "id",
		Generated: true,
		Columns: []Column{
			{Name: "id", Type: ColumnInteger},
			{Name: "name", Type: ColumnText},
			{Name: "catchPhrase", Type: ColumnText},
			{Name: "bs", Type: ColumnText},
			{Name: "user_id", Type: ColumnInteger},
		},
		ForeignKey: &ForeignKey{Column: "user_id", RefTable: "user", RefColumn: "id", Unique: true},
	}
)

// Registry is an indexed, read-only set of table definitions. Tables are
// kept in dependency order: every parent precedes its children.
type Registry struct {
	tables []*Table
	byName map[string]*Table
	byKey  map[string]*Table
}

// NewRegistry indexes tables by name and by nested JSON key. Tables must be
// given parents first.
func NewRegistry(tables ...*Table) *Registry {
	r := &Registry{
		tables: tables,
		byName: make(map[string]*Table, len(tables)),
		byKey:  make(map[string]*Table, len(tables)),
	}
	for _, t := range tables {
		r.byName[t.Name] = t
		if t.JSONKey != "" {
			r.byKey[t.JSONKey] = t
		}
	}
	return r
}

// DefaultRegistry returns the registry of the four user tables.
func DefaultRegistry() *Registry {
	return NewRegistry(&UserTable, &AddressTable, &GeoTable, &CompanyTable)
}

// Tables returns the tables in dependency order.
func (r *Registry) Tables() []*Table {
	return r.tables
}

// ByName returns the table with the given name, or nil if not found.
func (r *Registry) ByName(name string) *Table {
	return r.byName[name]
}

// ByKey returns the table nested under the given JSON key, or nil if not found.
func (r *Registry) ByKey(key string) *Table {
	return r.byKey[key]
}
