package schema

// Database is the in-memory View built by Builder.
type Database struct {
	name   string
	tables []*table
	byName map[string]*table
}

var _ View = (*Database)(nil)

// Name implements View.
func (d *Database) Name() string { return d.name }

// Table implements View.
func (d *Database) Table(name string) (Table, bool) {
	t, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// MustTable returns the named table or panics. Intended for fixtures and
// tests where the schema is known statically.
func (d *Database) MustTable(name string) Table {
	t, ok := d.byName[name]
	if !ok {
		panic("schema: unknown table " + name)
	}
	return t
}

// Tables implements View.
func (d *Database) Tables() []Table {
	out := make([]Table, len(d.tables))
	for i, t := range d.tables {
		out[i] = t
	}
	return out
}

// ForeignKeys returns every foreign key in the database in declaration order.
func (d *Database) ForeignKeys() []ForeignKey {
	var fks []ForeignKey
	for _, t := range d.tables {
		fks = append(fks, t.foreignKeys...)
	}
	return fks
}

type table struct {
	name        string
	columns     []*column
	byName      map[string]*column
	primaryKey  []Column
	foreignKeys []ForeignKey
}

func (t *table) Name() string { return t.name }

func (t *table) Columns() []Column {
	out := make([]Column, len(t.columns))
	for i, c := range t.columns {
		out[i] = c
	}
	return out
}

func (t *table) Column(name string) Column {
	c, ok := t.byName[name]
	if !ok {
		return nil
	}
	return c
}

func (t *table) Constraint() Constraint { return t }

func (t *table) PrimaryKey() []Column { return t.primaryKey }

func (t *table) ForeignKeys() []ForeignKey { return t.foreignKeys }

func (t *table) String() string { return t.name }

type column struct {
	name     string
	typ      Type
	table    *table
	children []Column
}

func (c *column) Name() string { return c.name }

func (c *column) Type() Type { return c.typ }

func (c *column) Table() Table { return c.table }

func (c *column) Children() []Column { return c.children }

func (c *column) String() string { return c.table.name + "." + c.name }
