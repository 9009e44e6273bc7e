package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/qscope/internal/schema"
)

var sqlTypes = map[schema.Type]string{
	schema.TypeString: "TEXT",
	schema.TypeInt:    "INTEGER",
	schema.TypeBool:   "BOOLEAN",
	schema.TypeNumber: "REAL",
	schema.TypeBytes:  "BLOB",
	schema.TypeArray:  "JSON",
	schema.TypeObject: "JSON",
}

// DDL renders one CREATE TABLE statement per table of view, in view order.
func DDL(view schema.View) []string {
	var stmts []string
	for _, table := range view.Tables() {
		var defs []string
		for _, col := range table.Columns() {
			def := quoteIdent(col.Name())
			if typ := sqlTypes[col.Type()]; typ != "" {
				def += " " + typ
			}
			defs = append(defs, def)
		}

		if pk := table.Constraint().PrimaryKey(); len(pk) > 0 {
			names := make([]string, len(pk))
			for i, col := range pk {
				names[i] = quoteIdent(col.Name())
			}
			defs = append(defs, "PRIMARY KEY ("+strings.Join(names, ", ")+")")
		}

		for _, fk := range table.Constraint().ForeignKeys() {
			defs = append(defs, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
				quoteIdent(fk.Name),
				quoteIdent(fk.ChildColumn),
				quoteIdent(fk.ParentTable),
				quoteIdent(fk.ParentColumn)))
		}

		stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table.Name()), strings.Join(defs, ", ")))
	}
	return stmts
}

// CreateTables creates every table of view in one transaction.
func (s *Store) CreateTables(ctx context.Context, view schema.View) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range DDL(view) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return tx.Commit()
}

// quoteIdent quotes an SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
