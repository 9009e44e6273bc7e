package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/qscope/internal/schema"
)

type columnInfo struct {
	name string
	typ  string
	pk   int // 1-based position in the primary key, 0 if not part of it
}

type foreignKeyInfo struct {
	id     int
	seq    int
	parent string
	from   string
	to     sql.NullString
}

// Introspect builds a schema.Database from the tables of the database.
// Tables keep their creation order. The schema is named after the file
// (without extension), or "main" for an in-memory database.
//
// A composite foreign key becomes one edge per column pair. A foreign key
// that omits the parent column references the parent's primary key.
func (s *Store) Introspect(ctx context.Context) (*schema.Database, error) {
	tables, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	columns := make(map[string][]columnInfo, len(tables))
	for _, name := range tables {
		cols, err := s.tableInfo(ctx, name)
		if err != nil {
			return nil, err
		}
		columns[name] = cols
	}

	b := schema.NewBuilder(s.schemaName())
	for _, name := range tables {
		tb := b.Table(name)
		for _, col := range columns[name] {
			tb.Column(col.name, affinityType(col.typ))
		}
		tb.PrimaryKey(primaryKey(columns[name])...)

		fks, err := s.foreignKeyList(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, fk := range fks {
			parentColumn := fk.to.String
			if !fk.to.Valid || parentColumn == "" {
				pk := primaryKey(columns[fk.parent])
				if fk.seq >= len(pk) {
					return nil, fmt.Errorf("introspect %s: foreign key %d references %s without a matching primary key column", name, fk.id, fk.parent)
				}
				parentColumn = pk[fk.seq]
			}
			tb.ForeignKey("", fk.from, fk.parent, parentColumn)
		}
	}

	db, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	slog.Debug("sqlite schema introspected", "path", s.path, "tables", len(tables), "foreign_keys", len(db.ForeignKeys()))
	return db, nil
}

func (s *Store) schemaName() string {
	if s.path == "" || s.path == MemoryPath {
		return "main"
	}
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Store) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) tableInfo(ctx context.Context, table string) ([]columnInfo, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var (
			cid     int
			col     columnInfo
			notNull int
			dflt    sql.NullString
		)
		if err := rows.Scan(&cid, &col.name, &col.typ, &notNull, &dflt, &col.pk); err != nil {
			return nil, fmt.Errorf("scan table_info %s: %w", table, err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (s *Store) foreignKeyList(ctx context.Context, table string) ([]foreignKeyInfo, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("foreign_key_list %s: %w", table, err)
	}
	defer rows.Close()

	var fks []foreignKeyInfo
	for rows.Next() {
		var (
			fk                        foreignKeyInfo
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&fk.id, &fk.seq, &fk.parent, &fk.from, &fk.to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign_key_list %s: %w", table, err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The pragma numbers keys newest first; restore declaration order
	// while keeping composite key columns in key order.
	sort.SliceStable(fks, func(i, j int) bool {
		if fks[i].id != fks[j].id {
			return fks[i].id > fks[j].id
		}
		return fks[i].seq < fks[j].seq
	})
	return fks, nil
}

// primaryKey returns the primary key column names in key order.
func primaryKey(cols []columnInfo) []string {
	n := 0
	for _, c := range cols {
		if c.pk > n {
			n = c.pk
		}
	}
	pk := make([]string, n)
	for _, c := range cols {
		if c.pk > 0 {
			pk[c.pk-1] = c.name
		}
	}
	return pk
}

// affinityType maps a declared SQLite column type to a schema type using
// SQLite's type affinity rules, with BOOLEAN and JSON recognized first.
func affinityType(declared string) schema.Type {
	t := strings.ToUpper(strings.TrimSpace(declared))
	switch {
	case t == "":
		return schema.TypeUnknown
	case strings.HasPrefix(t, "BOOL"):
		return schema.TypeBool
	case t == "JSON":
		return schema.TypeObject
	case strings.Contains(t, "INT"):
		return schema.TypeInt
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return schema.TypeString
	case strings.Contains(t, "BLOB"):
		return schema.TypeBytes
	default:
		// REAL, FLOAT, DOUBLE, NUMERIC, DECIMAL and anything else have
		// REAL or NUMERIC affinity.
		return schema.TypeNumber
	}
}
