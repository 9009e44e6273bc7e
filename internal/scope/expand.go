package scope

import "github.com/roach88/qscope/internal/schema"

// ExpandParents returns the tables referenced, through one foreign key, by
// the tables in tables.
//
// When columns is non-nil only foreign keys whose child column is a member
// of columns are followed. A nil columns follows every foreign key of every
// table. The input tables themselves are only part of the result when an
// edge reaches them (a self reference, or a reference between two inputs).
func ExpandParents(view schema.View, tables schema.TableSet, columns *schema.ColumnSet) schema.TableSet {
	var extra schema.TableSet

	for _, table := range tables.Values() {
		for _, fk := range table.Constraint().ForeignKeys() {
			if columns != nil && !columns.Contains(table.Column(fk.ChildColumn)) {
				continue
			}
			parent, ok := view.Table(fk.ParentTable)
			if !ok {
				// Builders reject dangling references; a foreign View may not.
				continue
			}
			extra.Add(parent)
		}
	}

	return extra
}

// ExpandChildren returns the tables that reference, through one foreign key,
// a column of a table in tables.
//
// When columns is non-nil only referenced columns that are members of
// columns are considered.
func ExpandChildren(view schema.View, tables schema.TableSet, columns *schema.ColumnSet) schema.TableSet {
	var extra schema.TableSet

	for _, table := range tables.Values() {
		for _, column := range table.Columns() {
			if columns != nil && !columns.Contains(column) {
				continue
			}
			children := column.Children()
			if children == nil {
				continue
			}
			for _, child := range children {
				extra.Add(child.Table())
			}
		}
	}

	return extra
}

// Direction selects which edges Closure follows.
type Direction int

const (
	Parents Direction = 1 << iota
	Children
	Both = Parents | Children
)

func (d Direction) String() string {
	switch d {
	case Parents:
		return "parents"
	case Children:
		return "children"
	case Both:
		return "both"
	default:
		return "none"
	}
}

// Closure returns tables plus every table reachable from them by repeated
// single-hop expansion in direction dir. Each round only expands the tables
// discovered in the previous round, and stops when a round discovers
// nothing new, so cyclic schemas terminate after at most one round per
// table.
func Closure(view schema.View, tables schema.TableSet, dir Direction) schema.TableSet {
	result := tables.Clone()
	frontier := tables.Clone()

	for frontier.Len() > 0 {
		var reached schema.TableSet
		if dir&Parents != 0 {
			reached.AddAll(ExpandParents(view, frontier, nil))
		}
		if dir&Children != 0 {
			reached.AddAll(ExpandChildren(view, frontier, nil))
		}

		var next schema.TableSet
		for _, t := range reached.Values() {
			if result.Add(t) {
				next.Add(t)
			}
		}
		frontier = next
	}

	return result
}
