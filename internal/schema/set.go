package schema

import "strings"

// TableSet is an insertion-ordered set of tables with identity membership.
// The zero value is an empty set ready to use.
type TableSet struct {
	items []Table
	index map[Table]struct{}
}

// NewTableSet creates a set holding tables, duplicates dropped.
func NewTableSet(tables ...Table) TableSet {
	var s TableSet
	for _, t := range tables {
		s.Add(t)
	}
	return s
}

// Add inserts t and reports whether it was absent.
func (s *TableSet) Add(t Table) bool {
	if s.index == nil {
		s.index = make(map[Table]struct{})
	}
	if _, ok := s.index[t]; ok {
		return false
	}
	s.index[t] = struct{}{}
	s.items = append(s.items, t)
	return true
}

// AddAll inserts every member of other.
func (s *TableSet) AddAll(other TableSet) {
	for _, t := range other.items {
		s.Add(t)
	}
}

// Contains reports membership.
func (s TableSet) Contains(t Table) bool {
	_, ok := s.index[t]
	return ok
}

// Len returns the number of members.
func (s TableSet) Len() int { return len(s.items) }

// Values returns the members in insertion order. The slice is a copy.
func (s TableSet) Values() []Table {
	out := make([]Table, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the member names in insertion order.
func (s TableSet) Names() []string {
	out := make([]string, len(s.items))
	for i, t := range s.items {
		out[i] = t.Name()
	}
	return out
}

// Clone returns an independent copy.
func (s TableSet) Clone() TableSet {
	return NewTableSet(s.items...)
}

// Equal reports whether both sets hold the same tables, ignoring order.
func (s TableSet) Equal(other TableSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, t := range s.items {
		if !other.Contains(t) {
			return false
		}
	}
	return true
}

func (s TableSet) String() string {
	return "{" + strings.Join(s.Names(), ", ") + "}"
}

// ColumnSet is an insertion-ordered set of columns with identity membership.
// A nil *ColumnSet means "no column restriction" wherever one is accepted.
type ColumnSet struct {
	items []Column
	index map[Column]struct{}
}

// NewColumnSet creates a set holding columns, duplicates and nils dropped.
func NewColumnSet(columns ...Column) *ColumnSet {
	s := &ColumnSet{index: make(map[Column]struct{}, len(columns))}
	for _, c := range columns {
		s.Add(c)
	}
	return s
}

// Add inserts c and reports whether it was absent. Nil columns are ignored.
func (s *ColumnSet) Add(c Column) bool {
	if c == nil {
		return false
	}
	if s.index == nil {
		s.index = make(map[Column]struct{})
	}
	if _, ok := s.index[c]; ok {
		return false
	}
	s.index[c] = struct{}{}
	s.items = append(s.items, c)
	return true
}

// Contains reports membership. A nil set contains nothing.
func (s *ColumnSet) Contains(c Column) bool {
	if s == nil || c == nil {
		return false
	}
	_, ok := s.index[c]
	return ok
}

// Len returns the number of members.
func (s *ColumnSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values returns the members in insertion order.
func (s *ColumnSet) Values() []Column {
	if s == nil {
		return nil
	}
	out := make([]Column, len(s.items))
	copy(out, s.items)
	return out
}
