// Package pred implements the filter predicate tree held by a query context.
//
// Every node carries an ID assigned once by a Builder. Copy preserves ids,
// so an id captured from a template tree addresses the same logical position
// in every clone of it. Node types:
//
//   - ValuePredicate: column <op> value, where value is a literal or a
//     positional parameter filled in by Bind
//   - JoinPredicate: column <op> column, usually across two tables
//   - CombinedPredicate: AND / OR over child predicates
//
// Traverse visits nodes in pre-order (parent before children, children left
// to right). Index maps ids to nodes after one traversal.
package pred
