// Package schema defines the read-only catalog the query core consumes:
// tables, columns and single-column foreign keys.
//
// The View, Table and Column interfaces are the contract. Database is the
// in-memory implementation produced by Builder (and by the catalog and store
// packages, which compile CUE declarations or introspect SQLite into a
// Builder). A Database is immutable once built and safe to share between any
// number of query contexts.
//
// The foreign-key graph may contain cycles (self references, mutual
// references). Nothing in this package walks the graph; see package scope.
package schema
