// Package store opens SQLite databases as a schema source and as a
// validation target for compiled SQL.
//
// Introspect reads table, column, primary key and foreign key definitions
// from sqlite_master and the table_info / foreign_key_list pragmas and
// builds a schema.Database from them. CreateTables goes the other way,
// materializing a schema.View as DDL, so SQL compiled against a CUE schema
// can be checked with Prepare against a real SQLite parser.
//
// The store never executes compiled statements; Prepare only parses them.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
