// Package harness runs conformance scenarios against query contexts.
//
// A scenario declares a CUE schema, one statement descriptor, the values to
// bind and what the resulting context must look like: its scope, the SQL it
// compiles to and the parameters that SQL takes.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: select_join_bound
//	description: "Join scope stays within the joined tables"
//	schema: ../hr.cue            # relative to the scenario file
//	schema_name: hr              # optional when the file declares one schema
//	statement:
//	  kind: select
//	  from: [Employee, Department]
//	  where:
//	    and:
//	      - {left: Employee.departmentId, right: Department.id}
//	      - {column: Employee.jobId, param: 0}
//	bind: [2]                    # Bind on the subject context
//	clone: false                 # make the subject a clone of the template
//	search_bind: [2]             # bind only the where clause of the subject
//	expect:
//	  scope: [Employee, Department]
//	  sql: 'SELECT * FROM ...'
//	  params: [2]
//	  predicates:
//	    - {id: 2, sql: '"Employee"."jobId" = ?'}
//	  error: BIND_ON_CLONE       # substring of the expected failure
//
// # Execution
//
// Each scenario runs against a fresh in-memory SQLite database created from
// the scenario's schema. The statement is built into a template context
// with predicate ids starting at 1. With clone set the subject is a clone
// of the template, otherwise the template itself. Bind values are bound to
// the subject, then search_bind values to its where clause only. The
// subject is compiled to SQL, and the SQL is prepared against the database
// so statements SQLite rejects fail the scenario.
//
// Contract violations are reported by code (for example BIND_ON_CLONE) so
// results and golden snapshots do not depend on context handles.
//
// # Golden Snapshots
//
// RunWithGolden compares the canonical JSON snapshot of a result against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
