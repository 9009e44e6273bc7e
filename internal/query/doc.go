// Package query holds query contexts: the per-statement state an engine
// keeps between building a query and executing it.
//
// A context owns a filter predicate tree (its where clause), knows which
// tables it touches (its scope) and supports a clone/bind protocol. A
// context built once acts as a template; executions work on clones whose
// predicate trees are deep copies, so binding parameter values into a clone
// never disturbs the template or any other clone.
//
// Contexts are not safe for concurrent use. A schema.View may be shared by
// any number of contexts.
package query
