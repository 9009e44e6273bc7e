// Package scope computes which tables a query must consider for isolation
// and change observation, by walking foreign keys outward from a table set.
//
// ExpandParents and ExpandChildren take exactly one hop. They are pure: they
// read the schema and their inputs and return a new set. Because the foreign
// key graph may contain cycles, nothing here recurses over it; Closure is an
// explicit fixed-point loop over single hops for callers that need the
// transitive scope.
package scope
