package scope

import (
	"fmt"
	"strings"

	"github.com/roach88/qscope/internal/schema"
)

// CycleWarning reports a cycle in the foreign key graph.
//
// Cycles are legal (an employee's manager is an employee) but they mean
// transitive expansion through Closure visits every table on the cycle, and
// cascading deletes along them need care, so tooling surfaces them.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeCycles finds cycles in the foreign key graph of view.
//
// The algorithm:
//  1. Build a child table -> parent table graph from every foreign key
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each component with more than one table as a "warning" and
//     each self-referencing table as "info"
//
// Tables are visited in view order so the result is deterministic. An
// acyclic schema returns an empty list.
func AnalyzeCycles(view schema.View) []CycleWarning {
	graph, order := buildReferenceGraph(view)

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// referenceGraph maps table name -> names of tables it references.
type referenceGraph map[string][]string

func buildReferenceGraph(view schema.View) (referenceGraph, []string) {
	graph := make(referenceGraph)
	var order []string

	for _, table := range view.Tables() {
		name := table.Name()
		order = append(order, name)
		if graph[name] == nil {
			graph[name] = []string{}
		}
		seen := make(map[string]bool)
		for _, fk := range table.Constraint().ForeignKeys() {
			if _, ok := view.Table(fk.ParentTable); !ok || seen[fk.ParentTable] {
				continue
			}
			seen[fk.ParentTable] = true
			graph[name] = append(graph[name], fk.ParentTable)
		}
	}

	return graph, order
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components, visiting roots in order.
// Single-node components without self-loops are not cycles.
func tarjanSCC(graph referenceGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, reverse(scc))
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func reverse(s []string) []string {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}

func cycleSCCToWarning(scc []string, graph referenceGraph) CycleWarning {
	if len(scc) == 1 {
		table := scc[0]
		return CycleWarning{
			Path:    []string{table, table},
			Message: fmt.Sprintf("Self-referencing table: %s → %s", table, table),
			Level:   "info",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Foreign key cycle: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath returns the shortest cycle through the component's
// first member, found by breadth-first search over edges inside the
// component. The path starts and ends on that member.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	prev := make(map[string]string)
	seen := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range graph[current] {
			if !members[neighbor] || neighbor == current {
				continue
			}
			if neighbor == start {
				var back []string
				for n := current; n != start; n = prev[n] {
					back = append(back, n)
				}
				path := append([]string{start}, reverse(back)...)
				return append(path, start)
			}
			if seen[neighbor] {
				continue
			}
			seen[neighbor] = true
			prev[neighbor] = current
			queue = append(queue, neighbor)
		}
	}

	// Unreachable for a strongly connected component.
	return []string{start}
}
