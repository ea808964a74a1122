package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pybuild/internal/target"
)

// CycleWarning represents a dependency cycle among declared targets.
//
// Cycles are warnings, not errors: acyclicity is enforced by the build
// graph that consumes the declarations, and a cycle through a target that
// is never built together with the rest is harmless to a loader.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: [":a", ":b", ":a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeCycles performs static cycle analysis on target dependencies.
//
// The algorithm:
//  1. Build address → address edges from target dependencies, keeping only
//     edges whose endpoint is declared in the set
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// Requirement dependencies and unresolved addresses are ignored. Output
// order is deterministic for a given input.
func AnalyzeCycles(targets []*target.Target) []CycleWarning {
	if len(targets) == 0 {
		return []CycleWarning{}
	}

	graph := buildDependencyGraph(targets)
	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// dependencyGraph maps address → addresses it depends on.
type dependencyGraph map[string][]string

func buildDependencyGraph(targets []*target.Target) dependencyGraph {
	graph := make(dependencyGraph)
	for _, t := range targets {
		graph[t.Address().String()] = nil
	}

	for _, t := range targets {
		from := t.Address().String()
		for _, dep := range t.Dependencies() {
			if dep.Kind != target.DependencyTarget {
				continue
			}
			to := dep.Address.String()
			if _, declared := graph[to]; !declared {
				continue
			}
			if !slices.Contains(graph[from], to) {
				graph[from] = append(graph[from], to)
			}
		}
	}
	return graph
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are reproducible.
func tarjanSCC(graph dependencyGraph) [][]string {
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
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		addr := scc[0]
		return CycleWarning{
			Path:    []string{addr, addr},
			Message: fmt.Sprintf("Target depends on itself: %s → %s", addr, addr),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Dependency cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath walks the SCC from its smallest member, following
// edges to unvisited members until it returns to the start.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := slices.Min(scc)
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
