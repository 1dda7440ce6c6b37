// Package dag detects cycles in the directed graphs the loader must keep
// acyclic: gate → formula-argument (gate-typed), parameter → parameter
// reference, and named-branch → target (spec §3 invariant 3). It is
// grounded on the teacher's internal/dag/dag.go DetectCycles, generalized
// from "report the first re-entered node" to "report the full cycle path"
// (see initializer.cc's cycle::PrintCycle, and SPEC_FULL.md's recovered
// feature #6).
package dag

import (
	"fmt"

	"github.com/openpsa-mef/loader/internal/merr"
)

// Edges resolves the set of node IDs that id points to (its out-edges).
// The loader's three cycle checks each supply a small adapter over their
// own entity graph (gate args, parameter refs, branch targets).
type Edges func(id string) []string

// color marks a node's DFS state: unvisited (zero value), grey (on the
// current recursion stack), or black (fully explored, known acyclic).
type color int

const (
	white color = iota
	grey
	black
)

// DetectCycle runs a classic white/grey/black DFS over every id in ids,
// following edges(id) for out-edges. It returns the first cycle found as
// an ordered path of node IDs that starts and ends at the repeated node,
// or nil if the graph restricted to ids is acyclic.
func DetectCycle(ids []string, edges Edges) []string {
	colors := make(map[string]color, len(ids))
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		colors[id] = grey
		path = append(path, id)

		for _, next := range edges(id) {
			switch colors[next] {
			case black:
				continue
			case grey:
				// Found the back-edge; slice path down to the repeated node.
				for i, p := range path {
					if p == next {
						cycle := append(append([]string{}, path[i:]...), next)
						return cycle
					}
				}
				return []string{next, next} // defensive; should not happen
			default:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		colors[id] = black
		return nil
	}

	for _, id := range ids {
		if colors[id] == white {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// FormatCycle renders a cycle path the way the original implementation's
// cycle::PrintCycle does: "a->b->c->a".
func FormatCycle(cycle []string) string {
	out := ""
	for i, id := range cycle {
		if i > 0 {
			out += "->"
		}
		out += id
	}
	return out
}

// ErrorFor builds the CycleError-wrapped message for a cycle found while
// walking kind's graph (e.g. "gate", "parameter", "branch").
func ErrorFor(kind string, cycle []string) error {
	return fmt.Errorf("%w: detected a cycle in %s %s: %s", merr.ErrCycle, kind, cycle[0], FormatCycle(cycle))
}
