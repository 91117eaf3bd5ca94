package flow

import (
	"context"
	"fmt"
)

// Stage is a single named transform in the orchestration graph. It consumes
// the current state and returns a partial update; it must not retain or
// mutate the passed state.
type Stage func(ctx context.Context, s State) (Update, error)

// Predicate selects the successor stage from the post-update state.
type Predicate func(s State) string

// Graph is a directed, conditionally branching stage machine. Stages are
// wired with fixed edges or branch predicates; a stage with neither is
// terminal. Graphs are built once and are safe for concurrent Run calls,
// since all per-run data lives in the State being threaded through.
type Graph struct {
	entry    string
	nodes    map[string]Stage
	edges    map[string]string
	branches map[string]Predicate
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]Stage),
		edges:    make(map[string]string),
		branches: make(map[string]Predicate),
	}
}

// AddNode registers a named stage.
func (g *Graph) AddNode(name string, stage Stage) {
	g.nodes[name] = stage
}

// AddEdge wires an unconditional transition.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = to
}

// AddBranch wires a conditional transition evaluated against the state
// after the stage's update is applied.
func (g *Graph) AddBranch(from string, pred Predicate) {
	g.branches[from] = pred
}

// SetEntry names the stage executed first.
func (g *Graph) SetEntry(name string) {
	g.entry = name
}

// Run walks the graph from the entry stage until a terminal stage completes,
// merging each stage's update into the state. Execution is single-threaded
// and synchronous; each stage call blocks. A stage error aborts the run and
// is returned wrapped with the stage name, together with the state as of the
// failure.
func (g *Graph) Run(ctx context.Context, state State) (State, error) {
	if g.entry == "" {
		return state, ErrEntryNotSet
	}

	// A well-formed run visits each stage at most once; double that bounds
	// the walk even if the graph is miswired into a cycle.
	maxSteps := 2 * len(g.nodes)

	current := g.entry
	for steps := 0; ; steps++ {
		if steps >= maxSteps {
			return state, fmt.Errorf("%w after %d steps at %q", ErrStepLimit, steps, current)
		}

		stage, ok := g.nodes[current]
		if !ok {
			return state, fmt.Errorf("%w: %q", ErrUnknownStage, current)
		}

		update, err := stage(ctx, state)
		if err != nil {
			return state, fmt.Errorf("stage %s: %w", current, err)
		}
		state = state.Apply(update)

		if pred, ok := g.branches[current]; ok {
			current = pred(state)
			continue
		}
		if next, ok := g.edges[current]; ok {
			current = next
			continue
		}
		// No outgoing transition: terminal stage.
		return state, nil
	}
}
